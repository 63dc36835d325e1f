package web

import (
	"net/url"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
)

// Flags are the transient view settings carried from page to page in the
// query string. They never change which positions exist.
type Flags struct {
	Zoom     bool             // z=1
	Autoplay bool             // ap=1
	Order    domain.SortOrder // order=desc; asc is implied
}

// ParseFlags reads flags from a query. Unknown or malformed values are ignored.
func ParseFlags(q url.Values) Flags {
	f := Flags{
		Zoom:     q.Get("z") == "1",
		Autoplay: q.Get("ap") == "1",
		Order:    domain.OrderAsc,
	}
	if order, err := domain.ParseSortOrder(q.Get("order")); err == nil {
		f.Order = order
	}
	return f
}

// Query encodes the flags, with a leading "?" when any is set.
func (f Flags) Query() string {
	q := url.Values{}
	if f.Zoom {
		q.Set("z", "1")
	}
	if f.Autoplay {
		q.Set("ap", "1")
	}
	if f.Order == domain.OrderDesc {
		q.Set("order", string(domain.OrderDesc))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ToggleZoom returns the flags with zoom flipped.
func (f Flags) ToggleZoom() Flags {
	f.Zoom = !f.Zoom
	return f
}

// ToggleAutoplay returns the flags with autoplay flipped.
func (f Flags) ToggleAutoplay() Flags {
	f.Autoplay = !f.Autoplay
	return f
}

// RoomPath is the canonical path of a room position.
func RoomPath(roomNo string, slot int) string {
	return "/rooms/" + url.PathEscape(roomNo) + "/" + navigation.PadSlot(slot)
}

// TagPath is the canonical path of a position in a tag sequence.
func TagPath(tag string, index int) string {
	return "/tags/" + url.PathEscape(tag) + "/" + navigation.PadSlot(index)
}

// roomsListing keeps only the sort order: zoom and autoplay make no sense on
// the listing.
func roomsListing(f Flags) string {
	return "/rooms" + Flags{Order: f.Order}.Query()
}

// roomLink maps a destination to a URL. Concrete destinations keep the flags,
// the terminal goes back to the listing.
func roomLink(d navigation.Destination, f Flags) string {
	if d.Terminal {
		return roomsListing(f)
	}
	return RoomPath(d.RoomNo, d.Slot) + f.Query()
}

// tagLink is roomLink for tag sequences. Tag sequences have no order flag.
func tagLink(tag string, d navigation.TagDestination, f Flags) string {
	if d.Terminal {
		return "/tags"
	}
	f.Order = domain.OrderAsc
	return TagPath(tag, d.Index) + f.Query()
}
