// Package domain holds the content types shared by the CMS loader, the
// navigation resolver and the presentation layer.
package domain

import "strconv"

// Room is a numbered photo collection, the primary content unit of the site.
type Room struct {
	RoomNo      string  `json:"room_no"`
	Title       string  `json:"title"`
	RoomBy      string  `json:"room_by,omitempty"`
	PhotoBy     string  `json:"photo_by,omitempty"`
	Description string  `json:"description,omitempty"` // profile slot content
	Instagram   string  `json:"instagram,omitempty"`
	X           string  `json:"x,omitempty"`
	Thumbnail   *Image  `json:"thumbnail,omitempty"`
	Photos      []Photo `json:"photos"`
}

// PhotoCount returns the number of photo slots in the room.
func (r *Room) PhotoCount() int {
	return len(r.Photos)
}

// Number returns the numeric value of RoomNo used for ordering.
// Values that do not parse sort as 0.
func (r *Room) Number() int {
	n, err := strconv.Atoi(r.RoomNo)
	if err != nil {
		return 0
	}
	return n
}

// SameCredit reports whether the room and the photos share one author,
// which the footer renders as a single "room and photo by" credit.
func (r *Room) SameCredit() bool {
	return r.PhotoBy != "" && r.PhotoBy == r.RoomBy
}

// PhotoAt returns the photo at a 1-based slot, or nil when out of range.
func (r *Room) PhotoAt(slot int) *Photo {
	if slot < 1 || slot > len(r.Photos) {
		return nil
	}
	return &r.Photos[slot-1]
}
