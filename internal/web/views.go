package web

import (
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/service"
)

// autoplayDelay is the number of seconds a page stays up under autoplay.
const autoplayDelay = 3

// page is the data every template receives. Body holds the page's own view.
type page struct {
	Site    *config.SiteConfig
	Title   string // prefixed to the site name in <title>
	Section string // highlighted navigation entry
	Refresh string // autoplay target, empty when autoplay is off
	Delay   int
	Body    any
}

type roomRow struct {
	service.RoomSummary
	Href string
}

type roomsView struct {
	Rooms      []roomRow
	Order      domain.SortOrder
	ToggleHref string // the listing in the opposite order
}

type roomView struct {
	Room       *domain.Room
	Photo      *domain.Photo
	Profile    bool
	Slot       int
	PhotoCount int
	Credits    []string
	PrevHref   string
	NextHref   string
	BackHref   string
	ZoomHref   string
	PlayHref   string
	Flags      Flags
}

type tagRow struct {
	navigation.TagSummary
	Href string
}

type tagView struct {
	Tag      string
	Index    int
	Total    int
	Photo    navigation.TaggedPhoto
	Credits  []string
	RoomHref string
	PrevHref string
	NextHref string
	ZoomHref string
	PlayHref string
	Flags    Flags
}

type postRow struct {
	service.PostSummary
	Href string
}

type errorView struct {
	Status  int
	Message string
}

// roomCredits renders the room footer credit line. One shared author reads
// "room and photo by: X"; otherwise photo comes before room.
func roomCredits(roomBy, photoBy string) []string {
	if roomBy == photoBy {
		if photoBy == "" {
			return nil
		}
		return []string{"room and photo by: " + photoBy}
	}
	var out []string
	if photoBy != "" {
		out = append(out, "photo by: "+photoBy)
	}
	if roomBy != "" {
		out = append(out, "room by: "+roomBy)
	}
	return out
}

// tagCredits is the tag footer variant: no colon and room before photo.
func tagCredits(roomBy, photoBy string) []string {
	if roomBy == photoBy {
		if photoBy == "" {
			return nil
		}
		return []string{"room and photo by " + photoBy}
	}
	var out []string
	if roomBy != "" {
		out = append(out, "room by "+roomBy)
	}
	if photoBy != "" {
		out = append(out, "photo by "+photoBy)
	}
	return out
}
