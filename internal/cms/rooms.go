package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/richtext"
)

// Room is a room record as stored in WordPress. Photo references are not
// resolved yet; bare media ids still have to go through GetMedia.
type Room struct {
	ID          int64
	Title       string // plain text
	RoomNo      string
	RoomBy      string
	PhotoBy     string
	Description string
	Instagram   string
	X           string
	Thumbnail   domain.PhotoRef
	Photos      []RoomPhoto
}

// RoomPhoto is one row of the room_photos repeater.
type RoomPhoto struct {
	Caption string
	RawTags string
	Ref     domain.PhotoRef
}

// MediaIDs returns the ids of every bare media reference in the room.
func (r *Room) MediaIDs() []int64 {
	var ids []int64
	if r.Thumbnail.Kind == domain.PhotoRefID {
		ids = append(ids, r.Thumbnail.ID)
	}
	for _, p := range r.Photos {
		if p.Ref.Kind == domain.PhotoRefID {
			ids = append(ids, p.Ref.ID)
		}
	}
	return ids
}

// ListRooms fetches every room. Records whose ACF fields fail validation (no
// numeric room number) are skipped with a warning rather than failing the
// whole catalog.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	query := url.Values{}
	query.Set("acf_format", "standard")

	var rooms []Room
	err := c.paginate(ctx, "/rooms", query, func(body []byte) error {
		var page []rawRoom
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for i := range page {
			raw := &page[i]
			if err := c.validator.Validate(raw.ACF); err != nil {
				c.logger.Warn("skipping room with invalid fields",
					"post_id", raw.ID,
					"error", err,
				)
				continue
			}
			rooms = append(rooms, raw.toRoom())
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("listRooms", 0, err)
	}

	return rooms, nil
}

// Raw API response types (internal)

type rawRoom struct {
	ID    int64    `json:"id"`
	Title rendered `json:"title"`
	ACF   rawACF   `json:"acf"`
}

type rawACF struct {
	RoomNo    flexString      `json:"room_no" validate:"required,number,containsany=123456789"` // digits, not all zero
	RoomBy    flexString      `json:"room_by"`
	PhotoBy   flexString      `json:"photo_by"`
	RoomDesc  flexString      `json:"room_desc"`
	Instagram flexString      `json:"sns_instagram"`
	X         flexString      `json:"sns_x"`
	Thumbnail domain.PhotoRef `json:"room_thumbnail"`
	Photos    rawPhotos       `json:"room_photos"`
}

// UnmarshalJSON accepts the empty array WordPress sends for a post without
// any ACF values.
func (a *rawACF) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '[' || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		*a = rawACF{}
		return nil
	}
	type plain rawACF
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = rawACF(p)
	return nil
}

type rawPhoto struct {
	Caption flexString      `json:"caption"`
	Photo   domain.PhotoRef `json:"room_photo"`
	Tags    flexString      `json:"tags"`
}

// rawPhotos is the room_photos repeater, which is false when empty.
type rawPhotos []rawPhoto

func (p *rawPhotos) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*p = nil
		return nil
	}
	var rows []rawPhoto
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*p = rows
	return nil
}

// flexString decodes ACF text fields, which arrive as strings, numbers, or
// false when unset.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = flexString(n.String())
	default:
		return fmt.Errorf("unsupported text value %s", data)
	}
	return nil
}

func (r *rawRoom) toRoom() Room {
	room := Room{
		ID:          r.ID,
		Title:       richtext.StripTags(r.Title.Rendered),
		RoomNo:      string(r.ACF.RoomNo),
		RoomBy:      string(r.ACF.RoomBy),
		PhotoBy:     string(r.ACF.PhotoBy),
		Description: string(r.ACF.RoomDesc),
		Instagram:   string(r.ACF.Instagram),
		X:           string(r.ACF.X),
		Thumbnail:   r.ACF.Thumbnail,
		Photos:      make([]RoomPhoto, 0, len(r.ACF.Photos)),
	}
	for _, p := range r.ACF.Photos {
		room.Photos = append(room.Photos, RoomPhoto{
			Caption: string(p.Caption),
			RawTags: string(p.Tags),
			Ref:     p.Photo,
		})
	}
	return room
}
