// Package service assembles the views the site, the JSON API and the operator
// CLI share: room and tag navigation, the blog and the sitemap.
package service

import (
	"context"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
)

// CatalogReader is the part of the catalog service the gallery reads.
type CatalogReader interface {
	Catalog(ctx context.Context, order domain.SortOrder) (*domain.Catalog, error)
}

// GalleryOptions carries the navigation policy.
type GalleryOptions struct {
	ProfileSlot bool
	TagWrap     bool
	MinTagCount int
}

// GalleryService resolves room and tag pages against the current catalog.
type GalleryService struct {
	catalog  CatalogReader
	rooms    navigation.Resolver
	tags     navigation.TagResolver
	minCount int
}

// NewGalleryService creates a gallery service.
func NewGalleryService(catalog CatalogReader, opts GalleryOptions) *GalleryService {
	if opts.MinTagCount < 1 {
		opts.MinTagCount = 1
	}
	return &GalleryService{
		catalog:  catalog,
		rooms:    navigation.Resolver{ProfileSlot: opts.ProfileSlot},
		tags:     navigation.TagResolver{Wrap: opts.TagWrap},
		minCount: opts.MinTagCount,
	}
}

// RoomSummary is one row of the room listing.
type RoomSummary struct {
	RoomNo     string        `json:"room_no"`
	Title      string        `json:"title"`
	RoomBy     string        `json:"room_by,omitempty"`
	PhotoBy    string        `json:"photo_by,omitempty"`
	PhotoCount int           `json:"photo_count"`
	Thumbnail  *domain.Image `json:"thumbnail,omitempty"`
	First      string        `json:"first"` // first slot, zero padded
}

// Rooms lists every room in order. Upstream failures are returned as is.
func (s *GalleryService) Rooms(ctx context.Context, order domain.SortOrder) ([]RoomSummary, error) {
	cat, err := s.catalog.Catalog(ctx, order)
	if err != nil {
		return nil, err
	}

	out := make([]RoomSummary, 0, cat.Len())
	for i := range cat.Rooms {
		room := &cat.Rooms[i]
		thumb := room.Thumbnail
		if thumb == nil {
			if p := firstWithImage(room); p != nil {
				thumb = p.Image
			}
		}
		out = append(out, RoomSummary{
			RoomNo:     room.RoomNo,
			Title:      room.Title,
			RoomBy:     room.RoomBy,
			PhotoBy:    room.PhotoBy,
			PhotoCount: room.PhotoCount(),
			Thumbnail:  thumb,
			First:      entrySlot(s.rooms, room),
		})
	}
	return out, nil
}

func firstWithImage(room *domain.Room) *domain.Photo {
	for i := range room.Photos {
		if room.Photos[i].HasImage() {
			return &room.Photos[i]
		}
	}
	return nil
}

// Room resolves one room position. slot is the raw path segment.
func (s *GalleryService) Room(ctx context.Context, order domain.SortOrder, roomNo, slot string) (navigation.RoomNav, error) {
	n, err := navigation.ParseSlot(slot)
	if err != nil {
		return navigation.RoomNav{}, err
	}
	cat, err := s.catalog.Catalog(ctx, order)
	if err != nil {
		return navigation.RoomNav{}, err
	}
	return s.rooms.Resolve(cat, roomNo, n)
}

// EntrySlot returns the zero padded slot a bare room URL redirects to: 01, or
// 00 for a room that only has its profile slot.
func (s *GalleryService) EntrySlot(ctx context.Context, roomNo string) (string, error) {
	cat, err := s.catalog.Catalog(ctx, domain.OrderAsc)
	if err != nil {
		return "", err
	}
	room := cat.Room(roomNo)
	if room == nil {
		return "", domainerrors.NotFoundf("room %s not found", roomNo)
	}
	return entrySlot(s.rooms, room), nil
}

func entrySlot(r navigation.Resolver, room *domain.Room) string {
	if room.PhotoCount() == 0 && r.ProfileSlot {
		return navigation.PadSlot(0)
	}
	return navigation.PadSlot(1)
}

// Tags returns the tag index.
func (s *GalleryService) Tags(ctx context.Context) ([]navigation.TagSummary, error) {
	cat, err := s.catalog.Catalog(ctx, domain.OrderAsc)
	if err != nil {
		return nil, err
	}
	return navigation.TagIndex(cat, s.minCount), nil
}

// Tag resolves one position in a tag sequence. index is the raw path segment.
// Tag sequences always follow ascending room order.
func (s *GalleryService) Tag(ctx context.Context, tag, index string) (navigation.TagNav, error) {
	n, err := navigation.ParseSlot(index)
	if err != nil {
		return navigation.TagNav{}, err
	}
	cat, err := s.catalog.Catalog(ctx, domain.OrderAsc)
	if err != nil {
		return navigation.TagNav{}, err
	}
	return s.tags.Resolve(cat, tag, n)
}

// TagPhotos returns the whole sequence for tag, NotFound when it is empty.
func (s *GalleryService) TagPhotos(ctx context.Context, tag string) ([]navigation.TaggedPhoto, error) {
	cat, err := s.catalog.Catalog(ctx, domain.OrderAsc)
	if err != nil {
		return nil, err
	}
	seq := navigation.FilterByTag(cat, tag)
	if len(seq) == 0 {
		return nil, domainerrors.NotFoundf("no photos tagged %q", tag)
	}
	return seq, nil
}
