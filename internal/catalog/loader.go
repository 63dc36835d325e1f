package catalog

import (
	"context"
	"sync"

	"github.com/roomandroom/roomandroom-server/internal/cms"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"golang.org/x/sync/errgroup"
)

// build fetches the rooms, resolves bare media ids and returns an ascending
// catalog. Rooms repeating an earlier room number are dropped.
func (s *Service) build(ctx context.Context) (*domain.Catalog, error) {
	records, err := s.src.ListRooms(ctx)
	if err != nil {
		return nil, domainerrors.Upstream(err, "fetch rooms")
	}

	seen := make(map[string]int64, len(records))
	unique := make([]cms.Room, 0, len(records))
	for _, rec := range records {
		if first, dup := seen[rec.RoomNo]; dup {
			s.logger.Warn("duplicate room number, keeping first",
				"room_no", rec.RoomNo,
				"kept_post_id", first,
				"dropped_post_id", rec.ID,
			)
			continue
		}
		seen[rec.RoomNo] = rec.ID
		unique = append(unique, rec)
	}

	media := s.resolveMedia(ctx, unique)

	rooms := make([]domain.Room, 0, len(unique))
	for i := range unique {
		rooms = append(rooms, toDomainRoom(&unique[i], media))
	}

	return domain.NewCatalog(rooms, domain.OrderAsc, s.now()), nil
}

// resolveMedia fetches every distinct bare media id with bounded concurrency.
// Failures are logged and leave the id unresolved.
func (s *Service) resolveMedia(ctx context.Context, rooms []cms.Room) map[int64]*domain.Image {
	var ids []int64
	wanted := make(map[int64]struct{})
	for i := range rooms {
		for _, id := range rooms[i].MediaIDs() {
			if _, ok := wanted[id]; !ok {
				wanted[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	resolved := make(map[int64]*domain.Image, len(ids))
	if len(ids) == 0 {
		return resolved
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MediaConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			img, err := s.src.GetMedia(gctx, id)
			if err != nil {
				s.logger.Warn("media reference unresolved", "media_id", id, "error", err)
				return nil
			}
			mu.Lock()
			resolved[id] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return resolved
}

func toDomainRoom(rec *cms.Room, media map[int64]*domain.Image) domain.Room {
	room := domain.Room{
		RoomNo:      rec.RoomNo,
		Title:       rec.Title,
		RoomBy:      rec.RoomBy,
		PhotoBy:     rec.PhotoBy,
		Description: rec.Description,
		Instagram:   rec.Instagram,
		X:           rec.X,
		Thumbnail:   imageFor(rec.Thumbnail, media),
		Photos:      make([]domain.Photo, 0, len(rec.Photos)),
	}
	for _, p := range rec.Photos {
		room.Photos = append(room.Photos, domain.Photo{
			Caption: p.Caption,
			RawTags: p.RawTags,
			Tags:    navigation.ParseTags(p.RawTags),
			Image:   imageFor(p.Ref, media),
		})
	}
	return room
}

func imageFor(ref domain.PhotoRef, media map[int64]*domain.Image) *domain.Image {
	switch ref.Kind {
	case domain.PhotoRefObject:
		return ref.Image
	case domain.PhotoRefID:
		return media[ref.ID]
	default:
		return nil
	}
}
