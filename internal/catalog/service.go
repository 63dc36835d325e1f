// Package catalog loads the room catalog and blog posts from the CMS and keeps
// the last snapshot in memory until it expires or is revalidated.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/cms"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"golang.org/x/sync/singleflight"
)

// Invalidation tags.
const (
	TagRooms = "rooms"
	TagPosts = "posts"
)

const (
	defaultRoomsTTL         = time.Minute
	defaultPostsTTL         = 10 * time.Minute
	defaultMediaConcurrency = 8
)

// Source is the CMS surface the catalog needs.
type Source interface {
	ListRooms(ctx context.Context) ([]cms.Room, error)
	GetMedia(ctx context.Context, id int64) (*domain.Image, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
}

// Notifier is told about every successful revalidation.
type Notifier interface {
	CatalogRevalidated(tag string, items int, at time.Time)
}

// Options configures the service. Zero values fall back to defaults.
type Options struct {
	RoomsTTL         time.Duration
	PostsTTL         time.Duration
	MediaConcurrency int
}

// Service serves cached catalog snapshots.
type Service struct {
	src      Source
	logger   *slog.Logger
	opts     Options
	notifier Notifier

	rooms *ttlCache[*snapshot]
	posts *ttlCache[[]domain.Post]
	group singleflight.Group
	now   func() time.Time
}

// snapshot keeps both orders of one fetch so sorting happens once.
type snapshot struct {
	asc  *domain.Catalog
	desc *domain.Catalog
}

func (s *snapshot) in(order domain.SortOrder) *domain.Catalog {
	if order == domain.OrderDesc {
		return s.desc
	}
	return s.asc
}

// NewService creates a catalog service.
func NewService(src Source, opts Options, logger *slog.Logger) *Service {
	if opts.RoomsTTL <= 0 {
		opts.RoomsTTL = defaultRoomsTTL
	}
	if opts.PostsTTL <= 0 {
		opts.PostsTTL = defaultPostsTTL
	}
	if opts.MediaConcurrency <= 0 {
		opts.MediaConcurrency = defaultMediaConcurrency
	}

	s := &Service{
		src:    src,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
	s.rooms = newTTLCache[*snapshot](s.clock)
	s.posts = newTTLCache[[]domain.Post](s.clock)
	return s
}

func (s *Service) clock() time.Time {
	return s.now()
}

// SetNotifier registers the revalidation listener.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Catalog returns the room catalog in the requested order. A failed refresh
// falls back to the previous snapshot when there is one.
func (s *Service) Catalog(ctx context.Context, order domain.SortOrder) (*domain.Catalog, error) {
	if snap, fresh, ok := s.rooms.get(TagRooms); ok && fresh {
		return snap.in(order), nil
	}

	snap, err := s.loadRooms(ctx)
	if err != nil {
		if stale, _, ok := s.rooms.get(TagRooms); ok {
			s.logger.Warn("serving stale catalog", "error", err)
			return stale.in(order), nil
		}
		return nil, err
	}
	return snap.in(order), nil
}

// Posts returns every post, newest first.
func (s *Service) Posts(ctx context.Context) ([]domain.Post, error) {
	if posts, fresh, ok := s.posts.get(TagPosts); ok && fresh {
		return posts, nil
	}

	posts, err := s.loadPosts(ctx)
	if err != nil {
		if stale, _, ok := s.posts.get(TagPosts); ok {
			s.logger.Warn("serving stale posts", "error", err)
			return stale, nil
		}
		return nil, err
	}
	return posts, nil
}

// Post returns one post, from the cached list when possible.
func (s *Service) Post(ctx context.Context, id int64) (*domain.Post, error) {
	if posts, fresh, ok := s.posts.get(TagPosts); ok && fresh {
		if i := slices.IndexFunc(posts, func(p domain.Post) bool { return p.ID == id }); i >= 0 {
			post := posts[i]
			return &post, nil
		}
	}

	post, err := s.src.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, domainerrors.NotFoundf("post %d not found", id)
		}
		return nil, domainerrors.Upstream(err, "fetch post")
	}
	return post, nil
}

// Invalidate marks the given tags stale. The next read refetches them.
func (s *Service) Invalidate(tags ...string) {
	for _, tag := range tags {
		switch tag {
		case TagRooms:
			s.rooms.expire(tag)
		case TagPosts:
			s.posts.expire(tag)
		}
	}
}

// Revalidate invalidates tag and fetches it again. The error reports a failed
// refetch; the stale value stays available as a fallback.
func (s *Service) Revalidate(ctx context.Context, tag string) error {
	s.Invalidate(tag)
	// A fetch already in flight may predate the change being announced.
	s.group.Forget(tag)

	var items int
	switch tag {
	case TagRooms:
		snap, err := s.loadRooms(ctx)
		if err != nil {
			return err
		}
		items = snap.asc.Len()
	case TagPosts:
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		items = len(posts)
	default:
		return domainerrors.Validation(fmt.Sprintf("unknown tag %q", tag))
	}

	s.logger.Info("catalog revalidated", "tag", tag, "items", items)
	if s.notifier != nil {
		s.notifier.CatalogRevalidated(tag, items, s.now())
	}
	return nil
}

// Status describes the cache for health reporting.
type Status struct {
	RoomsFetchedAt time.Time
	PostsFetchedAt time.Time
	Rooms          int
	Photos         int
}

// Status reports what is cached.
func (s *Service) Status() Status {
	var st Status
	if snap, _, ok := s.rooms.get(TagRooms); ok {
		st.Rooms = snap.asc.Len()
		st.Photos = snap.asc.TotalPhotos()
		st.RoomsFetchedAt, _ = s.rooms.fetchedAt(TagRooms)
	}
	st.PostsFetchedAt, _ = s.posts.fetchedAt(TagPosts)
	return st
}

// loadRooms fetches the catalog once for all concurrent callers. The fetch is
// detached from the first caller's cancellation; each caller still stops
// waiting when its own context ends.
func (s *Service) loadRooms(ctx context.Context) (*snapshot, error) {
	ch := s.group.DoChan(TagRooms, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		catalog, err := s.build(fetchCtx)
		if err != nil {
			return nil, err
		}
		snap := &snapshot{asc: catalog, desc: catalog.Sorted(domain.OrderDesc)}
		s.rooms.set(TagRooms, snap, s.opts.RoomsTTL)
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}

func (s *Service) loadPosts(ctx context.Context) ([]domain.Post, error) {
	ch := s.group.DoChan(TagPosts, func() (any, error) {
		posts, err := s.src.ListPosts(context.WithoutCancel(ctx))
		if err != nil {
			return nil, domainerrors.Upstream(err, "fetch posts")
		}
		slices.SortStableFunc(posts, func(a, b domain.Post) int {
			return b.Date.Compare(a.Date)
		})
		s.posts.set(TagPosts, posts, s.opts.PostsTTL)
		return posts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Post), nil
	}
}
