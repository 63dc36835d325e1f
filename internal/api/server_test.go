package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/catalog"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSecret = "s3cret"

// fakeCatalog stands in for the catalog service.
type fakeCatalog struct {
	rooms         []domain.Room
	err           error
	revalidateErr error
	revalidated   []string
	status        catalog.Status
}

func (f *fakeCatalog) Catalog(_ context.Context, order domain.SortOrder) (*domain.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewCatalog(f.rooms, order, time.Time{}), nil
}

func (f *fakeCatalog) Posts(context.Context) ([]domain.Post, error) {
	return nil, f.err
}

func (f *fakeCatalog) Post(_ context.Context, id int64) (*domain.Post, error) {
	return nil, domainerrors.NotFoundf("post %d not found", id)
}

func (f *fakeCatalog) Revalidate(_ context.Context, tag string) error {
	if tag != catalog.TagRooms && tag != catalog.TagPosts {
		return domainerrors.Validation("unknown tag " + tag)
	}
	if f.revalidateErr != nil {
		return f.revalidateErr
	}
	f.revalidated = append(f.revalidated, tag)
	return nil
}

func (f *fakeCatalog) Status() catalog.Status {
	return f.status
}

func testRooms() []domain.Room {
	img := &domain.Image{ID: 7, URL: "https://cms.example/sofa.jpg"}
	return []domain.Room{
		{RoomNo: "1", Title: "first", RoomBy: "mio", PhotoBy: "mio", Photos: []domain.Photo{
			{Caption: "sofa", Tags: []string{"木"}, Image: img},
			{Caption: "lamp", Tags: []string{"照明"}, Image: img},
		}},
		{RoomNo: "2", Title: "second", RoomBy: "ken", PhotoBy: "aya", Photos: []domain.Photo{
			{Caption: "desk", Tags: []string{"木"}, Image: img},
		}},
	}
}

type testServer struct {
	*Server
	catalog *fakeCatalog
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, &fakeCatalog{rooms: testRooms()})
}

func setupTestServerWith(t *testing.T, cat *fakeCatalog) *testServer {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	site := config.DefaultSite()

	gallery := service.NewGalleryService(cat, service.GalleryOptions{ProfileSlot: true, MinTagCount: 1})

	renderer, err := web.NewRenderer("", log)
	require.NoError(t, err)
	pages := web.NewHandler(
		gallery,
		service.NewBlogService(cat),
		service.NewSitemapService(cat, cat, site.BaseURL, log),
		site,
		renderer,
		log,
	)

	server := NewServer(&Services{
		Gallery: gallery,
		Catalog: cat,
		Site:    site,
	}, pages, Options{RevalidateSecret: testSecret}, log)
	t.Cleanup(func() { _ = server.Shutdown() })

	return &testServer{Server: server, catalog: cat}
}

func (ts *testServer) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.Host = "roomandroom.org"
	ts.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListRooms(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/rooms?order=desc")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ListRoomsResponse](t, rec)
	assert.Equal(t, "desc", resp.Order)
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "2", resp.Rooms[0].RoomNo)
	assert.Equal(t, "01", resp.Rooms[1].First)
}

func TestListRooms_InvalidOrder(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/rooms?order=sideways")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[APIError](t, rec)
	assert.Equal(t, "VALIDATION", resp.Code)
}

func TestGetRoomSlot(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantSlot   int
		wantPrev   string
		wantNext   string
		profile    bool
	}{
		{
			name:       "profile slot",
			target:     "/api/v1/rooms/1/slots/00",
			wantStatus: http.StatusOK,
			wantSlot:   0,
			wantPrev:   "/rooms",
			wantNext:   "/rooms/1/01",
			profile:    true,
		},
		{
			name:       "last photo crosses into next room",
			target:     "/api/v1/rooms/1/slots/02",
			wantStatus: http.StatusOK,
			wantSlot:   2,
			wantPrev:   "/rooms/1/01",
			wantNext:   "/rooms/2/00",
		},
		{
			name:       "descending order carried on paths",
			target:     "/api/v1/rooms/2/slots/01?order=desc",
			wantStatus: http.StatusOK,
			wantSlot:   1,
			wantPrev:   "/rooms/2/00?order=desc",
			wantNext:   "/rooms/1/00?order=desc",
		},
		{name: "unknown room", target: "/api/v1/rooms/9/slots/01", wantStatus: http.StatusNotFound},
		{name: "slot out of range", target: "/api/v1/rooms/2/slots/05", wantStatus: http.StatusNotFound},
		{name: "slot not a number", target: "/api/v1/rooms/2/slots/xx", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "NOT_FOUND", decode[APIError](t, rec).Code)
				return
			}

			resp := decode[RoomSlotResponse](t, rec)
			assert.Equal(t, tt.wantSlot, resp.Slot)
			assert.Equal(t, tt.profile, resp.Profile)
			assert.Equal(t, tt.wantPrev, resp.Prev.Path)
			assert.Equal(t, tt.wantNext, resp.Next.Path)
			assert.Equal(t, tt.profile, resp.Photo == nil)
		})
	}
}

func TestRooms_UpstreamFailureIsBadGateway(t *testing.T) {
	ts := setupTestServerWith(t, &fakeCatalog{
		err: domainerrors.Upstream(errors.New("connection refused"), "fetch rooms"),
	})

	rec := ts.do(http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "UPSTREAM", decode[APIError](t, rec).Code)
}

func TestNotFound_DispatchesOnPath(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = ts.do(http.MethodGet, "/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "ページが見つかりません。")
}

func TestPagesMounted(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/rooms/1/01")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sofa")
}

func TestCORS_OnlyOnAPI(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.Host = "roomandroom.org"
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Host = "roomandroom.org"
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDEchoed(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
