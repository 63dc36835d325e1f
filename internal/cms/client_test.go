package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...func(*Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		BaseURL:   server.URL,
		Retries:   0,
		RetryWait: time.Millisecond,
		RPS:       1000,
		Burst:     1000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := New(cfg, slog.New(slog.DiscardHandler))
	t.Cleanup(client.Close)
	return client
}

const roomsPage1 = `[
  {
    "id": 11,
    "title": {"rendered": "Kitchen &amp; Garden"},
    "acf": {
      "room_no": "002",
      "room_by": "aki",
      "photo_by": "aki",
      "room_desc": "south facing",
      "sns_instagram": "aki_rooms",
      "sns_x": "",
      "room_thumbnail": {"id": 5, "url": "https://cms.example/thumb.jpg", "width": 400, "height": 300, "alt": "thumb"},
      "room_photos": [
        {"caption": "table", "room_photo": {"id": 6, "url": "https://cms.example/6.jpg", "width": 800, "height": 600, "alt": ""}, "tags": "wood, light"},
        {"caption": "window", "room_photo": 7, "tags": false}
      ]
    }
  },
  {"id": 12, "title": {"rendered": "Draft"}, "acf": []}
]`

const roomsPage2 = `[
  {
    "id": 13,
    "title": {"rendered": "Attic"},
    "acf": {"room_no": 1, "room_by": "mio", "photo_by": "ren", "room_thumbnail": false, "room_photos": false}
  },
  {"id": 14, "title": {"rendered": "Broken"}, "acf": {"room_no": "twelve", "room_photos": false}},
  {"id": 15, "title": {"rendered": "Negative"}, "acf": {"room_no": -3, "room_photos": false}},
  {"id": 16, "title": {"rendered": "Half"}, "acf": {"room_no": "1.5", "room_photos": false}},
  {"id": 17, "title": {"rendered": "Zero"}, "acf": {"room_no": "00", "room_photos": false}}
]`

func TestClient_ListRooms(t *testing.T) {
	var userAgent string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rooms", r.URL.Path)
		assert.Equal(t, "standard", r.URL.Query().Get("acf_format"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		userAgent = r.Header.Get("User-Agent")

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-WP-TotalPages", "2")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, roomsPage1)
		case "2":
			fmt.Fprint(w, roomsPage2)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2, "acf [] and room_no other than a positive integer are skipped")

	kitchen := rooms[0]
	assert.Equal(t, "002", kitchen.RoomNo)
	assert.Equal(t, "Kitchen & Garden", kitchen.Title)
	assert.Equal(t, "aki_rooms", kitchen.Instagram)
	assert.Equal(t, domain.PhotoRefObject, kitchen.Thumbnail.Kind)
	require.Len(t, kitchen.Photos, 2)
	assert.Equal(t, "wood, light", kitchen.Photos[0].RawTags)
	assert.Equal(t, "https://cms.example/6.jpg", kitchen.Photos[0].Ref.Image.URL)
	assert.Equal(t, domain.PhotoRefID, kitchen.Photos[1].Ref.Kind)
	assert.Equal(t, "", kitchen.Photos[1].RawTags)
	assert.Equal(t, []int64{7}, kitchen.MediaIDs())

	attic := rooms[1]
	assert.Equal(t, "1", attic.RoomNo, "numeric room_no is kept as text")
	assert.Empty(t, attic.Photos)
	assert.Equal(t, domain.PhotoRefEmpty, attic.Thumbnail.Kind)

	assert.Equal(t, DefaultUserAgent, userAgent)
}

func TestClient_ListRooms_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{"not found", http.StatusNotFound, `{"code":"rest_no_route"}`, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"server error", http.StatusInternalServerError, "", ErrServer},
		{"forbidden", http.StatusForbidden, "<html>blocked</html>", ErrBadResponse},
		{"not json", http.StatusOK, "<html>maintenance</html>", ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.ListRooms(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var cmsErr *Error
			require.ErrorAs(t, err, &cmsErr)
			assert.Equal(t, "listRooms", cmsErr.Op)
		})
	}
}

func TestClient_ListRooms_OutOfRangePageStops(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":"rest_post_invalid_page_number","message":"The page number requested is larger than the number of pages available."}`)
			return
		}
		// Header claims more pages than exist.
		w.Header().Set("X-WP-TotalPages", "3")
		fmt.Fprint(w, `[{"id":1,"title":{"rendered":"A"},"acf":{"room_no":"1","room_photos":false}}]`)
	})

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[]`)
	}, func(c *Config) { c.Retries = 2 })

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListRooms(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_GetMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/7":
			fmt.Fprint(w, `{"id":7,"source_url":"https://cms.example/7.jpg","alt_text":"window","title":{"rendered":"IMG&#8211;7"},"media_details":{"width":1200,"height":800}}`)
		case "/media/8":
			fmt.Fprint(w, `{"id":8,"source_url":""}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	img, err := client.GetMedia(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &domain.Image{
		ID:     7,
		URL:    "https://cms.example/7.jpg",
		Width:  1200,
		Height: 800,
		Alt:    "window",
		Title:  "IMG–7",
	}, img)

	_, err = client.GetMedia(context.Background(), 8)
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = client.GetMedia(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetMedia(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Posts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			fmt.Fprint(w, `[
			  {"id":42,"date":"2026-01-18T21:05:00","slug":"back","title":{"rendered":"<b>Back</b>"},"excerpt":{"rendered":"<p>hi</p>"},"content":{"rendered":"<p>hello</p>"}},
			  {"id":41,"date":"not a date","slug":"old","title":{"rendered":"Old"},"excerpt":{"rendered":""},"content":{"rendered":""}}
			]`)
		case "/posts/42":
			fmt.Fprint(w, `{"id":42,"date":"2026-01-18T21:05:00","slug":"back","title":{"rendered":"<b>Back</b>"},"content":{"rendered":"<p>hello</p>"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"rest_post_invalid_id"}`)
		}
	})

	posts, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "2026.01.18", posts[0].DisplayDate())
	assert.Equal(t, "<b>Back</b>", posts[0].TitleHTML)
	assert.True(t, posts[1].Date.IsZero())

	post, err := client.GetPost(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), post.ID)
	assert.Equal(t, "<p>hello</p>", post.ContentHTML)

	_, err = client.GetPost(context.Background(), 43)
	assert.ErrorIs(t, err, ErrNotFound)
}
