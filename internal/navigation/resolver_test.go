package navigation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCatalog builds an ascending catalog from (roomNo, photoCount) pairs.
func makeCatalog(t *testing.T, rooms ...any) *domain.Catalog {
	t.Helper()
	require.Zero(t, len(rooms)%2, "rooms are (roomNo, count) pairs")

	var out []domain.Room
	for i := 0; i < len(rooms); i += 2 {
		room := domain.Room{RoomNo: rooms[i].(string)}
		for range rooms[i+1].(int) {
			room.Photos = append(room.Photos, domain.Photo{})
		}
		out = append(out, room)
	}
	return domain.NewCatalog(out, domain.OrderAsc, time.Time{})
}

func TestResolve_CrossesRoomBoundary(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3)
	r := Resolver{}

	nav, err := r.Resolve(catalog, "001", 2)
	require.NoError(t, err)
	assert.Equal(t, At("002", 1), nav.Next)
	assert.Equal(t, At("001", 1), nav.Prev)

	nav, err = r.Resolve(catalog, "002", 1)
	require.NoError(t, err)
	assert.Equal(t, At("001", 2), nav.Prev)
	assert.Equal(t, At("002", 2), nav.Next)
}

func TestResolve_ProfileSlot(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3)
	r := Resolver{ProfileSlot: true}

	nav, err := r.Resolve(catalog, "002", 0)
	require.NoError(t, err)
	assert.Equal(t, At("001", 2), nav.Prev, "previous room's last photo, not its profile")
	assert.Equal(t, At("002", 1), nav.Next)
	assert.True(t, nav.IsProfile())
	assert.Nil(t, nav.Photo)
	assert.Equal(t, 3, nav.PhotoCount)

	nav, err = r.Resolve(catalog, "001", 2)
	require.NoError(t, err)
	assert.Equal(t, At("002", 0), nav.Next)

	nav, err = r.Resolve(catalog, "001", 0)
	require.NoError(t, err)
	assert.True(t, nav.Prev.Terminal)
}

func TestResolve_Boundaries(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3)

	nav, err := Resolver{}.Resolve(catalog, "001", 1)
	require.NoError(t, err)
	assert.Equal(t, Terminal(), nav.Prev)

	nav, err = Resolver{}.Resolve(catalog, "002", 3)
	require.NoError(t, err)
	assert.Equal(t, Terminal(), nav.Next)
	require.NotNil(t, nav.Photo)
}

func TestResolve_NotFound(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3)

	tests := []struct {
		name    string
		r       Resolver
		catalog *domain.Catalog
		roomNo  string
		slot    int
	}{
		{"unknown room", Resolver{}, catalog, "999", 1},
		{"slot above count", Resolver{}, catalog, "001", 3},
		{"slot zero without profile", Resolver{}, catalog, "001", 0},
		{"negative slot", Resolver{ProfileSlot: true}, catalog, "001", -1},
		{"empty catalog", Resolver{ProfileSlot: true}, domain.NewCatalog(nil, domain.OrderAsc, time.Time{}), "001", 0},
		{"nil catalog", Resolver{}, nil, "001", 1},
		{"room number is matched as text", Resolver{}, catalog, "1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Resolve(tt.catalog, tt.roomNo, tt.slot)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		})
	}
}

func TestResolve_RoomWithoutPhotos(t *testing.T) {
	catalog := makeCatalog(t, "001", 1, "002", 0, "003", 1)

	t.Run("profile slots keep the empty room navigable", func(t *testing.T) {
		r := Resolver{ProfileSlot: true}

		nav, err := r.Resolve(catalog, "002", 0)
		require.NoError(t, err)
		assert.Equal(t, At("001", 1), nav.Prev)
		assert.Equal(t, At("003", 0), nav.Next, "no photo slot in between")

		nav, err = r.Resolve(catalog, "003", 0)
		require.NoError(t, err)
		assert.Equal(t, At("002", 0), nav.Prev, "a room with only a profile offers slot 0")
	})

	t.Run("photo-only slots skip the empty room", func(t *testing.T) {
		r := Resolver{}

		nav, err := r.Resolve(catalog, "001", 1)
		require.NoError(t, err)
		assert.Equal(t, At("003", 1), nav.Next)

		nav, err = r.Resolve(catalog, "003", 1)
		require.NoError(t, err)
		assert.Equal(t, At("001", 1), nav.Prev)

		_, err = r.Resolve(catalog, "002", 1)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}

func TestResolve_DescendingInverts(t *testing.T) {
	asc := makeCatalog(t, "001", 2, "002", 3)
	desc := asc.Sorted(domain.OrderDesc)

	nav, err := Resolver{}.Resolve(desc, "002", 3)
	require.NoError(t, err)
	assert.Equal(t, At("001", 1), nav.Next)

	nav, err = Resolver{}.Resolve(desc, "001", 1)
	require.NoError(t, err)
	assert.Equal(t, At("002", 3), nav.Prev)
	assert.Equal(t, At("001", 2), nav.Next)
}

// positions lists every valid position of the catalog in order.
func positions(r Resolver, catalog *domain.Catalog) []Destination {
	var out []Destination
	for _, room := range catalog.Rooms {
		for slot := r.LowBound(); slot <= room.PhotoCount(); slot++ {
			out = append(out, At(room.RoomNo, slot))
		}
	}
	return out
}

func TestResolve_NextThenPrevRoundTrips(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 0, "003", 3, "010", 1)

	for _, r := range []Resolver{{}, {ProfileSlot: true}} {
		all := positions(r, catalog)
		for i, pos := range all {
			nav, err := r.Resolve(catalog, pos.RoomNo, pos.Slot)
			require.NoError(t, err, pos)

			if i < len(all)-1 {
				require.False(t, nav.Next.Terminal, pos)
				back, err := r.Resolve(catalog, nav.Next.RoomNo, nav.Next.Slot)
				require.NoError(t, err)
				assert.Equal(t, pos, back.Prev, "profile=%v from %s", r.ProfileSlot, pos)
			} else {
				assert.True(t, nav.Next.Terminal)
			}
			if i == 0 {
				assert.True(t, nav.Prev.Terminal)
			}
		}
	}
}

func TestResolve_WalkCoversEverySlot(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3, "003", 4)

	tests := []struct {
		r     Resolver
		steps int
	}{
		{Resolver{}, (2 + 3 + 4) - 1},
		{Resolver{ProfileSlot: true}, (3 + 4 + 5) - 1},
	}

	for _, tt := range tests {
		first := tt.r.First(catalog)
		last := tt.r.Last(catalog)

		var walked []Destination
		cur := last
		for !cur.Terminal {
			walked = append([]Destination{cur}, walked...)
			nav, err := tt.r.Resolve(catalog, cur.RoomNo, cur.Slot)
			require.NoError(t, err)
			cur = nav.Prev
		}

		assert.Equal(t, first, walked[0])
		assert.Equal(t, tt.steps, len(walked)-1, "profile=%v", tt.r.ProfileSlot)
		if diff := cmp.Diff(positions(tt.r, catalog), walked); diff != "" {
			t.Errorf("walk mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	catalog := makeCatalog(t, "001", 2, "002", 3)
	r := Resolver{ProfileSlot: true}

	a, err := r.Resolve(catalog, "002", 0)
	require.NoError(t, err)
	b, err := r.Resolve(catalog, "002", 0)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("resolve not deterministic:\n%s", diff)
	}
}

func TestFirstLast(t *testing.T) {
	catalog := makeCatalog(t, "001", 0, "002", 2)

	assert.Equal(t, At("002", 1), Resolver{}.First(catalog))
	assert.Equal(t, At("001", 0), Resolver{ProfileSlot: true}.First(catalog))
	assert.Equal(t, At("002", 2), Resolver{}.Last(catalog))
	assert.Equal(t, Terminal(), Resolver{}.First(nil))
}

func TestDestination_String(t *testing.T) {
	assert.Equal(t, "001/03", At("001", 3).String())
	assert.Equal(t, "terminal", Terminal().String())
}
