package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortOrder selects the direction of the room catalog.
type SortOrder string

const (
	// OrderAsc sorts rooms by ascending room number (the default).
	OrderAsc SortOrder = "asc"
	// OrderDesc sorts rooms by descending room number.
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder converts a query value to a SortOrder. Empty means ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(OrderAsc):
		return OrderAsc, nil
	case string(OrderDesc):
		return OrderDesc, nil
	default:
		return "", fmt.Errorf("invalid sort order %q (must be asc or desc)", s)
	}
}

// Catalog is an immutable snapshot of the rooms, sorted by room number.
// Callers must not modify Rooms; use Sorted to obtain a differently ordered copy.
type Catalog struct {
	Rooms     []Room
	Order     SortOrder
	FetchedAt time.Time
}

// NewCatalog sorts rooms by their numeric room number in the given order and
// returns the snapshot. The input slice is not modified.
func NewCatalog(rooms []Room, order SortOrder, fetchedAt time.Time) *Catalog {
	sorted := slices.Clone(rooms)
	slices.SortStableFunc(sorted, func(a, b Room) int {
		c := cmp.Compare(a.Number(), b.Number())
		if c == 0 {
			c = strings.Compare(a.RoomNo, b.RoomNo)
		}
		if order == OrderDesc {
			return -c
		}
		return c
	})
	if order == "" {
		order = OrderAsc
	}
	return &Catalog{Rooms: sorted, Order: order, FetchedAt: fetchedAt}
}

// Sorted returns the same snapshot in the requested order.
func (c *Catalog) Sorted(order SortOrder) *Catalog {
	if c == nil {
		return nil
	}
	if order == "" {
		order = OrderAsc
	}
	if order == c.Order {
		return c
	}
	return NewCatalog(c.Rooms, order, c.FetchedAt)
}

// Len returns the number of rooms.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rooms)
}

// IndexOf returns the position of roomNo in the catalog, or -1.
func (c *Catalog) IndexOf(roomNo string) int {
	if c == nil {
		return -1
	}
	return slices.IndexFunc(c.Rooms, func(r Room) bool { return r.RoomNo == roomNo })
}

// Room returns the room with roomNo, or nil.
func (c *Catalog) Room(roomNo string) *Room {
	idx := c.IndexOf(roomNo)
	if idx < 0 {
		return nil
	}
	return &c.Rooms[idx]
}

// TotalPhotos returns the number of photos across all rooms.
func (c *Catalog) TotalPhotos() int {
	if c == nil {
		return 0
	}
	total := 0
	for i := range c.Rooms {
		total += len(c.Rooms[i].Photos)
	}
	return total
}
