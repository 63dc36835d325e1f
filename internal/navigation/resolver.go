// Package navigation computes previous/next links over the room catalog.
//
// Everything here is a pure function of a catalog snapshot: the same snapshot
// and position always yield the same destinations, and every concrete
// destination is a valid position in that snapshot.
package navigation

import (
	"fmt"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
)

// Position addresses one slot of one room. Slot 0 is the profile slot.
type Position struct {
	RoomNo string `json:"room_no"`
	Slot   int    `json:"slot"`
}

// Destination is either a concrete position or the terminal sentinel, which
// the presentation layer maps to the room listing.
type Destination struct {
	Position
	Terminal bool `json:"terminal"`
}

// At returns a concrete destination.
func At(roomNo string, slot int) Destination {
	return Destination{Position: Position{RoomNo: roomNo, Slot: slot}}
}

// Terminal returns the listing sentinel.
func Terminal() Destination {
	return Destination{Terminal: true}
}

func (d Destination) String() string {
	if d.Terminal {
		return "terminal"
	}
	return fmt.Sprintf("%s/%s", d.RoomNo, PadSlot(d.Slot))
}

// RoomNav is the result of resolving a position.
type RoomNav struct {
	Position   Position
	Room       *domain.Room
	Photo      *domain.Photo // nil on the profile slot
	PhotoCount int
	Prev       Destination
	Next       Destination
}

// IsProfile reports whether the resolved position is the profile slot.
func (n *RoomNav) IsProfile() bool {
	return n.Position.Slot == 0
}

// Resolver resolves room positions under one slot policy.
//
// With ProfileSlot set every room has slots 0..photoCount and a room without
// photos still has its profile slot. Without it rooms have slots 1..photoCount
// and rooms without photos are not navigable at all.
type Resolver struct {
	ProfileSlot bool
}

// LowBound returns the first valid slot of any room.
func (r Resolver) LowBound() int {
	if r.ProfileSlot {
		return 0
	}
	return 1
}

// Valid reports whether slot is navigable in room.
func (r Resolver) Valid(room *domain.Room, slot int) bool {
	return room != nil && slot >= r.LowBound() && slot <= room.PhotoCount()
}

// Resolve computes the previous and next destinations for (roomNo, slot).
// An unknown room, an empty catalog or a slot outside the room's range is
// reported as a not found error.
func (r Resolver) Resolve(catalog *domain.Catalog, roomNo string, slot int) (RoomNav, error) {
	if catalog.Len() == 0 {
		return RoomNav{}, domainerrors.NotFound("catalog is empty")
	}

	idx := catalog.IndexOf(roomNo)
	if idx < 0 {
		return RoomNav{}, domainerrors.NotFoundf("room %s not found", roomNo)
	}

	room := &catalog.Rooms[idx]
	if !r.Valid(room, slot) {
		return RoomNav{}, domainerrors.NotFoundf("room %s has no slot %d", roomNo, slot)
	}

	nav := RoomNav{
		Position:   Position{RoomNo: roomNo, Slot: slot},
		Room:       room,
		Photo:      room.PhotoAt(slot),
		PhotoCount: room.PhotoCount(),
	}

	if slot > r.LowBound() {
		nav.Prev = At(roomNo, slot-1)
	} else {
		nav.Prev = r.lastBefore(catalog, idx)
	}

	if slot < room.PhotoCount() {
		nav.Next = At(roomNo, slot+1)
	} else {
		nav.Next = r.firstAfter(catalog, idx)
	}

	return nav, nil
}

// First returns the first navigable position of the catalog, or the terminal
// when no room has a valid slot.
func (r Resolver) First(catalog *domain.Catalog) Destination {
	return r.firstAfter(catalog, -1)
}

// Last returns the last navigable position of the catalog.
func (r Resolver) Last(catalog *domain.Catalog) Destination {
	return r.lastBefore(catalog, catalog.Len())
}

// lastBefore finds the last valid slot of the nearest navigable room before idx.
// Landing on a neighbour means landing on its last photo, never on its profile
// slot, unless the neighbour has nothing but the profile slot.
func (r Resolver) lastBefore(catalog *domain.Catalog, idx int) Destination {
	for i := idx - 1; i >= 0; i-- {
		room := &catalog.Rooms[i]
		if r.Valid(room, room.PhotoCount()) {
			return At(room.RoomNo, room.PhotoCount())
		}
	}
	return Terminal()
}

// firstAfter finds the first valid slot of the nearest navigable room after idx.
func (r Resolver) firstAfter(catalog *domain.Catalog, idx int) Destination {
	for i := idx + 1; i < catalog.Len(); i++ {
		room := &catalog.Rooms[i]
		if r.Valid(room, r.LowBound()) {
			return At(room.RoomNo, r.LowBound())
		}
	}
	return Terminal()
}
