package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

func (s *Server) registerRoomRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms",
		Summary:     "List rooms",
		Description: "Returns every room of the current catalog in the requested order",
		Tags:        []string{"Rooms"},
	}, s.handleListRooms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRoomSlot",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/{roomNo}/slots/{slot}",
		Summary:     "Resolve room slot",
		Description: "Returns the content at a room position together with its previous and next destinations",
		Tags:        []string{"Rooms"},
	}, s.handleGetRoomSlot)
}

// === DTOs ===

// ListRoomsInput contains parameters for listing rooms.
type ListRoomsInput struct {
	Order string `query:"order" enum:"asc,desc" default:"asc" doc:"Sort order on the room number"`
}

// ListRoomsResponse contains the room listing.
type ListRoomsResponse struct {
	Order string                `json:"order" doc:"Sort order applied"`
	Rooms []service.RoomSummary `json:"rooms" doc:"Rooms in order"`
}

// ListRoomsOutput wraps the room listing for Huma.
type ListRoomsOutput struct {
	Body ListRoomsResponse
}

// GetRoomSlotInput addresses one room position.
type GetRoomSlotInput struct {
	RoomNo string `path:"roomNo" doc:"Room number"`
	Slot   string `path:"slot" doc:"Slot, zero padded; 00 is the profile"`
	Order  string `query:"order" enum:"asc,desc" default:"asc" doc:"Catalog order used for prev/next"`
}

// DestinationResponse is a navigation target. Terminal targets point at the
// room listing.
type DestinationResponse struct {
	Terminal bool   `json:"terminal" doc:"True when the target is the listing"`
	RoomNo   string `json:"room_no,omitempty" doc:"Target room"`
	Slot     int    `json:"slot,omitempty" doc:"Target slot"`
	Path     string `json:"path" doc:"Site path of the target page"`
}

// RoomSlotResponse is a resolved room position.
type RoomSlotResponse struct {
	RoomNo     string              `json:"room_no" doc:"Room number"`
	Slot       int                 `json:"slot" doc:"Resolved slot"`
	Profile    bool                `json:"profile" doc:"True on the profile slot"`
	PhotoCount int                 `json:"photo_count" doc:"Photos in the room"`
	Room       *domain.Room        `json:"room" doc:"The room"`
	Photo      *domain.Photo       `json:"photo,omitempty" doc:"Photo at the slot, absent on the profile slot"`
	Prev       DestinationResponse `json:"prev" doc:"Previous destination"`
	Next       DestinationResponse `json:"next" doc:"Next destination"`
}

// RoomSlotOutput wraps the resolved position for Huma.
type RoomSlotOutput struct {
	Body RoomSlotResponse
}

// === Handlers ===

func (s *Server) handleListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	order, err := domain.ParseSortOrder(input.Order)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	rooms, err := s.services.Gallery.Rooms(ctx, order)
	if err != nil {
		return nil, err
	}

	return &ListRoomsOutput{Body: ListRoomsResponse{Order: string(order), Rooms: rooms}}, nil
}

func (s *Server) handleGetRoomSlot(ctx context.Context, input *GetRoomSlotInput) (*RoomSlotOutput, error) {
	order, err := domain.ParseSortOrder(input.Order)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	nav, err := s.services.Gallery.Room(ctx, order, input.RoomNo, input.Slot)
	if err != nil {
		return nil, err
	}

	return &RoomSlotOutput{Body: RoomSlotResponse{
		RoomNo:     nav.Position.RoomNo,
		Slot:       nav.Position.Slot,
		Profile:    nav.IsProfile(),
		PhotoCount: nav.PhotoCount,
		Room:       nav.Room,
		Photo:      nav.Photo,
		Prev:       toDestination(nav.Prev, order),
		Next:       toDestination(nav.Next, order),
	}}, nil
}

func toDestination(d navigation.Destination, order domain.SortOrder) DestinationResponse {
	flags := web.Flags{Order: order}
	if d.Terminal {
		return DestinationResponse{Terminal: true, Path: "/rooms" + flags.Query()}
	}
	return DestinationResponse{
		RoomNo: d.RoomNo,
		Slot:   d.Slot,
		Path:   web.RoomPath(d.RoomNo, d.Slot) + flags.Query(),
	}
}

// Resolve decodes the room number when the router matched on the escaped path.
func (i *GetRoomSlotInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.RoomNo = web.DecodeSegment(&u, i.RoomNo)
	return nil
}
