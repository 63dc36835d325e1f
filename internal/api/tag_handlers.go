package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the tag index with counts and thumbnails",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagPhoto",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{tag}/photos/{index}",
		Summary:     "Resolve tagged photo",
		Description: "Returns the photo at a position of a tag sequence together with its neighbours",
		Tags:        []string{"Tags"},
	}, s.handleGetTagPhoto)
}

// === DTOs ===

// ListTagsResponse contains the tag index.
type ListTagsResponse struct {
	Tags []navigation.TagSummary `json:"tags" doc:"Tags in reading order"`
}

// ListTagsOutput wraps the tag index for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// GetTagPhotoInput addresses one position in a tag sequence.
type GetTagPhotoInput struct {
	Tag   string `path:"tag" doc:"Tag label"`
	Index string `path:"index" doc:"1-based position, zero padded"`
}

// Resolve decodes the tag when the router matched on the escaped path.
func (i *GetTagPhotoInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.Tag = web.DecodeSegment(&u, i.Tag)
	return nil
}

// TagDestinationResponse is a navigation target inside a tag sequence.
// Terminal targets point at the tag listing.
type TagDestinationResponse struct {
	Terminal bool   `json:"terminal" doc:"True when the target is the tag listing"`
	Index    int    `json:"index,omitempty" doc:"Target position"`
	Path     string `json:"path" doc:"Site path of the target page"`
}

// TagPhotoResponse is a resolved tag position.
type TagPhotoResponse struct {
	Tag   string                 `json:"tag" doc:"Normalised tag"`
	Index int                    `json:"index" doc:"Resolved position"`
	Total int                    `json:"total" doc:"Photos carrying the tag"`
	Photo navigation.TaggedPhoto `json:"photo" doc:"The tagged photo and its owning room"`
	Prev  TagDestinationResponse `json:"prev" doc:"Previous destination"`
	Next  TagDestinationResponse `json:"next" doc:"Next destination"`
}

// TagPhotoOutput wraps the resolved tag position for Huma.
type TagPhotoOutput struct {
	Body TagPhotoResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Gallery.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []navigation.TagSummary{}
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleGetTagPhoto(ctx context.Context, input *GetTagPhotoInput) (*TagPhotoOutput, error) {
	nav, err := s.services.Gallery.Tag(ctx, input.Tag, input.Index)
	if err != nil {
		return nil, err
	}

	return &TagPhotoOutput{Body: TagPhotoResponse{
		Tag:   nav.Tag,
		Index: nav.Index,
		Total: nav.Total,
		Photo: nav.Photo,
		Prev:  toTagDestination(nav.Tag, nav.Prev),
		Next:  toTagDestination(nav.Tag, nav.Next),
	}}, nil
}

func toTagDestination(tag string, d navigation.TagDestination) TagDestinationResponse {
	if d.Terminal {
		return TagDestinationResponse{Terminal: true, Path: "/tags"}
	}
	return TagDestinationResponse{Index: d.Index, Path: web.TagPath(tag, d.Index)}
}
