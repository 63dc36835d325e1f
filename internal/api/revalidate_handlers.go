package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/roomandroom/roomandroom-server/internal/catalog"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/roomandroom/roomandroom-server/internal/logger"
)

func (s *Server) registerRevalidateRoutes() {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		huma.Register(s.api, huma.Operation{
			OperationID: "revalidate" + method,
			Method:      method,
			Path:        "/api/revalidate",
			Summary:     "Revalidate cached content",
			Description: "Drops and refetches a cached catalog tag. Called by the CMS after an edit.",
			Tags:        []string{"Revalidate"},
		}, s.handleRevalidate)
	}
}

// === DTOs ===

// RevalidateInput carries the shared secret and the tag to refetch.
type RevalidateInput struct {
	Secret string `query:"secret" doc:"Shared webhook secret"`
	Tag    string `query:"tag" doc:"Cache tag: rooms (default) or posts"`
}

// RevalidateResponse reports a finished revalidation.
type RevalidateResponse struct {
	Revalidated bool   `json:"revalidated" doc:"Always true on success"`
	Tag         string `json:"tag" doc:"Tag that was refetched"`
	Now         int64  `json:"now" doc:"Completion time in Unix milliseconds"`
}

// RevalidateOutput wraps the revalidation result for Huma.
type RevalidateOutput struct {
	Body RevalidateResponse
}

// === Handlers ===

func (s *Server) handleRevalidate(ctx context.Context, input *RevalidateInput) (*RevalidateOutput, error) {
	if !s.secretMatches(input.Secret) {
		return nil, domainerrors.Unauthorized("Unauthorized")
	}

	tag := input.Tag
	if tag == "" {
		tag = catalog.TagRooms
	}

	if err := s.services.Catalog.Revalidate(ctx, tag); err != nil {
		if errors.Is(err, domainerrors.ErrValidation) {
			return nil, err
		}
		logger.FromContext(ctx, s.logger).Error("revalidation failed", "tag", tag, "error", err)
		return nil, huma.Error500InternalServerError("Error revalidating")
	}

	return &RevalidateOutput{Body: RevalidateResponse{
		Revalidated: true,
		Tag:         tag,
		Now:         time.Now().UnixMilli(),
	}}, nil
}

// secretMatches compares in constant time. An unset secret matches nothing.
func (s *Server) secretMatches(given string) bool {
	if s.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.secret)) == 1
}
