package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Uptime     string                     `json:"uptime" doc:"Time since the server started"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	catalogHealth := s.checkCatalog()
	components["catalog"] = catalogHealth
	if catalogHealth.Status != "healthy" {
		overall = "degraded"
	}

	if s.services.Stream != nil {
		components["sse"] = ComponentHealth{
			Status:  "healthy",
			Message: fmt.Sprintf("%d clients connected", s.services.Stream.ClientCount()),
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
			Components: components,
		},
	}, nil
}

// checkCatalog reports the cached snapshot. Nothing cached yet is degraded,
// not unhealthy: the first page view loads it.
func (s *Server) checkCatalog() ComponentHealth {
	if s.services.Catalog == nil {
		return ComponentHealth{Status: "unhealthy", Message: "catalog not configured"}
	}

	st := s.services.Catalog.Status()
	if st.RoomsFetchedAt.IsZero() {
		return ComponentHealth{Status: "degraded", Message: "catalog not loaded yet"}
	}
	return ComponentHealth{
		Status: "healthy",
		Message: fmt.Sprintf("%d rooms, %d photos, fetched %s ago",
			st.Rooms, st.Photos, time.Since(st.RoomsFetchedAt).Round(time.Second)),
	}
}
