// Package api provides the HTTP server: the JSON API, the revalidation webhook,
// the live event stream, and the HTML pages mounted beside them.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/roomandroom/roomandroom-server/internal/http/response"
	"github.com/roomandroom/roomandroom-server/internal/logger"
	"github.com/roomandroom/roomandroom-server/internal/ratelimit"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

// Options configures the server.
type Options struct {
	Name    string
	Version string
	// RevalidateSecret guards the webhook. Empty rejects every call.
	RevalidateSecret string
	RevalidateRPS    float64
	RevalidateBurst  int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	pages      *web.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	revalidate *ratelimit.KeyedRateLimiter
	retryAfter time.Duration
	secret     string
	startedAt  time.Time
}

// NewServer creates the server with every route configured. pages may be nil,
// in which case only the API is served.
func NewServer(services *Services, pages *web.Handler, opts Options, logger *slog.Logger) *Server {
	if opts.Name == "" {
		opts.Name = "room and room. API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.RevalidateRPS <= 0 {
		opts.RevalidateRPS = 0.2
	}
	if opts.RevalidateBurst <= 0 {
		opts.RevalidateBurst = 5
	}

	s := &Server{
		services:   services,
		pages:      pages,
		router:     chi.NewRouter(),
		logger:     logger,
		revalidate: ratelimit.New(opts.RevalidateRPS, opts.RevalidateBurst),
		retryAfter: time.Duration(float64(time.Second) / opts.RevalidateRPS),
		secret:     opts.RevalidateSecret,
		startedAt:  time.Now(),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(opts.Name, opts.Version)
	humaConfig.DocsPath = "/api/docs"
	humaConfig.OpenAPIPath = "/api/openapi"
	humaConfig.SchemasPath = "/api/schemas"
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, for tests and the OpenAPI dump.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown releases the rate limiter.
func (s *Server) Shutdown() error {
	s.revalidate.Stop()
	return nil
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(logger.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	if s.services.Site != nil {
		s.router.Use(web.HostRedirect(s.services.Site))
	}
	s.router.Use(middleware.Compress(5, "text/html", "text/plain", "application/json", "application/xml"))

	s.router.Use(forPrefix("/api/", cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
		MaxAge:         300,
	})))
	s.router.Use(forPrefix("/api/revalidate", RateLimitMiddleware(s.revalidate, s.retryAfter, s.logger)))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerRoomRoutes()
	s.registerTagRoutes()
	s.registerRevalidateRoutes()

	if s.services.Events != nil {
		s.router.Get("/api/v1/events", s.services.Events.ServeHTTP)
	}

	if s.pages != nil {
		s.pages.Register(s.router)
	}

	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) || s.pages == nil {
		response.NotFound(w, "route not found", s.logger)
		return
	}
	s.pages.NotFound(w, r)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) || s.pages == nil {
		response.MethodNotAllowed(w, s.logger)
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || path == "/health"
}

// forPrefix applies mw only to requests under prefix.
func forPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
