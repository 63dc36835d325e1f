package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/api"
	"github.com/roomandroom/roomandroom-server/internal/catalog"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/sse"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

// ProvideAPIServer provides the routed handler.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Revalidate.Secret == "" {
		log.Warn("REVALIDATE_SECRET is empty, the revalidation webhook rejects every call")
	}

	services := &api.Services{
		Gallery: do.MustInvoke[*service.GalleryService](i),
		Catalog: do.MustInvoke[*catalog.Service](i),
		Events:  do.MustInvoke[*sse.Handler](i),
		Stream:  do.MustInvoke[*sse.Manager](i),
		Site:    &cfg.Site,
	}

	return api.NewServer(services, do.MustInvoke[*web.Handler](i), api.Options{
		RevalidateSecret: cfg.Revalidate.Secret,
		RevalidateRPS:    cfg.Revalidate.RPS,
		RevalidateBurst:  cfg.Revalidate.Burst,
	}, log), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
