package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/sse"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

// ProvideRenderer provides the page templates. Templates loaded from disk are
// watched and every reload is announced on the event stream.
func ProvideRenderer(i do.Injector) (*web.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	events := do.MustInvoke[*sse.Manager](i)

	r, err := web.NewRenderer(cfg.Server.TemplateDir, log.With("component", "templates"))
	if err != nil {
		return nil, err
	}

	if err := r.Watch(context.Background(), events.TemplatesReloaded); err != nil {
		log.Warn("Template reload disabled", "dir", cfg.Server.TemplateDir, "error", err)
	}

	return r, nil
}

// ProvideWebHandler provides the HTML pages.
func ProvideWebHandler(i do.Injector) (*web.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return web.NewHandler(
		do.MustInvoke[*service.GalleryService](i),
		do.MustInvoke[*service.BlogService](i),
		do.MustInvoke[*service.SitemapService](i),
		&cfg.Site,
		do.MustInvoke[*web.Renderer](i),
		log,
	), nil
}
