package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/catalog"
	"github.com/roomandroom/roomandroom-server/internal/cms"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/sse"
)

// ProvideCMSClient provides the WordPress client.
func ProvideCMSClient(i do.Injector) (*cms.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return cms.New(cms.Config{
		BaseURL:   cfg.CMS.BaseURL,
		UserAgent: cfg.CMS.UserAgent,
		Timeout:   cfg.CMS.Timeout,
		Retries:   cfg.CMS.Retries,
		RPS:       cfg.CMS.RPS,
	}, log.With("component", "cms")), nil
}

// ProvideCatalog provides the cached catalog. Revalidations are announced on
// the event stream.
func ProvideCatalog(i do.Injector) (*catalog.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	client := do.MustInvoke[*cms.Client](i)
	events := do.MustInvoke[*sse.Manager](i)

	svc := catalog.NewService(client, catalog.Options{
		RoomsTTL: cfg.Catalog.RoomsTTL,
		PostsTTL: cfg.Catalog.PostsTTL,
	}, log.With("component", "catalog"))
	svc.SetNotifier(events)

	return svc, nil
}

// ProvideGalleryService provides room and tag navigation.
func ProvideGalleryService(i do.Injector) (*service.GalleryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cat := do.MustInvoke[*catalog.Service](i)

	return service.NewGalleryService(cat, service.GalleryOptions{
		ProfileSlot: cfg.Catalog.ProfileSlot,
		TagWrap:     cfg.Catalog.TagWrap,
		MinTagCount: cfg.Site.MinTagCount,
	}), nil
}

// ProvideBlogService provides the blog views.
func ProvideBlogService(i do.Injector) (*service.BlogService, error) {
	return service.NewBlogService(do.MustInvoke[*catalog.Service](i)), nil
}

// ProvideSitemapService provides the sitemap builder.
func ProvideSitemapService(i do.Injector) (*service.SitemapService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	cat := do.MustInvoke[*catalog.Service](i)

	return service.NewSitemapService(cat, cat, cfg.Site.BaseURL, log), nil
}
