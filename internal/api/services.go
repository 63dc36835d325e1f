package api

import (
	"context"

	"github.com/roomandroom/roomandroom-server/internal/catalog"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/sse"
)

// CatalogAdmin is the part of the catalog service the webhook and the health
// check use.
type CatalogAdmin interface {
	Revalidate(ctx context.Context, tag string) error
	Status() catalog.Status
}

// Services groups everything the handlers depend on.
type Services struct {
	Gallery *service.GalleryService
	Catalog CatalogAdmin
	Events  *sse.Handler // optional
	Stream  *sse.Manager // optional, for health
	Site    *config.SiteConfig
}
