// Package di provides dependency injection configuration for the room and
// room. server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/api"
	"github.com/roomandroom/roomandroom-server/internal/catalog"
	"github.com/roomandroom/roomandroom-server/internal/cms"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/di/providers"
	"github.com/roomandroom/roomandroom-server/internal/service"
	"github.com/roomandroom/roomandroom-server/internal/sse"
	"github.com/roomandroom/roomandroom-server/internal/web"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()
	do.ProvideNamedValue(injector, providers.ArgsName, args)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSSEHandler)

	// Content layer
	do.Provide(injector, providers.ProvideCMSClient)
	do.Provide(injector, providers.ProvideCatalog)

	// Business services
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvideBlogService)
	do.Provide(injector, providers.ProvideSitemapService)

	// Presentation
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideWebHandler)
	do.Provide(injector, providers.ProvideAPIServer)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization and
// starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		invoke[*config.Config],
		invoke[*slog.Logger],
		invoke[*sse.Manager],
		invoke[*cms.Client],
		invoke[*catalog.Service],
		invoke[*service.GalleryService],
		invoke[*web.Renderer],
		invoke[*api.Server],
		invoke[*providers.HTTPServerHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
