// Package providers contains dependency injection providers for the room and
// room. server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/logger"
)

// ArgsName names the command-line arguments value in the container.
const ArgsName = "args"

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args, err := do.InvokeNamed[[]string](i, ArgsName)
	if err != nil {
		args = nil
	}
	return config.LoadConfig(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting room and room. server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"cms", cfg.CMS.BaseURL,
		"base_url", cfg.Site.BaseURL,
	)

	return log, nil
}
