package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/roomandroom/roomandroom-server/internal/sse"
)

// ProvideSSEManager provides the event stream manager, already running.
func ProvideSSEManager(i do.Injector) (*sse.Manager, error) {
	log := do.MustInvoke[*slog.Logger](i)

	m := sse.NewManager(log.With("component", "sse"))
	m.Start(context.Background())
	return m, nil
}

// ProvideSSEHandler provides the HTTP side of the event stream.
func ProvideSSEHandler(i do.Injector) (*sse.Handler, error) {
	log := do.MustInvoke[*slog.Logger](i)
	return sse.NewHandler(do.MustInvoke[*sse.Manager](i), log), nil
}
