package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrClosed is returned by Connect after Shutdown.
var ErrClosed = errors.New("sse: manager closed")

const defaultHeartbeat = 30 * time.Second

// Handler streams events at GET /api/v1/events.
type Handler struct {
	manager   *Manager
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager:   manager,
		logger:    logger,
		heartbeat: defaultHeartbeat,
	}
}

// ServeHTTP handles the SSE connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	client, err := h.manager.Connect()
	if err != nil {
		h.logger.Warn("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	defer h.manager.Disconnect(client.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	clientLogger := h.logger.With(slog.String("client_id", client.ID))

	if err := h.send(w, rc, newConnectedEvent(client.ID)); err != nil {
		clientLogger.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.send(w, rc, event); err != nil {
				clientLogger.Debug("client gone during send")
				return
			}

		case <-ticker.C:
			if err := h.send(w, rc, NewHeartbeatEvent()); err != nil {
				clientLogger.Debug("client gone during heartbeat")
				return
			}

		case <-client.Done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// send writes one event in text/event-stream framing and flushes it.
func (h *Handler) send(w http.ResponseWriter, rc *http.ResponseController, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Not every ResponseWriter supports deadlines.
	if err := rc.SetWriteDeadline(time.Now().Add(2 * h.heartbeat)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
