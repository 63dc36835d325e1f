// Package sse pushes site events to connected browsers and tools: catalog
// revalidations, template reloads and keepalive heartbeats.
package sse

import (
	"time"

	"github.com/roomandroom/roomandroom-server/internal/id"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventCatalogRevalidated follows a successful cache revalidation.
	EventCatalogRevalidated EventType = "catalog.revalidated"
	// EventTemplatesReloaded follows a development template reload.
	EventTemplatesReloaded EventType = "templates.reloaded"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// CatalogRevalidatedData is the payload of catalog.revalidated.
type CatalogRevalidatedData struct {
	Tag   string `json:"tag"`
	Items int    `json:"items"`
}

// TemplatesReloadedData is the payload of templates.reloaded.
type TemplatesReloadedData struct {
	Templates []string `json:"templates"`
}

// ConnectedData is the payload of connected.
type ConnectedData struct {
	ClientID string `json:"client_id"`
}

func newEvent(t EventType, at time.Time, data any) Event {
	return Event{
		ID:        id.MustGenerate(id.PrefixEvent),
		Type:      t,
		Timestamp: at,
		Data:      data,
	}
}

// NewCatalogRevalidatedEvent creates a catalog.revalidated event.
func NewCatalogRevalidatedEvent(tag string, items int, at time.Time) Event {
	return newEvent(EventCatalogRevalidated, at, CatalogRevalidatedData{Tag: tag, Items: items})
}

// NewTemplatesReloadedEvent creates a templates.reloaded event.
func NewTemplatesReloadedEvent(names []string) Event {
	return newEvent(EventTemplatesReloaded, time.Now(), TemplatesReloadedData{Templates: names})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, time.Now(), struct{}{})
}

func newConnectedEvent(clientID string) Event {
	return newEvent(EventConnected, time.Now(), ConnectedData{ClientID: clientID})
}
