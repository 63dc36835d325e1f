package watcher

import "github.com/fsnotify/fsnotify"

// EventType represents the kind of change seen for a path.
type EventType int

const (
	// EventChanged is a created or written file.
	EventChanged EventType = iota
	// EventRemoved is a deleted or renamed-away file.
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one settled change.
type Event struct {
	Type EventType
	Path string
}

// classify maps an fsnotify op to an event type. Chmod-only events report
// false.
func classify(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventRemoved, true
	case op.Has(fsnotify.Create), op.Has(fsnotify.Write):
		return EventChanged, true
	default:
		return 0, false
	}
}
