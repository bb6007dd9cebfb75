package engine

import "time"

// EventType identifies an engine lifecycle event.
type EventType string

const (
	// EventLoadStarted fires when a load cycle begins.
	EventLoadStarted EventType = "load_started"

	// EventLoadCompleted fires when a load cycle stored fresh remote state.
	EventLoadCompleted EventType = "load_completed"

	// EventOfflineFallback fires when a load cycle fell back to cached or
	// seed data.
	EventOfflineFallback EventType = "offline_fallback"

	// EventSeeded fires when an empty backend was seeded with defaults.
	EventSeeded EventType = "seeded"

	// EventCollectionSynced fires after a background persist attempt for a
	// collection, whether or not the remote accepted it.
	EventCollectionSynced EventType = "collection_synced"
)

// Event is an engine lifecycle notification delivered to Options.OnEvent.
type Event struct {
	Type       EventType `json:"type"`
	Collection string    `json:"collection,omitempty"`
	Count      int       `json:"count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
