// Package bus provides the three concurrency-substrate primitives the core
// depends on: a topic-based event bus, a typed command bus, and a
// latest-frame hub. All three are process-wide singletons (per spec.md §5)
// constructed once at bootstrap and passed explicitly to every consumer —
// there is no package-level implicit global.
package bus

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is a structured, dotted-type domain/progress/asset notification
// published on the Event bus. Payload is an arbitrary map so that the HTTP
// SSE boundary can forward it verbatim without a type switch.
type Event struct {
	Type          string
	Payload       map[string]any
	EventID       string
	Timestamp     time.Time
	AggregateID   string
	CorrelationID string
}

// NewEvent builds an Event, stamping a sortable ULID event id and the
// current time.
func NewEvent(eventType string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		EventID:   ulid.Make().String(),
		Timestamp: time.Now(),
	}
}

// WithAggregate sets the aggregate id and returns the event for chaining.
func (e Event) WithAggregate(id string) Event {
	e.AggregateID = id
	return e
}

// WithCorrelation sets the correlation id and returns the event for chaining.
func (e Event) WithCorrelation(id string) Event {
	e.CorrelationID = id
	return e
}
