package progress

import (
	"sync"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
)

// defaultCapacity is N in spec §4.J ("keeps at most N (default 500) events").
const defaultCapacity = 500

// Store subscribes to progress.* and keeps at most capacity events in
// insertion order, so late HTTP clients can replay the tail via
// Snapshot/ReadSince. On the first "start" after every active task has
// finished, the buffer is cleared (spec §4.J).
type Store struct {
	capacity int
	sub      *bus.Subscription

	mu         sync.Mutex
	events     []bus.Event
	nextCursor int
	active     map[string]bool
}

// NewStore constructs a Store and subscribes it to progress.* on
// eventBus. Call Close to release the subscription.
func NewStore(eventBus *bus.EventBus, capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	s := &Store{
		capacity: capacity,
		sub:      eventBus.Subscribe("progress."),
		active:   map[string]bool{},
	}
	return s
}

// Drain pulls and applies any buffered subscription events. Callers run
// this from their own poll loop (the store does no implicit background
// work, matching the teacher's explicit-scheduling idiom).
func (s *Store) Drain() {
	for _, ev := range s.sub.Poll(0) {
		s.apply(ev)
	}
}

func (s *Store) apply(ev bus.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskID, _ := ev.Payload["task_id"].(string)

	if ev.Type == events.ProgressStart && len(s.active) == 0 {
		s.events = s.events[:0]
	}

	switch ev.Type {
	case events.ProgressStart:
		if taskID != "" {
			s.active[taskID] = true
		}
	case events.ProgressFinish:
		if taskID != "" {
			delete(s.active, taskID)
		}
	}

	s.events = append(s.events, ev)
	if len(s.events) > s.capacity {
		s.events = s.events[len(s.events)-s.capacity:]
	}
	s.nextCursor++
}

// Snapshot returns every currently buffered event, oldest first.
func (s *Store) Snapshot() []bus.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bus.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ReadSince returns events appended after cursor along with the next
// cursor to pass on the following call. cursor 0 means "from the start
// of the current buffer".
func (s *Store) ReadSince(cursor int) ([]bus.Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.nextCursor
	firstBuffered := total - len(s.events)
	start := cursor
	if start < firstBuffered {
		start = firstBuffered
	}
	offset := start - firstBuffered
	if offset < 0 || offset > len(s.events) {
		return nil, total
	}
	out := make([]bus.Event, len(s.events)-offset)
	copy(out, s.events[offset:])
	return out, total
}

// Close releases the underlying event bus subscription.
func (s *Store) Close() {
	s.sub.Close()
}
