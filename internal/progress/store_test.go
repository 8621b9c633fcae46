package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
)

func TestStoreBuffersProgressEvents(t *testing.T) {
	eb := bus.NewEventBus()
	store := NewStore(eb, 10)
	defer store.Close()
	reporter := NewReporter(eb)

	reporter.StartTask("task-1", "edit", 3)
	reporter.Advance("task-1", 1)
	reporter.Finish("task-1", true, "done")
	store.Drain()

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "task-1", snap[0].Payload["task_id"])
}

func TestStoreClearsBufferOnFirstStartAfterAllFinished(t *testing.T) {
	eb := bus.NewEventBus()
	store := NewStore(eb, 10)
	defer store.Close()
	reporter := NewReporter(eb)

	reporter.StartTask("task-1", "edit", 1)
	reporter.Finish("task-1", true, "done")
	store.Drain()
	require.Len(t, store.Snapshot(), 2)

	reporter.StartTask("task-2", "upload", 1)
	store.Drain()

	assert.Len(t, store.Snapshot(), 1)
}

func TestStoreReadSinceReturnsOnlyNewEvents(t *testing.T) {
	eb := bus.NewEventBus()
	store := NewStore(eb, 10)
	defer store.Close()
	reporter := NewReporter(eb)

	reporter.StartTask("task-1", "edit", 1)
	store.Drain()
	_, cursor := store.ReadSince(0)

	reporter.Advance("task-1", 1)
	store.Drain()
	events, next := store.ReadSince(cursor)

	require.Len(t, events, 1)
	assert.Greater(t, next, cursor)
}
