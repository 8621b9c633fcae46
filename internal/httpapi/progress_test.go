package httpapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/progress"
)

func TestProgressHandlerListReturnsBufferedEvents(t *testing.T) {
	eventBus := bus.NewEventBus()
	store := progress.NewStore(eventBus, 10)
	reporter := progress.NewReporter(eventBus)

	reporter.StartTask("task-1", "editing", 3)
	store.Drain()

	h := NewProgressHandler(store, nil)
	out, err := h.List(context.Background(), &ListProgressInput{})
	require.NoError(t, err)
	require.Len(t, out.Body.Events, 1)
	assert.Equal(t, "task-1", out.Body.Events[0].Payload["task_id"])
}
