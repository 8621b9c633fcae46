package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversToMatchingSubscribers(t *testing.T) {
	b := NewEventBus()
	sub := b.Subscribe("progress.")
	defer sub.Close()

	other := b.Subscribe("recording.started")
	defer other.Close()

	b.Publish(NewEvent("progress.start", map[string]any{"task": "edit"}))
	b.Publish(NewEvent("recording.started", map[string]any{"session_id": "abc"}))
	b.Publish(NewEvent("progress.advance", nil))

	got := sub.Poll(0)
	require.Len(t, got, 2)
	assert.Equal(t, "progress.start", got[0].Type)
	assert.Equal(t, "progress.advance", got[1].Type)

	gotOther := other.Poll(0)
	require.Len(t, gotOther, 1)
	assert.Equal(t, "recording.started", gotOther[0].Type)
}

func TestEventBusUnfilteredSubscriptionMatchesEverything(t *testing.T) {
	b := NewEventBus()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(NewEvent("anything.here", nil))
	got := sub.Poll(0)
	require.Len(t, got, 1)
}

func TestEventBusDropsOldestOnOverflow(t *testing.T) {
	b := NewEventBus()
	sub := b.Subscribe()
	defer sub.Close()

	for i := 0; i < defaultSubscriptionBuffer+5; i++ {
		b.Publish(NewEvent("x", map[string]any{"i": i}))
	}

	assert.Equal(t, 5, sub.Dropped())
	got := sub.Poll(0)
	require.Len(t, got, defaultSubscriptionBuffer)
	assert.Equal(t, 5, got[0].Payload["i"])
}

func TestEventBusCloseStopsDelivery(t *testing.T) {
	b := NewEventBus()
	sub := b.Subscribe()
	sub.Close()

	b.Publish(NewEvent("x", nil))
	assert.Empty(t, sub.Poll(0))
}

func TestNewEventStampsIDAndTimestamp(t *testing.T) {
	before := time.Now()
	ev := NewEvent("x", nil)
	assert.NotEmpty(t, ev.EventID)
	assert.False(t, ev.Timestamp.Before(before))
}

func TestCommandBusUnknownCommandResolvesImmediately(t *testing.T) {
	cb := NewCommandBus()
	res := <-cb.Submit(context.Background(), "nonexistent", nil)
	require.Error(t, res.Err)
}

func TestCommandBusDispatchesRegisteredHandler(t *testing.T) {
	cb := NewCommandBus()
	cb.Register("ping", func(ctx context.Context, payload map[string]any) (any, error) {
		return "pong", nil
	})

	value, err := cb.Dispatch(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", value)
}

func TestFrameHubGetLatestReportsNoneBeforePublish(t *testing.T) {
	h := NewFrameHub()
	_, ok := h.GetLatest()
	assert.False(t, ok)
}
