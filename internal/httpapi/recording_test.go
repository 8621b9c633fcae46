package httpapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/recording"
)

func TestRecordingHandlerGetStatusReportsIdleSession(t *testing.T) {
	session := recording.NewSession(recording.NewStateMachine(), nil, nil, nil, bus.NewEventBus())
	handler := NewRecordingHandler(session)

	out, err := handler.GetStatus(context.Background(), &RecordingStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, string(recording.StateStopped), out.Body.State)
	assert.Equal(t, string(model.GameModeBattle), out.Body.GameMode)
}
