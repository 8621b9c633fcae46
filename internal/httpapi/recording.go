package httpapi

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/saw4405/splat-replay/internal/recording"
)

// RecordingHandler exposes read-only visibility into the active recording
// session. It intentionally has no write operations: AutoRecordingUseCase
// is the session's sole driver, triggered by its own analyzer loop, and a
// second HTTP-triggered caller of Start/Pause/Resume/Stop/Cancel would
// race it for control of the same state machine. An operator watches
// this endpoint (or the progress/event stream) rather than commanding it.
type RecordingHandler struct {
	session *recording.Session
}

// NewRecordingHandler wraps session.
func NewRecordingHandler(session *recording.Session) *RecordingHandler {
	return &RecordingHandler{session: session}
}

// Register wires GET /recording/status into api.
func (h *RecordingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getRecordingStatus", Method: "GET", Path: "/recording/status",
		Summary:     "Current recording session state",
		Description: "Read-only: the session is driven entirely by the autonomous recording loop.",
		Tags:        []string{"Recording"},
	}, h.GetStatus)
}

// RecordingStatusInput is the (empty) input for GET /recording/status.
type RecordingStatusInput struct{}

// RecordingStatusOutput wraps RecordingStatusResponse.
type RecordingStatusOutput struct {
	Body RecordingStatusResponse
}

// RecordingStatusResponse reports the state machine's current state and
// the in-progress metadata snapshot.
type RecordingStatusResponse struct {
	State    string         `json:"state"`
	GameMode string         `json:"game_mode"`
	Metadata map[string]any `json:"metadata"`
}

// GetStatus implements GET /recording/status.
func (h *RecordingHandler) GetStatus(_ context.Context, _ *RecordingStatusInput) (*RecordingStatusOutput, error) {
	ctx := h.session.Context()
	return &RecordingStatusOutput{Body: RecordingStatusResponse{
		State:    string(h.session.State()),
		GameMode: string(ctx.Metadata.GameMode),
		Metadata: ctx.Metadata.ToDict(),
	}}, nil
}
