package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/progress"
)

// ProgressHandler exposes the buffered progress.* event history kept by
// progress.Store: a REST snapshot for clients that just connected, and an
// SSE stream for clients that want to watch it live. It assumes something
// else (the daemon's own poll loop) calls store.Drain() periodically —
// this handler only ever reads the buffer, never drains the subscription
// itself, so two readers can't split events meant for each other.
type ProgressHandler struct {
	store             *progress.Store
	logger            *slog.Logger
	pollInterval      time.Duration
	heartbeatInterval time.Duration
}

// NewProgressHandler wraps store. logger defaults to slog.Default() when nil.
func NewProgressHandler(store *progress.Store, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		store:             store,
		logger:            logger,
		pollInterval:      500 * time.Millisecond,
		heartbeatInterval: 30 * time.Second,
	}
}

// SetIntervals overrides the SSE poll/heartbeat cadence, for tests.
func (h *ProgressHandler) SetIntervals(poll, heartbeat time.Duration) {
	h.pollInterval = poll
	h.heartbeatInterval = heartbeat
}

// EventResponse is one progress.* event's wire representation.
type EventResponse struct {
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
}

func eventResponseFrom(ev bus.Event) EventResponse {
	return EventResponse{Type: ev.Type, Payload: ev.Payload, EventID: ev.EventID, Timestamp: ev.Timestamp}
}

// ListProgressInput is the (empty) input for GET /progress.
type ListProgressInput struct{}

// ListProgressOutput wraps the buffered event snapshot.
type ListProgressOutput struct {
	Body struct {
		Events []EventResponse `json:"events"`
	}
}

// Register wires GET /progress into api. The SSE stream is registered
// separately via RegisterSSE since Huma has no native support for it.
func (h *ProgressHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProgress", Method: "GET", Path: "/progress",
		Summary: "Buffered progress event snapshot", Tags: []string{"Progress"},
	}, h.List)
}

// List implements GET /progress.
func (h *ProgressHandler) List(_ context.Context, _ *ListProgressInput) (*ListProgressOutput, error) {
	snapshot := h.store.Snapshot()
	out := &ListProgressOutput{}
	out.Body.Events = make([]EventResponse, len(snapshot))
	for i, ev := range snapshot {
		out.Body.Events[i] = eventResponseFrom(ev)
	}
	return out, nil
}

// RegisterSSE mounts GET /progress/stream as a raw chi route.
func (h *ProgressHandler) RegisterSSE(router chi.Router) {
	router.Get("/progress/stream", h.handleStream)
}

// handleStream streams progress events as they're appended to the store's
// buffer. Unlike a channel-fed SSE handler, delivery is a ticker+ReadSince
// poll loop, matching this codebase's bus.Subscription (Poll-only, no
// channel) rather than a teacher-style blocking-receive loop.
func (h *ProgressHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	rc := http.NewResponseController(w)

	cursor := 0
	if from := r.URL.Query().Get("from"); from != "" {
		if n, err := strconv.Atoi(from); err == nil {
			cursor = n
		}
	} else {
		// Default to "from now": replay nothing already buffered, only
		// events appended after the client connected.
		_, cursor = h.store.ReadSince(0)
	}

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			var events []bus.Event
			events, cursor = h.store.ReadSince(cursor)
			for _, ev := range events {
				if err := h.writeEvent(w, ev); err != nil {
					h.logger.Debug("sse write failed, client likely disconnected", "error", err)
					return
				}
			}
			if len(events) > 0 {
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}

func (h *ProgressHandler) writeEvent(w http.ResponseWriter, ev bus.Event) error {
	data, err := json.Marshal(eventResponseFrom(ev))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
