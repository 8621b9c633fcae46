package recording

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// Recorder is the port over the external recording device (e.g. an OBS
// WebSocket connection). Session owns no recording state itself; it
// bridges the state machine to this port.
type Recorder interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	// Stop stops the recorder and returns the finished clip's video path
	// and, if one was produced, its aligned subtitle sidecar path.
	Stop(ctx context.Context) (videoPath string, subtitlePath *string, err error)
}

// AssetSaver is the subset of the asset repository the session needs to
// persist a finished recording. thumbnailPNG is the already-encoded PNG
// bytes of the result frame screenshot, or nil when none was captured.
type AssetSaver interface {
	SaveRecording(ctx context.Context, videoPath string, subtitlePath *string, thumbnailPNG []byte, metadata model.RecordingMetadata) (model.VideoAsset, error)
}

// Session bridges the StateMachine to the Recorder port (spec §4.F). It
// owns no business state beyond the use case's context, which is passed
// into every method via UpdateContext before the corresponding action is
// invoked.
type Session struct {
	machine  *StateMachine
	recorder Recorder
	analyzer Analyzer
	saver    AssetSaver
	eventBus *bus.EventBus
	merger   *MetadataMerger

	mu            sync.Mutex
	ctx           Context
	sessionID     string
	pendingStop   bool
	pendingCancel bool
}

// NewSession constructs a Session wired to its collaborators.
func NewSession(machine *StateMachine, recorder Recorder, analyzer Analyzer, saver AssetSaver, eventBus *bus.EventBus) *Session {
	s := &Session{
		machine:  machine,
		recorder: recorder,
		analyzer: analyzer,
		saver:    saver,
		eventBus: eventBus,
		merger:   NewMetadataMerger(),
		ctx:      NewContext(model.GameModeBattle),
	}
	machine.Listen(s.onTransition)
	return s
}

// State returns the machine's current state.
func (s *Session) State() RecordState { return s.machine.State() }

// Context returns the session's current view of the context (used by the
// use case to resynchronize after an action mutates it, e.g. Stop's
// post-merge reset).
func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// UpdateContext replaces the session's context, called by the use case
// before invoking an action (spec §4.F: "Owns no business state beyond a
// reference to the use case's context").
func (s *Session) UpdateContext(ctx Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// Setup brings the recorder up once at the start of an auto-recording run.
func (s *Session) Setup(ctx context.Context) error {
	return s.recorder.Setup(ctx)
}

// Teardown brings the recorder down at the end of an auto-recording run.
func (s *Session) Teardown(ctx context.Context) error {
	return s.recorder.Teardown(ctx)
}

// Start stamps battleStartedAt and a new session ID and fires START, which
// moves STOPPED to MATCHING or MATCHING to RECORDING. Only the call made
// outside STOPPED issues the recorder start command and publishes
// recording.started.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	now := time.Now()
	s.ctx.BattleStartedAt = &now
	s.sessionID = newSessionID()
	sessionID := s.sessionID
	mode := s.ctx.Metadata.GameMode
	rate := ""
	if s.ctx.Metadata.Rate != nil {
		rate = s.ctx.Metadata.Rate.String()
	}
	s.mu.Unlock()

	wasStopped := s.State() == StateStopped
	s.machine.Fire(EventStart)

	// Entering MATCHING from STOPPED is not yet a recording: the recorder
	// is only told to start once the machine reaches RECORDING.
	if wasStopped {
		return nil
	}

	if err := s.recorder.Start(ctx); err != nil {
		return err
	}
	s.publish(events.NewRecordingStarted(sessionID, string(mode), rate))
	return nil
}

// Pause transitions to PAUSED and issues the recorder pause command.
func (s *Session) Pause(ctx context.Context) error {
	s.machine.Fire(EventPause)
	if err := s.recorder.Pause(ctx); err != nil {
		return err
	}
	s.publish(events.NewRecordingPaused(s.currentSessionID(), "session_finished"))
	return nil
}

// Resume transitions back to RECORDING and issues the recorder resume command.
func (s *Session) Resume(ctx context.Context) error {
	s.machine.Fire(EventResume)
	if err := s.recorder.Resume(ctx); err != nil {
		return err
	}
	s.publish(events.NewRecordingResumed(s.currentSessionID()))
	return nil
}

// Cancel drops the in-progress recording without saving an asset and
// resets the context, preserving GameMode (spec §4.F, E2E-2).
func (s *Session) Cancel(ctx context.Context) error {
	s.machine.Fire(EventStop)
	_, _, _ = s.recorder.Stop(ctx)
	s.machine.Complete()

	s.mu.Lock()
	reason := "cancelled"
	sessionID := s.currentSessionIDLocked()
	mode := s.ctx.Metadata.GameMode
	s.ctx = NewContext(mode)
	s.pendingStop = false
	s.pendingCancel = false
	s.mu.Unlock()

	s.publish(events.NewRecordingCancelled(sessionID, reason))
	return nil
}

// GetResultFrame is supplied by the use case so Stop can fall back to a
// freshly captured frame when the phase handlers never set ResultFrame.
type GetResultFrame func() *frame.Frame

// Stop completes the session: stops the recorder to obtain the clip,
// resolves the result if still missing, merges metadata, persists the
// asset, and resets the context while preserving GameMode (spec §4.F).
func (s *Session) Stop(ctx context.Context, getResultFrame GetResultFrame) error {
	s.machine.Fire(EventStop)
	videoPath, subtitlePath, err := s.recorder.Stop(ctx)
	if err != nil {
		s.machine.Complete()
		return err
	}

	s.mu.Lock()
	current := s.ctx
	sessionID := s.currentSessionIDLocked()
	s.mu.Unlock()

	resultFrame := current.ResultFrame
	if resultFrame == nil && getResultFrame != nil {
		resultFrame = getResultFrame()
	}

	if !current.Metadata.Result.Present && resultFrame != nil && s.analyzer != nil {
		if result, ok := s.analyzer.ExtractSessionResult(*resultFrame, current.Metadata.GameMode); ok {
			autoUpdate := current.BaseMetadata.WithResult(result)
			current.Metadata = s.merger.Merge(current.BaseMetadata, autoUpdate, current.Metadata, current.ManualFields)
			current = current.ApplyPendingResultUpdates()
		}
	}

	var started time.Duration
	if current.BattleStartedAt != nil {
		started = time.Since(*current.BattleStartedAt)
	}

	asset, saveErr := s.saveAsset(ctx, videoPath, subtitlePath, current)
	s.machine.Complete()

	s.mu.Lock()
	mode := current.Metadata.GameMode
	s.ctx = NewContext(mode)
	s.pendingStop = false
	s.pendingCancel = false
	s.mu.Unlock()

	videoAssetID := ""
	if saveErr == nil {
		videoAssetID = asset.VideoPath
	}
	s.publish(events.NewRecordingStopped(sessionID, videoAssetID, started.Seconds()))
	return saveErr
}

func (s *Session) saveAsset(ctx context.Context, videoPath string, subtitlePath *string, current Context) (model.VideoAsset, error) {
	if s.saver == nil {
		return model.VideoAsset{VideoPath: videoPath, SubtitlePath: subtitlePath}, nil
	}
	return s.saver.SaveRecording(ctx, videoPath, subtitlePath, encodeThumbnail(current.ResultFrame), current.Metadata)
}

// encodeThumbnail PNG-encodes the result frame screenshot for AssetSaver's
// thumbnailPNG parameter, mirroring internal/weapon's frameToImage/png.Encode
// pattern. It returns nil when no result frame was captured or encoding
// fails, since a missing thumbnail is a degraded mode the repository and
// auto-editor already tolerate.
func encodeThumbnail(f *frame.Frame) []byte {
	if f == nil || f.Empty() {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b, g, r := f.At(x, y)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// ResetMetadata resets the context's metadata while keeping GameMode. It
// is run for ActionResetMetadata; the MATCHING schedule-change handler
// returns CANCEL with an already-reset context instead.
func (s *Session) ResetMetadata() {
	s.mu.Lock()
	mode := s.ctx.Metadata.GameMode
	s.ctx = NewContext(mode)
	s.mu.Unlock()
}

// ReconcileExternalStatus applies an externally observed recorder status.
// Per the resolved design (see design notes), an unanticipated external
// "stopped" — one that arrives while no STOP/CANCEL is already pending —
// is treated as a CANCEL so no partial asset is persisted; a "stopped"
// that arrives while a stop is already in flight is the normal completion
// path and requires no extra action here.
func (s *Session) ReconcileExternalStatus(ctx context.Context, status ExternalStatus) {
	s.mu.Lock()
	pending := s.pendingStop || s.pendingCancel
	s.mu.Unlock()

	if status == ExternalStopped && !pending {
		_ = s.Cancel(ctx)
		return
	}
	s.machine.Reconcile(status)
}

func (s *Session) onTransition(from, to RecordState, event RecordEvent) {
	s.mu.Lock()
	switch event {
	case EventStop:
		s.pendingStop = true
	}
	s.mu.Unlock()
}

func (s *Session) publish(ev bus.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ev)
	}
}

func (s *Session) currentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSessionIDLocked()
}

func (s *Session) currentSessionIDLocked() string {
	return s.sessionID
}

// newSessionID returns a sortable, collision-resistant session identifier,
// consistent with the bus event IDs generated by internal/bus.
func newSessionID() string {
	return ulid.Make().String()
}
