package recording

import (
	"context"
	"log/slog"
	"time"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/frame"
)

const (
	powerOffSampleInterval       = 10 * time.Second
	powerOffConsecutiveThreshold = 6
	frameIdleBackoff             = 100 * time.Millisecond
)

// powerOffTracker implements the rolling 10-second power-off counter of
// spec §3 invariant 6: every sample at least powerOffSampleInterval apart
// either extends or resets a consecutive-positive streak, finalizing once
// the streak reaches powerOffConsecutiveThreshold.
type powerOffTracker struct {
	lastSample  time.Time
	consecutive int
}

func (t *powerOffTracker) observe(now time.Time, positive bool) (sampled bool, finalized bool) {
	if !t.lastSample.IsZero() && now.Sub(t.lastSample) < powerOffSampleInterval {
		return false, false
	}
	t.lastSample = now
	if positive {
		t.consecutive++
	} else {
		t.consecutive = 0
	}
	return true, t.consecutive >= powerOffConsecutiveThreshold
}

// FrameSource supplies the latest available capture frame, or ok=false
// when none has arrived yet (the use case backs off briefly and retries).
type FrameSource interface {
	GetLatest() (frame.Frame, bool)
}

// Capture is the hardware capture port's lifecycle, brought up once per
// auto-recording run (spec §4.F: "Setup/Teardown the capture device and
// recorder once per run").
type Capture interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
}

// AutoRecordingUseCase orchestrates a full auto-recording run: it owns the
// single Context copy phase handlers mutate, interprets the commands they
// return, and watches for power-off to end the loop (spec §4.E/§4.F).
type AutoRecordingUseCase struct {
	session  *Session
	handlers *PhaseHandlers
	analyzer Analyzer
	capture  Capture
	frames   FrameSource
	eventBus *bus.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

// NewAutoRecordingUseCase wires the use case to its collaborators.
func NewAutoRecordingUseCase(session *Session, handlers *PhaseHandlers, analyzer Analyzer, capture Capture, frames FrameSource, eventBus *bus.EventBus, logger *slog.Logger) *AutoRecordingUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoRecordingUseCase{
		session:  session,
		handlers: handlers,
		analyzer: analyzer,
		capture:  capture,
		frames:   frames,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one full auto-recording scenario until ctx is cancelled or
// power-off is detected, returning whether power-off ended the run.
func (u *AutoRecordingUseCase) Run(ctx context.Context) (poweredOff bool, err error) {
	if err := u.setup(ctx); err != nil {
		return false, err
	}
	defer u.teardown(ctx, &poweredOff)

	poweredOff = u.mainLoop(ctx)
	return poweredOff, nil
}

func (u *AutoRecordingUseCase) setup(ctx context.Context) error {
	if err := u.session.Setup(ctx); err != nil {
		return err
	}
	if u.capture != nil {
		return u.capture.Setup(ctx)
	}
	return nil
}

func (u *AutoRecordingUseCase) teardown(ctx context.Context, poweredOff *bool) {
	state := u.session.State()
	if state == StateRecording || state == StatePaused {
		_ = u.session.Cancel(ctx)
	}
	if u.capture != nil {
		_ = u.capture.Teardown(ctx)
	}
	_ = u.session.Teardown(ctx)

	if *poweredOff {
		u.publish(events.NewPowerOffDetected(powerOffConsecutiveThreshold, powerOffConsecutiveThreshold, true))
	}
}

func (u *AutoRecordingUseCase) mainLoop(ctx context.Context) bool {
	tracker := &powerOffTracker{}
	lastPhase := ""

	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		f, ok := u.frames.GetLatest()
		if !ok {
			time.Sleep(frameIdleBackoff)
			continue
		}

		if sampled, final := tracker.observe(u.now(), u.analyzer.DetectPowerOff(f)); sampled && final {
			u.logger.Info("power off detected, stopping recording")
			u.publish(events.NewPowerOffDetected(tracker.consecutive, powerOffConsecutiveThreshold, false))
			return true
		}

		state := u.session.State()
		recCtx := u.session.Context()

		if phase := recCtx.Phase(state); phase != lastPhase {
			u.logger.Info("recording phase changed", "from", lastPhase, "to", phase)
			lastPhase = phase
		}

		cmd := u.handlers.Handle(f, recCtx, state, time.Now())
		u.session.UpdateContext(cmd.UpdatedContext)
		u.executeCommand(ctx, cmd)
	}
}

func (u *AutoRecordingUseCase) executeCommand(ctx context.Context, cmd Command) {
	var err error
	switch cmd.Action {
	case ActionNone:
		return
	case ActionStart:
		err = u.session.Start(ctx)
	case ActionPause:
		err = u.session.Pause(ctx)
	case ActionResume:
		err = u.session.Resume(ctx)
	case ActionStop:
		err = u.session.Stop(ctx, func() *frame.Frame { return u.session.Context().ResultFrame })
	case ActionCancel:
		err = u.session.Cancel(ctx)
	case ActionResetMetadata:
		u.session.ResetMetadata()
	}
	if err != nil {
		u.logger.Error("recording command failed", "action", cmd.Action.String(), "reason", cmd.Reason, "error", err)
	}
}

func (u *AutoRecordingUseCase) publish(ev bus.Event) {
	if u.eventBus != nil {
		u.eventBus.Publish(ev)
	}
}
