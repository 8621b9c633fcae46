package recording

import (
	"time"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// recordingCap is the hard ceiling on a single battle recording (spec §4.E).
const recordingCap = 10 * time.Minute

// earlyAbortWindow is how long after battle start a detected abort is
// treated as CANCEL rather than ignored (spec §4.E / E2E-2).
const earlyAbortWindow = 60 * time.Second

// PhaseHandler resolves one frame, in one state, to a Command.
type PhaseHandler func(f frame.Frame, ctx Context, now time.Time) Command

// PhaseHandlers dispatches to the per-RecordState policy of spec §4.E.
type PhaseHandlers struct {
	analyzer      Analyzer
	weaponService *WeaponDetectionService
}

// NewPhaseHandlers constructs the registry bound to its Analyzer and
// weapon detection service collaborators.
func NewPhaseHandlers(analyzer Analyzer, weapons *WeaponDetectionService) *PhaseHandlers {
	return &PhaseHandlers{analyzer: analyzer, weaponService: weapons}
}

// Handle dispatches (frame, context, state) to the matching per-state
// policy, returning NONE for FINISHING/STOPPING (internal completion only).
func (h *PhaseHandlers) Handle(f frame.Frame, ctx Context, state RecordState, now time.Time) Command {
	switch state {
	case StateStopped:
		return h.handleStopped(f, ctx, now)
	case StateMatching:
		return h.handleMatching(f, ctx)
	case StateRecording:
		return h.handleRecording(f, ctx, now)
	case StatePaused:
		return h.handlePaused(f, ctx)
	default: // FINISHING, STOPPING
		return none(ctx)
	}
}

func (h *PhaseHandlers) handleStopped(f frame.Frame, ctx Context, now time.Time) Command {
	if mode, ok := h.analyzer.ExtractGameMode(f); ok {
		ctx.Metadata = ctx.Metadata.WithGameMode(mode)
		ctx.BaseMetadata = ctx.BaseMetadata.WithGameMode(mode)
	}
	if rate, ok := h.analyzer.ExtractRate(f); ok {
		r := rate
		ctx.Metadata = ctx.Metadata.WithRate(&r)
		ctx.BaseMetadata = ctx.BaseMetadata.WithRate(&r)
	}

	if h.analyzer.DetectMatchingStart(f) {
		return Command{Action: ActionStart, UpdatedContext: ctx, Reason: "matching_started"}
	}
	return none(ctx)
}

func (h *PhaseHandlers) handleMatching(f frame.Frame, ctx Context) Command {
	if h.analyzer.DetectScheduleChange(f) {
		reset := NewContext(ctx.Metadata.GameMode)
		return Command{Action: ActionCancel, UpdatedContext: reset, Reason: "schedule_changed"}
	}
	if h.analyzer.DetectSessionStart(f, ctx.Metadata.GameMode) {
		now := time.Now()
		ctx.BattleStartedAt = &now
		return Command{Action: ActionStart, UpdatedContext: ctx, Reason: "session_started"}
	}
	return none(ctx)
}

func (h *PhaseHandlers) handleRecording(f frame.Frame, ctx Context, now time.Time) Command {
	var elapsed time.Duration
	if ctx.BattleStartedAt != nil {
		elapsed = now.Sub(*ctx.BattleStartedAt)
	}

	if elapsed <= earlyAbortWindow && h.analyzer.DetectSessionAbort(f) {
		return Command{Action: ActionCancel, UpdatedContext: ctx, Reason: "session_aborted"}
	}
	if elapsed >= recordingCap {
		return Command{Action: ActionStop, UpdatedContext: ctx, Reason: "recording_cap_reached"}
	}
	if h.analyzer.DetectSessionFinish(f) {
		ctx.FinishDetected = true
		return Command{Action: ActionPause, UpdatedContext: ctx, Reason: "session_finished"}
	}
	if h.analyzer.DetectCommunicationError(f) {
		return Command{Action: ActionCancel, UpdatedContext: ctx, Reason: "communication_error"}
	}

	if h.weaponService != nil {
		ctx = h.weaponService.Observe(f, ctx, elapsed)
	}
	return none(ctx)
}

func (h *PhaseHandlers) handlePaused(f frame.Frame, ctx Context) Command {
	if ctx.FinishDetected && h.analyzer.DetectSessionJudgement(f) {
		if judgement, ok := h.analyzer.ExtractSessionJudgement(f); ok {
			ctx.Metadata = ctx.Metadata.WithJudgement(judgement)
		}
		return none(ctx)
	}

	if h.analyzer.DetectSessionResult(f) {
		resultFrame := f.Clone()
		ctx.ResultFrame = &resultFrame
		return Command{Action: ActionStop, UpdatedContext: ctx, Reason: "session_result_visible"}
	}

	if h.analyzer.DetectLoadingEnd(f) {
		if ctx.Metadata.Result.Present {
			return Command{Action: ActionStop, UpdatedContext: ctx, Reason: "loading_end_result_known"}
		}
		return Command{Action: ActionResume, UpdatedContext: ctx, Reason: "loading_end_no_result"}
	}

	return none(ctx)
}
