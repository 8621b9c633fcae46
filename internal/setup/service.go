package setup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

// RecheckSchedule is how often Service re-runs its software/hardware
// checks in the background, so a dependency that disappears after setup
// completed (ffmpeg uninstalled, too little free memory) surfaces again
// without the operator re-running setup by hand.
const RecheckSchedule = "@every 30m"

// Service drives the ordered bootstrap verification flow: checking each
// step, advancing/skipping/rewinding between them, and persisting progress
// so a restart resumes where setup left off.
type Service struct {
	repo     *Repository
	hardware HardwareChecker
	software map[model.SetupStep]SoftwareChecker
	logger   *slog.Logger

	cron *cron.Cron

	mu                     sync.Mutex
	state                  model.SetupState
	current                model.SetupStep
	cameraPermissionShown  bool
	youtubePermissionShown bool
}

// NewService loads persisted state (or initializes fresh state) and
// returns a ready Service. software maps each non-hardware step to the
// checker that verifies it; steps with no entry are treated as
// always-satisfied.
func NewService(repo *Repository, hardware HardwareChecker, software map[model.SetupStep]SoftwareChecker, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	state, err := repo.Load()
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:     repo,
		hardware: hardware,
		software: software,
		logger:   logger,
		state:    state,
		current:  firstIncompleteStep(state),
	}
	return s, nil
}

func firstIncompleteStep(state model.SetupState) model.SetupStep {
	for _, step := range model.SetupStepOrder {
		if st, ok := state.Steps[step]; ok && st.Status == model.StepPending {
			return step
		}
	}
	return model.SetupStepOrder[len(model.SetupStepOrder)-1]
}

// StartRecheck schedules the periodic background recheck. schedule is a
// robfig/cron expression; an empty string falls back to RecheckSchedule
// (internal/config's setup.recheck_schedule feeds this from
// splat-replay.toml). Call once; Stop cancels it.
func (s *Service) StartRecheck(ctx context.Context, schedule string) {
	if schedule == "" {
		schedule = RecheckSchedule
	}
	s.cron = cron.New()
	_, _ = s.cron.AddFunc(schedule, func() {
		if _, err := s.CheckInstallationStatus(ctx); err != nil {
			s.logger.Warn("定期的なセットアップ再確認に失敗しました", "error", err)
		}
	})
	s.cron.Start()
}

// Stop halts the periodic recheck, if running.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// CheckInstallationStatus runs every step's checker and records the
// results, without advancing which step is "current". It does not
// downgrade a step a user explicitly marked SKIPPED.
func (s *Service) CheckInstallationStatus(ctx context.Context) (model.SetupState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range model.SetupStepOrder {
		st := s.state.Steps[step]
		if st.Status == model.StepSkipped {
			continue
		}

		ok, message := s.runCheck(ctx, step)
		if ok {
			st.Status = model.StepCompleted
		} else if st.Status == model.StepCompleted {
			// A previously-completed step regressed; fall back to pending so
			// it surfaces again instead of silently staying green.
			st.Status = model.StepPending
		}
		if st.Substeps == nil {
			st.Substeps = map[string]model.StepStatus{}
		}
		if message != "" {
			st.Substeps["last_check"] = model.StepStatus(message)
		}
		s.state.Steps[step] = st
	}

	if s.state.IsComplete() {
		s.markCompletedAtLocked()
	}

	if err := s.repo.Save(s.state); err != nil {
		return model.SetupState{}, err
	}
	return s.state, nil
}

func (s *Service) runCheck(ctx context.Context, step model.SetupStep) (bool, string) {
	if step == model.StepHardwareCheck {
		if s.hardware == nil {
			return true, ""
		}
		report, err := s.hardware.Check(ctx)
		if err != nil {
			return false, err.Error()
		}
		return report.Sufficient, report.Warning
	}

	checker, ok := s.software[step]
	if !ok {
		// No checker registered for this step: treat as satisfied by
		// default rather than permanently blocking progress on a step this
		// build doesn't know how to probe.
		return true, ""
	}
	result := checker.Check(ctx)
	return result.Installed, result.ErrorMessage
}

// StartInstallation resets progress and begins at the first step.
func (s *Service) StartInstallation() (model.SetupState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.NewSetupState()
	s.current = model.SetupStepOrder[0]
	return s.state, s.repo.Save(s.state)
}

// CurrentStep returns the step the operator is currently working through.
func (s *Service) CurrentStep() model.SetupStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ProceedToNextStep advances past the current step, auto-completing it
// first if it isn't already COMPLETED or SKIPPED. When current is already
// the last step, it is instead marked complete in place (there being
// nowhere further to advance to) — matching the original's last-step
// auto-complete special case.
func (s *Service) ProceedToNextStep() (model.SetupState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markCompletedLocked(s.current)

	idx := stepIndex(s.current)
	if idx < 0 || idx == len(model.SetupStepOrder)-1 {
		if s.state.IsComplete() {
			s.markCompletedAtLocked()
		}
		return s.state, s.repo.Save(s.state)
	}

	s.current = model.SetupStepOrder[idx+1]

	// The YouTube step is satisfied the moment OAuth credentials exist
	// (checked by its registered checker, if any); if that checker already
	// reports success, skip straight past it rather than making the
	// operator click through a step with nothing left to do.
	if s.current == model.StepYouTube {
		if checker, ok := s.software[model.StepYouTube]; ok {
			if checker.Check(context.Background()).Installed {
				s.markCompletedLocked(s.current)
			}
		}
	}

	if s.state.IsComplete() {
		s.markCompletedAtLocked()
	}
	return s.state, s.repo.Save(s.state)
}

// GoBackToPreviousStep rewinds current to the prior step, if any.
func (s *Service) GoBackToPreviousStep() model.SetupStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := stepIndex(s.current)
	if idx > 0 {
		s.current = model.SetupStepOrder[idx-1]
	}
	return s.current
}

// SkipCurrentStep marks current SKIPPED and advances.
func (s *Service) SkipCurrentStep() (model.SetupState, error) {
	s.mu.Lock()
	step := s.current
	st := s.state.Steps[step]
	st.Status = model.StepSkipped
	s.state.Steps[step] = st
	s.mu.Unlock()

	return s.ProceedToNextStep()
}

// MarkStepCompleted marks an arbitrary step COMPLETED, independent of
// which step is current (used when an external event, like a finished
// OAuth flow, resolves a step out of band).
func (s *Service) MarkStepCompleted(step model.SetupStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCompletedLocked(step)
	if s.state.IsComplete() {
		s.markCompletedAtLocked()
	}
	return s.repo.Save(s.state)
}

// MarkSubstepCompleted records a named substep's completion (e.g. one of
// several font files installed) without changing the parent step's status.
func (s *Service) MarkSubstepCompleted(step model.SetupStep, substep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Steps[step]
	if st.Substeps == nil {
		st.Substeps = map[string]model.StepStatus{}
	}
	st.Substeps[substep] = model.StepCompleted
	s.state.Steps[step] = st
	return s.repo.Save(s.state)
}

func (s *Service) markCompletedLocked(step model.SetupStep) {
	st := s.state.Steps[step]
	if st.Status == model.StepSkipped {
		return
	}
	st.Status = model.StepCompleted
	s.state.Steps[step] = st
}

func (s *Service) markCompletedAtLocked() {
	if s.state.CompletedAt != nil {
		return
	}
	now := time.Now()
	s.state.CompletedAt = &now
}

// IsInstallationCompleted reports whether every step is COMPLETED or
// SKIPPED.
func (s *Service) IsInstallationCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsComplete()
}

// GetProgressPercentage reports completion progress as 0-100.
func (s *Service) GetProgressPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(model.SetupStepOrder)
	if total == 0 {
		return 100
	}
	done := 0
	for _, step := range model.SetupStepOrder {
		if st, ok := s.state.Steps[step]; ok && st.Status != model.StepPending {
			done++
		}
	}
	return float64(done) / float64(total) * 100
}

// GetRemainingSteps returns the steps not yet COMPLETED or SKIPPED, in
// order.
func (s *Service) GetRemainingSteps() []model.SetupStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	var remaining []model.SetupStep
	for _, step := range model.SetupStepOrder {
		if st, ok := s.state.Steps[step]; !ok || st.Status == model.StepPending {
			remaining = append(remaining, step)
		}
	}
	return remaining
}

// ResetInstallation clears all progress back to a fresh SetupState.
func (s *Service) ResetInstallation() (model.SetupState, error) {
	return s.StartInstallation()
}

// MarkCameraPermissionDialogShown records that the OS camera-permission
// prompt has been shown once, so the UI doesn't re-trigger it every time
// the hardware step runs. Not persisted across restarts: the OS itself
// remembers the grant/deny decision, this flag only suppresses a redundant
// prompt within a single run.
func (s *Service) MarkCameraPermissionDialogShown() {
	s.mu.Lock()
	s.cameraPermissionShown = true
	s.mu.Unlock()
}

// IsCameraPermissionDialogShown reports whether the dialog has already
// been shown this run.
func (s *Service) IsCameraPermissionDialogShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraPermissionShown
}

// MarkYouTubePermissionDialogShown mirrors MarkCameraPermissionDialogShown
// for the YouTube OAuth consent screen.
func (s *Service) MarkYouTubePermissionDialogShown() {
	s.mu.Lock()
	s.youtubePermissionShown = true
	s.mu.Unlock()
}

// IsYouTubePermissionDialogShown reports whether the consent screen has
// already been shown this run.
func (s *Service) IsYouTubePermissionDialogShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.youtubePermissionShown
}

func stepIndex(step model.SetupStep) int {
	for i, s := range model.SetupStepOrder {
		if s == step {
			return i
		}
	}
	return -1
}
