package model

import "time"

// SetupStep names one of the ordered bootstrap verification steps.
type SetupStep string

const (
	StepHardwareCheck SetupStep = "HARDWARE_CHECK"
	StepFFmpeg        SetupStep = "FFMPEG"
	StepOBS           SetupStep = "OBS"
	StepTesseract     SetupStep = "TESSERACT"
	StepFont          SetupStep = "FONT"
	StepYouTube       SetupStep = "YOUTUBE"
)

// SetupStepOrder is the fixed ordered step list.
var SetupStepOrder = []SetupStep{
	StepHardwareCheck, StepFFmpeg, StepOBS, StepTesseract, StepFont, StepYouTube,
}

// StepStatus is the per-step completion state.
type StepStatus string

const (
	StepCompleted StepStatus = "COMPLETED"
	StepSkipped   StepStatus = "SKIPPED"
	StepPending   StepStatus = "PENDING"
)

// StepState is the status of one setup step plus its named substeps.
type StepState struct {
	Step     SetupStep
	Status   StepStatus
	Substeps map[string]StepStatus
}

// SetupState is the overall, persisted multi-step setup progress.
type SetupState struct {
	Steps       map[SetupStep]StepState
	CompletedAt *time.Time
}

// NewSetupState returns a SetupState with every step PENDING.
func NewSetupState() SetupState {
	steps := make(map[SetupStep]StepState, len(SetupStepOrder))
	for _, s := range SetupStepOrder {
		steps[s] = StepState{Step: s, Status: StepPending, Substeps: map[string]StepStatus{}}
	}
	return SetupState{Steps: steps}
}

// IsComplete reports whether every step is COMPLETED or SKIPPED.
func (s SetupState) IsComplete() bool {
	for _, step := range SetupStepOrder {
		st, ok := s.Steps[step]
		if !ok || st.Status == StepPending {
			return false
		}
	}
	return true
}
