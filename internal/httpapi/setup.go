package httpapi

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/setup"
)

// SetupHandler exposes the ordered bootstrap verification flow
// (setup.Service) to an operator-facing setup wizard.
type SetupHandler struct {
	service *setup.Service
}

// NewSetupHandler wraps service.
func NewSetupHandler(service *setup.Service) *SetupHandler {
	return &SetupHandler{service: service}
}

// Register wires every /setup/* operation into api.
func (h *SetupHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getSetupStatus", Method: "GET", Path: "/setup/status",
		Summary: "Setup status", Tags: []string{"Setup"},
	}, h.GetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "startSetup", Method: "POST", Path: "/setup/start",
		Summary: "Restart the setup flow from the first step", Tags: []string{"Setup"},
	}, h.Start)

	huma.Register(api, huma.Operation{
		OperationID: "proceedSetup", Method: "POST", Path: "/setup/proceed",
		Summary: "Complete the current step and advance", Tags: []string{"Setup"},
	}, h.Proceed)

	huma.Register(api, huma.Operation{
		OperationID: "skipSetupStep", Method: "POST", Path: "/setup/skip",
		Summary: "Skip the current step and advance", Tags: []string{"Setup"},
	}, h.Skip)

	huma.Register(api, huma.Operation{
		OperationID: "goBackSetupStep", Method: "POST", Path: "/setup/back",
		Summary: "Rewind to the previous step", Tags: []string{"Setup"},
	}, h.Back)

	huma.Register(api, huma.Operation{
		OperationID: "resetSetup", Method: "POST", Path: "/setup/reset",
		Summary: "Clear all progress and start over", Tags: []string{"Setup"},
	}, h.Reset)
}

// SetupStatusInput is the (empty) input shared by every no-body setup
// operation.
type SetupStatusInput struct{}

// SetupStatusOutput wraps SetupStatusResponse as every setup operation's
// body, so the wizard can re-render from any action's response.
type SetupStatusOutput struct {
	Body SetupStatusResponse
}

// StepStateResponse is one step's wire representation.
type StepStateResponse struct {
	Step     string            `json:"step"`
	Status   string            `json:"status"`
	Substeps map[string]string `json:"substeps,omitempty"`
}

// SetupStatusResponse is the full setup wizard state.
type SetupStatusResponse struct {
	CurrentStep        string              `json:"current_step"`
	ProgressPercentage float64             `json:"progress_percentage"`
	Completed          bool                `json:"completed"`
	Steps              []StepStateResponse `json:"steps"`
}

func setupStatusFrom(state model.SetupState, current model.SetupStep, progress float64) SetupStatusResponse {
	steps := make([]StepStateResponse, 0, len(model.SetupStepOrder))
	for _, step := range model.SetupStepOrder {
		st := state.Steps[step]
		substeps := make(map[string]string, len(st.Substeps))
		for name, status := range st.Substeps {
			substeps[name] = string(status)
		}
		steps = append(steps, StepStateResponse{Step: string(step), Status: string(st.Status), Substeps: substeps})
	}
	return SetupStatusResponse{
		CurrentStep:        string(current),
		ProgressPercentage: progress,
		Completed:          state.IsComplete(),
		Steps:              steps,
	}
}

// GetStatus re-runs every step's checker and reports the resulting state.
func (h *SetupHandler) GetStatus(ctx context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	state, err := h.service.CheckInstallationStatus(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, h.service.CurrentStep(), h.service.GetProgressPercentage())}, nil
}

// Start resets progress and begins at the first step.
func (h *SetupHandler) Start(_ context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	state, err := h.service.StartInstallation()
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, h.service.CurrentStep(), h.service.GetProgressPercentage())}, nil
}

// Proceed completes the current step (auto-completing it first) and
// advances to the next.
func (h *SetupHandler) Proceed(_ context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	state, err := h.service.ProceedToNextStep()
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, h.service.CurrentStep(), h.service.GetProgressPercentage())}, nil
}

// Skip marks the current step SKIPPED and advances.
func (h *SetupHandler) Skip(_ context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	state, err := h.service.SkipCurrentStep()
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, h.service.CurrentStep(), h.service.GetProgressPercentage())}, nil
}

// Back rewinds to the previous step.
func (h *SetupHandler) Back(ctx context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	current := h.service.GoBackToPreviousStep()
	state, err := h.service.CheckInstallationStatus(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, current, h.service.GetProgressPercentage())}, nil
}

// Reset clears all progress back to a fresh wizard run.
func (h *SetupHandler) Reset(_ context.Context, _ *SetupStatusInput) (*SetupStatusOutput, error) {
	state, err := h.service.ResetInstallation()
	if err != nil {
		return nil, mapError(err)
	}
	return &SetupStatusOutput{Body: setupStatusFrom(state, h.service.CurrentStep(), h.service.GetProgressPercentage())}, nil
}
