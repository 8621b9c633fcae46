package httpapi

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/setup"
)

type fakeSoftwareChecker struct{ result setup.SoftwareCheckResult }

func (f fakeSoftwareChecker) Check(context.Context) setup.SoftwareCheckResult { return f.result }

type fakeHardwareChecker struct{ report setup.HardwareReport }

func (f fakeHardwareChecker) Check(context.Context) (setup.HardwareReport, error) {
	return f.report, nil
}

func newTestSetupHandler(t *testing.T) *SetupHandler {
	t.Helper()
	repo, err := setup.Open(filepath.Join(t.TempDir(), "setup.db"), nil)
	require.NoError(t, err)

	ok := fakeSoftwareChecker{result: setup.SoftwareCheckResult{Installed: true}}
	software := map[model.SetupStep]setup.SoftwareChecker{
		model.StepFFmpeg:    ok,
		model.StepOBS:       ok,
		model.StepTesseract: ok,
		model.StepFont:      ok,
		model.StepYouTube:   ok,
	}
	svc, err := setup.NewService(repo, fakeHardwareChecker{report: setup.HardwareReport{Sufficient: true}}, software, nil)
	require.NoError(t, err)
	return NewSetupHandler(svc)
}

func TestSetupHandlerGetStatusReportsCurrentStep(t *testing.T) {
	h := newTestSetupHandler(t)

	out, err := h.GetStatus(context.Background(), &SetupStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, string(model.StepHardwareCheck), out.Body.CurrentStep)
	// GetStatus re-runs every checker; all of them pass here, so every step
	// is recorded COMPLETED even though the current step does not move.
	assert.True(t, out.Body.Completed)
	assert.Len(t, out.Body.Steps, len(model.SetupStepOrder))
}

func TestSetupHandlerProceedAdvancesStep(t *testing.T) {
	h := newTestSetupHandler(t)

	out, err := h.Proceed(context.Background(), &SetupStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, string(model.StepFFmpeg), out.Body.CurrentStep)
}

func TestSetupHandlerResetReturnsToFirstStep(t *testing.T) {
	h := newTestSetupHandler(t)
	_, err := h.Proceed(context.Background(), &SetupStatusInput{})
	require.NoError(t, err)

	out, err := h.Reset(context.Background(), &SetupStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, string(model.StepHardwareCheck), out.Body.CurrentStep)
}
