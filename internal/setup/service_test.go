package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

type fakeSoftwareChecker struct{ result SoftwareCheckResult }

func (f fakeSoftwareChecker) Check(context.Context) SoftwareCheckResult { return f.result }

type fakeHardwareChecker struct{ report HardwareReport }

func (f fakeHardwareChecker) Check(context.Context) (HardwareReport, error) { return f.report, nil }

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.db")
	repo, err := Open(path, nil)
	require.NoError(t, err)
	return repo
}

func allPassingSoftware() map[model.SetupStep]SoftwareChecker {
	ok := fakeSoftwareChecker{result: SoftwareCheckResult{Installed: true}}
	return map[model.SetupStep]SoftwareChecker{
		model.StepFFmpeg:    ok,
		model.StepOBS:       ok,
		model.StepTesseract: ok,
		model.StepFont:      ok,
		model.StepYouTube:   ok,
	}
}

func TestNewServiceStartsAtFirstStep(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	assert.Equal(t, model.StepHardwareCheck, svc.CurrentStep())
	assert.False(t, svc.IsInstallationCompleted())
}

func TestProceedToNextStepAdvancesThroughAllSteps(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	for i := 0; i < len(model.SetupStepOrder)-1; i++ {
		state, err := svc.ProceedToNextStep()
		require.NoError(t, err)
		// Arriving at the final YouTube step completes it at once, so the
		// state is already complete after the last proceed of this loop.
		assert.Equal(t, i == len(model.SetupStepOrder)-2, state.IsComplete())
	}

	state, err := svc.ProceedToNextStep()
	require.NoError(t, err)
	assert.True(t, state.IsComplete())
	assert.True(t, svc.IsInstallationCompleted())
}

func TestSkipCurrentStepMarksSkippedAndAdvances(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	state, err := svc.SkipCurrentStep()
	require.NoError(t, err)
	assert.Equal(t, model.StepSkipped, state.Steps[model.StepHardwareCheck].Status)
	assert.Equal(t, model.StepFFmpeg, svc.CurrentStep())
}

func TestGoBackToPreviousStepRewinds(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	_, err = svc.ProceedToNextStep()
	require.NoError(t, err)
	assert.Equal(t, model.StepFFmpeg, svc.CurrentStep())

	back := svc.GoBackToPreviousStep()
	assert.Equal(t, model.StepHardwareCheck, back)
}

func TestResetInstallationClearsProgress(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	_, err = svc.ProceedToNextStep()
	require.NoError(t, err)

	state, err := svc.ResetInstallation()
	require.NoError(t, err)
	assert.Equal(t, model.StepPending, state.Steps[model.StepFFmpeg].Status)
	assert.Equal(t, model.StepHardwareCheck, svc.CurrentStep())
}

func TestCheckInstallationStatusDowngradesRegressedStep(t *testing.T) {
	repo := newTestRepository(t)
	software := allPassingSoftware()
	hardware := &mutableHardwareChecker{report: HardwareReport{Sufficient: true}}
	svc, err := NewService(repo, hardware, software, nil)
	require.NoError(t, err)

	state, err := svc.CheckInstallationStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StepCompleted, state.Steps[model.StepHardwareCheck].Status)

	hardware.report = HardwareReport{Sufficient: false, Warning: "insufficient memory"}
	state, err = svc.CheckInstallationStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StepPending, state.Steps[model.StepHardwareCheck].Status)
}

type mutableHardwareChecker struct{ report HardwareReport }

func (m *mutableHardwareChecker) Check(context.Context) (HardwareReport, error) { return m.report, nil }

func TestGetProgressPercentageAndRemainingSteps(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	assert.Equal(t, float64(0), svc.GetProgressPercentage())
	assert.Len(t, svc.GetRemainingSteps(), len(model.SetupStepOrder))

	_, err = svc.ProceedToNextStep()
	require.NoError(t, err)

	assert.Greater(t, svc.GetProgressPercentage(), float64(0))
	assert.Len(t, svc.GetRemainingSteps(), len(model.SetupStepOrder)-1)
}

func TestMarkSubstepCompletedDoesNotChangeParentStatus(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkSubstepCompleted(model.StepFont, "ikamodoki1"))

	state, err := svc.repo.Load()
	require.NoError(t, err)
	assert.Equal(t, model.StepCompleted, state.Steps[model.StepFont].Substeps["ikamodoki1"])
	assert.Equal(t, model.StepPending, state.Steps[model.StepFont].Status)
}

func TestPermissionDialogShownFlags(t *testing.T) {
	repo := newTestRepository(t)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)

	assert.False(t, svc.IsCameraPermissionDialogShown())
	svc.MarkCameraPermissionDialogShown()
	assert.True(t, svc.IsCameraPermissionDialogShown())

	assert.False(t, svc.IsYouTubePermissionDialogShown())
	svc.MarkYouTubePermissionDialogShown()
	assert.True(t, svc.IsYouTubePermissionDialogShown())
}

func TestStatePersistsAcrossServiceReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup.db")

	repo, err := Open(path, nil)
	require.NoError(t, err)
	svc, err := NewService(repo, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)
	_, err = svc.ProceedToNextStep()
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	repo2, err := Open(path, nil)
	require.NoError(t, err)
	svc2, err := NewService(repo2, fakeHardwareChecker{report: HardwareReport{Sufficient: true}}, allPassingSoftware(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.StepFFmpeg, svc2.CurrentStep())
}
