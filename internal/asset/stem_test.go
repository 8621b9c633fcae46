package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

func TestGenerateStemWithoutResult(t *testing.T) {
	started := time.Date(2026, 7, 29, 21, 30, 15, 0, time.UTC)
	md := model.NewRecordingMetadata(model.GameModeBattle).WithStartedAt(&started)

	stem, err := GenerateStem(md)
	require.NoError(t, err)
	assert.Equal(t, "20260729_213015", stem)
}

func TestGenerateStemWithBattleResult(t *testing.T) {
	started := time.Date(2026, 7, 29, 21, 30, 15, 0, time.UTC)
	md := model.NewRecordingMetadata(model.GameModeBattle).
		WithStartedAt(&started).
		WithJudgement(model.JudgementWin).
		WithResult(model.BattleOf(model.BattleResult{
			Match: "REGULAR", Rule: "AREA", Stage: "Scorch Gorge",
		}))

	stem, err := GenerateStem(md)
	require.NoError(t, err)
	assert.Equal(t, "20260729_213015_REGULAR_AREA_WIN_Scorch%20Gorge", stem)
}

func TestGenerateStemRequiresStartedAt(t *testing.T) {
	md := model.NewRecordingMetadata(model.GameModeBattle)
	_, err := GenerateStem(md)
	require.Error(t, err)
}

func TestSanitizeComponentPreservesASCII(t *testing.T) {
	assert.Equal(t, "AREA", sanitizeComponent("AREA"))
}
