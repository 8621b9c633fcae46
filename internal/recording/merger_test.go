package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

func TestMergeAdoptsAutoUpdateWhenFieldUntouched(t *testing.T) {
	base := model.NewRecordingMetadata(model.GameModeBattle)
	auto := base.WithGameMode(model.GameModeSalmon)
	current := base // untouched since base

	merged := NewMetadataMerger().Merge(base, auto, current, map[string]bool{})
	assert.Equal(t, model.GameModeSalmon, merged.GameMode)
}

func TestMergeKeepsManualFieldEvenWhenAutoUpdateChanges(t *testing.T) {
	base := model.NewRecordingMetadata(model.GameModeBattle)
	auto := base.WithGameMode(model.GameModeSalmon)
	current := base.WithGameMode(model.GameModeBattle)

	merged := NewMetadataMerger().Merge(base, auto, current, map[string]bool{model.FieldGameMode: true})
	assert.Equal(t, model.GameModeBattle, merged.GameMode)
}

func TestMergeKeepsCurrentWhenItAlreadyDivergedFromBase(t *testing.T) {
	base := model.RecordingMetadata{}
	auto := base.WithGameMode(model.GameModeSalmon)
	current := base.WithGameMode(model.GameModeBattle) // diverged from base already, not flagged manual

	merged := NewMetadataMerger().Merge(base, auto, current, map[string]bool{})
	assert.Equal(t, model.GameModeBattle, merged.GameMode)
}

func TestMergeResultAdoptsVariantChangeWhenNoManualResultFields(t *testing.T) {
	base := model.RecordingMetadata{}
	auto := base.WithResult(model.BattleOf(model.BattleResult{Match: "REGULAR"}))
	current := base

	merged := NewMetadataMerger().Merge(base, auto, current, map[string]bool{})
	assert.True(t, merged.Result.Present)
	assert.Equal(t, model.Match("REGULAR"), merged.Result.Battle.Match)
}

func TestMergeResultKeepsCurrentWhenManualResultFieldSet(t *testing.T) {
	base := model.RecordingMetadata{}
	auto := base.WithResult(model.BattleOf(model.BattleResult{Match: "REGULAR"}))
	current := base.WithResult(model.BattleOf(model.BattleResult{Match: "BANKARA"}))

	merged := NewMetadataMerger().Merge(base, auto, current, map[string]bool{"match": true})
	assert.Equal(t, model.Match("BANKARA"), merged.Result.Battle.Match)
}
