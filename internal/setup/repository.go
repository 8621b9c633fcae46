package setup

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// stateRow is the single-row table backing the persisted setup state. The
// whole SetupState is kept as one JSON blob rather than normalized across
// step/substep tables: the state only ever has one reader (this process)
// and one writer, and the original persists the same structure as a single
// JSON document.
type stateRow struct {
	ID        uint `gorm:"primaryKey"`
	StateJSON string
	UpdatedAt time.Time
}

func (stateRow) TableName() string { return "setup_state" }

// Repository persists SetupState across restarts.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to (and migrates) the setup-state SQLite database at path,
// following the teacher's gorm.Open/AutoMigrate wiring but with the
// connection-pool tuning dropped: this table sees one row and no
// concurrent writers, so the teacher's multi-connection SQLite pool would
// be tuning for contention that cannot occur here.
func Open(path string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "セットアップ状態データベースを開けませんでした", err)
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "セットアップ状態テーブルのマイグレーションに失敗しました", err)
	}
	return &Repository{db: db, logger: logger}, nil
}

// Load returns the persisted SetupState, or a freshly-initialized one if
// none has been saved yet.
func (r *Repository) Load() (model.SetupState, error) {
	var row stateRow
	err := r.db.Order("id desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewSetupState(), nil
	}
	if err != nil {
		return model.SetupState{}, apperr.Wrap(apperr.KindInternal, "セットアップ状態の読み込みに失敗しました", err)
	}

	var persisted persistedState
	if err := json.Unmarshal([]byte(row.StateJSON), &persisted); err != nil {
		return model.SetupState{}, apperr.Wrap(apperr.KindInternal, "セットアップ状態の解析に失敗しました", err)
	}
	return persisted.toModel(), nil
}

// Save persists state, overwriting whatever was previously saved.
func (r *Repository) Save(state model.SetupState) error {
	encoded, err := json.Marshal(fromModel(state))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "セットアップ状態のシリアライズに失敗しました", err)
	}

	row := stateRow{ID: 1, StateJSON: string(encoded), UpdatedAt: time.Now()}
	return r.db.Save(&row).Error
}

// persistedState is the JSON-friendly mirror of model.SetupState: Go's
// encoding/json can't marshal a map keyed by a custom string type back
// through the same type parameters cleanly alongside a *time.Time zero
// value, so steps are flattened to a slice.
type persistedState struct {
	Steps       []persistedStep `json:"steps"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

type persistedStep struct {
	Step     model.SetupStep             `json:"step"`
	Status   model.StepStatus            `json:"status"`
	Substeps map[string]model.StepStatus `json:"substeps,omitempty"`
}

func fromModel(state model.SetupState) persistedState {
	out := persistedState{CompletedAt: state.CompletedAt}
	for _, step := range model.SetupStepOrder {
		st, ok := state.Steps[step]
		if !ok {
			continue
		}
		out.Steps = append(out.Steps, persistedStep{Step: st.Step, Status: st.Status, Substeps: st.Substeps})
	}
	return out
}

func (p persistedState) toModel() model.SetupState {
	state := model.NewSetupState()
	state.CompletedAt = p.CompletedAt
	for _, st := range p.Steps {
		substeps := st.Substeps
		if substeps == nil {
			substeps = map[string]model.StepStatus{}
		}
		state.Steps[st.Step] = model.StepState{Step: st.Step, Status: st.Status, Substeps: substeps}
	}
	return state
}
