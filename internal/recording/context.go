package recording

import (
	"strconv"
	"time"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// Context is the single-owner mutable recording context threaded through
// the auto-recording use case. It is never shared by reference across
// goroutines: the use case owns it and replaces it wholesale after every
// phase-handler call (see Command.UpdatedContext).
type Context struct {
	Metadata model.RecordingMetadata

	// ManualFields names the top-level/result-subfield names the user has
	// directly edited, per the three-way merge rule (spec §4.D).
	ManualFields map[string]bool

	// PendingResultUpdates buffers manual result-subfield edits received
	// before a result has been recognized; applied once one appears.
	PendingResultUpdates map[string]string

	// BaseMetadata is the merge-window snapshot: metadata as of the last
	// automatic update, used as the "base" operand of the three-way merge.
	BaseMetadata model.RecordingMetadata

	BattleStartedAt *time.Time
	ResultFrame     *frame.Frame
	FinishDetected  bool

	// Weapon detection bookkeeping (spec §4.G).
	WeaponDetectionDone    bool
	WeaponDetectionAttempt int
	AllySlotsBest          [model.WeaponSlots]weaponSlotBest
	EnemySlotsBest         [model.WeaponSlots]weaponSlotBest
	LastHUDFrame           *frame.Frame
}

type weaponSlotBest struct {
	Label string
	Score float64
}

// NewContext returns a freshly reset Context for the given game mode,
// matching RecordingContext(game_mode=...) resets in the original.
func NewContext(mode model.GameMode) Context {
	md := model.NewRecordingMetadata(mode)
	return Context{
		Metadata:             md,
		ManualFields:         map[string]bool{},
		PendingResultUpdates: map[string]string{},
		BaseMetadata:         md,
	}
}

// Phase maps a RecordState to the coarser session phase a UI cares about.
// FINISHING and STOPPING both surface as "finishing" since neither runs
// phase-handler logic (spec §4.E).
func (c Context) Phase(state RecordState) string {
	switch state {
	case StateStopped:
		return "stopped"
	case StateMatching:
		return "matching"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateFinishing, StateStopping:
		return "finishing"
	default:
		return "unknown"
	}
}

// WithManualUpdate returns a copy of c with field recorded into
// ManualFields. It does not write value into Metadata; value is kept only
// for result sub-fields received before a result exists, which are
// buffered with their value in PendingResultUpdates instead of being
// marked manual.
func (c Context) WithManualUpdate(field, value string) Context {
	if (model.BattleFields[field] || model.SalmonFields[field]) && !c.Metadata.Result.Present {
		pending := cloneStringMap(c.PendingResultUpdates)
		pending[field] = value
		c.PendingResultUpdates = pending
		return c
	}
	manual := cloneBoolSet(c.ManualFields)
	manual[field] = true
	c.ManualFields = manual
	return c
}

// ApplyPendingResultUpdates moves any buffered manual result-subfield
// edits onto the now-present result and marks them manual, per spec §4.D.
func (c Context) ApplyPendingResultUpdates() Context {
	if len(c.PendingResultUpdates) == 0 || !c.Metadata.Result.Present {
		return c
	}
	manual := cloneBoolSet(c.ManualFields)
	result := c.Metadata.Result

	if result.Battle != nil {
		b := *result.Battle
		applyPendingBattle(&b, c.PendingResultUpdates, manual)
		result = model.BattleOf(b)
	} else if result.Salmon != nil {
		s := *result.Salmon
		applyPendingSalmon(&s, c.PendingResultUpdates, manual)
		result = model.SalmonOf(s)
	}

	c.Metadata = c.Metadata.WithResult(result)
	c.ManualFields = manual
	c.PendingResultUpdates = map[string]string{}
	return c
}

func applyPendingBattle(b *model.BattleResult, pending map[string]string, manual map[string]bool) {
	for field, value := range pending {
		if !model.BattleFields[field] {
			continue
		}
		manual[field] = true
		switch field {
		case "match":
			b.Match = model.Match(value)
		case "rule":
			b.Rule = model.Rule(value)
		case "stage":
			b.Stage = model.Stage(value)
		case "kill":
			b.Kill = atoiOrZero(value)
		case "death":
			b.Death = atoiOrZero(value)
		case "special":
			b.Special = atoiOrZero(value)
		}
	}
}

func applyPendingSalmon(s *model.SalmonResult, pending map[string]string, manual map[string]bool) {
	for field, value := range pending {
		if !model.SalmonFields[field] {
			continue
		}
		manual[field] = true
		switch field {
		case "hazard":
			s.Hazard = atoiOrZero(value)
		case "stage":
			s.Stage = model.Stage(value)
		case "golden_egg":
			s.GoldenEgg = atoiOrZero(value)
		case "power_egg":
			s.PowerEgg = atoiOrZero(value)
		case "rescue":
			s.Rescue = atoiOrZero(value)
		case "rescued":
			s.Rescued = atoiOrZero(value)
		}
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func cloneBoolSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
