package model

import "time"

// WeaponSlots is the fixed length of the allies/enemies weapon-label arrays.
const WeaponSlots = 4

// Weapons is a fixed-size array of weapon labels for one team.
type Weapons = [WeaponSlots]string

// RecordingMetadata is the immutable per-session metadata aggregate.
// Every field is optional except GameMode, which defaults to BATTLE.
// Updates are expressed by constructing a new value (see the With* helpers)
// rather than mutation, matching dataclasses.replace() in the original.
type RecordingMetadata struct {
	GameMode  GameMode
	StartedAt *time.Time
	Rate      *Rate
	Judgement Judgement
	Result    Result
	Allies    *Weapons
	Enemies   *Weapons
}

// NewRecordingMetadata returns the zero-value metadata for a game mode,
// matching RecordingMetadata(game_mode=...) resets in the original.
func NewRecordingMetadata(mode GameMode) RecordingMetadata {
	if !mode.Valid() {
		mode = GameModeBattle
	}
	return RecordingMetadata{GameMode: mode}
}

// fieldNames enumerates every top-level metadata field name used by the
// manual-edit-tracking / merge machinery.
const (
	FieldGameMode  = "game_mode"
	FieldStartedAt = "started_at"
	FieldRate      = "rate"
	FieldJudgement = "judgement"
	FieldAllies    = "allies"
	FieldEnemies   = "enemies"
)

// BattleFields and SalmonFields name the Result sub-fields, used to decide
// whether a manual field name belongs to the result object.
var (
	BattleFields = map[string]bool{"match": true, "rule": true, "stage": true, "kill": true, "death": true, "special": true}
	SalmonFields = map[string]bool{"hazard": true, "stage": true, "golden_egg": true, "power_egg": true, "rescue": true, "rescued": true}
)

// ToDict serializes into a JSON-friendly map, matching
// RecordingMetadata.to_dict in the original (flattening the result fields
// into the top level).
func (m RecordingMetadata) ToDict() map[string]any {
	payload := map[string]any{
		"game_mode": string(m.GameMode),
	}
	if m.StartedAt != nil {
		payload["started_at"] = m.StartedAt.Format(time.RFC3339)
	} else {
		payload["started_at"] = nil
	}
	if m.Rate != nil {
		payload["rate"] = m.Rate.String()
	} else {
		payload["rate"] = nil
	}
	if m.Judgement != JudgementUnknown {
		payload["judgement"] = string(m.Judgement)
	} else {
		payload["judgement"] = nil
	}
	if m.Result.Present {
		for k, v := range m.Result.ToDict() {
			payload[k] = v
		}
	}
	if m.Allies != nil {
		payload["allies"] = *m.Allies
	}
	if m.Enemies != nil {
		payload["enemies"] = *m.Enemies
	}
	return payload
}

// WithGameMode returns a copy of m with GameMode replaced.
func (m RecordingMetadata) WithGameMode(v GameMode) RecordingMetadata { m.GameMode = v; return m }

// WithStartedAt returns a copy of m with StartedAt replaced.
func (m RecordingMetadata) WithStartedAt(v *time.Time) RecordingMetadata { m.StartedAt = v; return m }

// WithRate returns a copy of m with Rate replaced.
func (m RecordingMetadata) WithRate(v *Rate) RecordingMetadata { m.Rate = v; return m }

// WithJudgement returns a copy of m with Judgement replaced.
func (m RecordingMetadata) WithJudgement(v Judgement) RecordingMetadata { m.Judgement = v; return m }

// WithResult returns a copy of m with Result replaced.
func (m RecordingMetadata) WithResult(v Result) RecordingMetadata { m.Result = v; return m }

// WithAllies returns a copy of m with Allies replaced.
func (m RecordingMetadata) WithAllies(v Weapons) RecordingMetadata { m.Allies = &v; return m }

// WithEnemies returns a copy of m with Enemies replaced.
func (m RecordingMetadata) WithEnemies(v Weapons) RecordingMetadata { m.Enemies = &v; return m }

// WithAlliesPtr returns a copy of m with Allies replaced by a possibly-nil
// pointer, for callers merging optional values without allocating a zero
// Weapons when absent.
func (m RecordingMetadata) WithAlliesPtr(v *Weapons) RecordingMetadata { m.Allies = v; return m }

// WithEnemiesPtr returns a copy of m with Enemies replaced by a
// possibly-nil pointer.
func (m RecordingMetadata) WithEnemiesPtr(v *Weapons) RecordingMetadata { m.Enemies = v; return m }

// RatePtrEqual reports whether two possibly-nil Rate pointers are equal.
func RatePtrEqual(a, b *Rate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// TimePtrEqual reports whether two possibly-nil time pointers are equal.
func TimePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// WeaponsPtrEqual reports whether two possibly-nil Weapons pointers are
// equal.
func WeaponsPtrEqual(a, b *Weapons) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
