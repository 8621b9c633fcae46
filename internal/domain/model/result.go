package model

import (
	"strconv"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// Match, Rule, and Stage are symbolic enumerations drawn from fixed sets.
// The exact member lists are game-data and are intentionally left open
// (validated only for non-emptiness here); the analyzer's OCR mapping
// tables own the authoritative enumeration.
type Match string
type Rule string
type Stage string

// BattleResult carries the outcome fields of a Turf War / ranked battle.
// All fields are immutable; use With* helpers (via struct copy) to update.
type BattleResult struct {
	Match   Match
	Rule    Rule
	Stage   Stage
	Kill    int
	Death   int
	Special int
}

// ToDict serializes a BattleResult the way the Python original does.
func (b BattleResult) ToDict() map[string]string {
	return map[string]string{
		"match":   string(b.Match),
		"rule":    string(b.Rule),
		"stage":   string(b.Stage),
		"kill":    strconv.Itoa(b.Kill),
		"death":   strconv.Itoa(b.Death),
		"special": strconv.Itoa(b.Special),
	}
}

// BattleResultRequiredFields are the keys has_required_fields checks before
// a Result object can be synthesized from a manual-update payload.
var BattleResultRequiredFields = []string{"match", "rule", "stage", "kill", "death", "special"}

// BattleResultFromDict parses a BattleResult out of a generic string map.
func BattleResultFromDict(data map[string]string) (BattleResult, error) {
	kill, err := strconv.Atoi(data["kill"])
	if err != nil {
		return BattleResult{}, apperr.Validation("kill", "kill must be an integer")
	}
	death, err := strconv.Atoi(data["death"])
	if err != nil {
		return BattleResult{}, apperr.Validation("death", "death must be an integer")
	}
	special, err := strconv.Atoi(data["special"])
	if err != nil {
		return BattleResult{}, apperr.Validation("special", "special must be an integer")
	}
	return BattleResult{
		Match:   Match(data["match"]),
		Rule:    Rule(data["rule"]),
		Stage:   Stage(data["stage"]),
		Kill:    kill,
		Death:   death,
		Special: special,
	}, nil
}

// SalmonResult carries the outcome fields of a Salmon Run shift.
type SalmonResult struct {
	Hazard    int
	Stage     Stage
	GoldenEgg int
	PowerEgg  int
	Rescue    int
	Rescued   int
}

// ToDict serializes a SalmonResult the way the Python original does.
func (s SalmonResult) ToDict() map[string]string {
	return map[string]string{
		"hazard":     strconv.Itoa(s.Hazard),
		"stage":      string(s.Stage),
		"golden_egg": strconv.Itoa(s.GoldenEgg),
		"power_egg":  strconv.Itoa(s.PowerEgg),
		"rescue":     strconv.Itoa(s.Rescue),
		"rescued":    strconv.Itoa(s.Rescued),
	}
}

// SalmonResultRequiredFields mirrors SALMON_RESULT_REQUIRED_FIELDS.
var SalmonResultRequiredFields = []string{"hazard", "stage", "golden_egg", "power_egg", "rescue", "rescued"}

// SalmonResultFromDict parses a SalmonResult out of a generic string map.
func SalmonResultFromDict(data map[string]string) (SalmonResult, error) {
	hazard, err := strconv.Atoi(data["hazard"])
	if err != nil {
		return SalmonResult{}, apperr.Validation("hazard", "hazard must be an integer")
	}
	golden, err := strconv.Atoi(data["golden_egg"])
	if err != nil {
		return SalmonResult{}, apperr.Validation("golden_egg", "golden_egg must be an integer")
	}
	power, err := strconv.Atoi(data["power_egg"])
	if err != nil {
		return SalmonResult{}, apperr.Validation("power_egg", "power_egg must be an integer")
	}
	rescue, err := strconv.Atoi(data["rescue"])
	if err != nil {
		return SalmonResult{}, apperr.Validation("rescue", "rescue must be an integer")
	}
	rescued, err := strconv.Atoi(data["rescued"])
	if err != nil {
		return SalmonResult{}, apperr.Validation("rescued", "rescued must be an integer")
	}
	return SalmonResult{
		Hazard:    hazard,
		Stage:     Stage(data["stage"]),
		GoldenEgg: golden,
		PowerEgg:  power,
		Rescue:    rescue,
		Rescued:   rescued,
	}, nil
}

// HasRequiredFields reports whether every field in required is present and
// non-empty in data, matching the original's has_required_fields helper.
func HasRequiredFields(data map[string]string, required []string) bool {
	for _, field := range required {
		v, ok := data[field]
		if !ok || v == "" {
			return false
		}
	}
	return true
}

// Result is the sum type over BattleResult and SalmonResult. Exactly one of
// Battle/Salmon is set when Present is true.
type Result struct {
	Present bool
	Battle  *BattleResult
	Salmon  *SalmonResult
}

// BattleOf wraps a BattleResult into a Result.
func BattleOf(b BattleResult) Result { return Result{Present: true, Battle: &b} }

// SalmonOf wraps a SalmonResult into a Result.
func SalmonOf(s SalmonResult) Result { return Result{Present: true, Salmon: &s} }

// Equal reports deep equality between two Results, including both being absent.
func (r Result) Equal(other Result) bool {
	if r.Present != other.Present {
		return false
	}
	if !r.Present {
		return true
	}
	if r.Battle != nil && other.Battle != nil {
		return *r.Battle == *other.Battle
	}
	if r.Salmon != nil && other.Salmon != nil {
		return *r.Salmon == *other.Salmon
	}
	return false
}

// ToDict flattens whichever variant is present into a string map.
func (r Result) ToDict() map[string]string {
	if !r.Present {
		return nil
	}
	if r.Battle != nil {
		return r.Battle.ToDict()
	}
	if r.Salmon != nil {
		return r.Salmon.ToDict()
	}
	return nil
}
