// Package model holds the domain value objects for splat-replay: game
// mode, rate, judgement, battle/salmon results, recording metadata, and the
// video asset aggregate. All types are immutable; updates return a new
// value rather than mutating in place, matching the Python original's
// frozen dataclasses.
package model

// GameMode is a tagged variant over the two supported game modes.
type GameMode string

const (
	GameModeBattle GameMode = "BATTLE"
	GameModeSalmon GameMode = "SALMON"
)

// Valid reports whether m is a known GameMode.
func (m GameMode) Valid() bool {
	return m == GameModeBattle || m == GameModeSalmon
}
