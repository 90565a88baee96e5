// Package move defines the immutable Move value used by fast and charged attacks.
package move

import (
	"fmt"

	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// Move describes one attack's power, energy, and timing.
// Move is a value type; copies are independent.
type Move struct {
	// Name is the unique catalog key, lower-case with spaces.
	Name string
	Type typing.Type
	// Power is the base power; non-negative.
	Power float64
	// EnergyDelta is the energy gained (fast) or spent (charged); non-negative.
	EnergyDelta int

	DamageWindowStartMs int
	DamageWindowEndMs   int
	DurationMs          int
}

// DurationS returns the duration in seconds.
func (m Move) DurationS() float64 { return float64(m.DurationMs) / 1000 }

// DamageWindowStartS returns the damage window start in seconds.
func (m Move) DamageWindowStartS() float64 { return float64(m.DamageWindowStartMs) / 1000 }

// DamageWindowEndS returns the damage window end in seconds.
func (m Move) DamageWindowEndS() float64 { return float64(m.DamageWindowEndMs) / 1000 }

// WithType returns a copy of m retyped to t and renamed "<name> <t>".
// Used to expand hidden power into its typed variants.
//
// Precondition: t must be a valid type.
func (m Move) WithType(t typing.Type) Move {
	out := m
	out.Name = m.Name + " " + string(t)
	out.Type = t
	return out
}

// Validate checks the invariants the metrics formulas rely on.
//
// Postcondition: Returns nil if the move is usable, or an error describing the violation.
func (m Move) Validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("move name must not be empty")
	case !m.Type.Valid():
		return fmt.Errorf("move %q: invalid type %q", m.Name, m.Type)
	case m.Power < 0:
		return fmt.Errorf("move %q: power must be >= 0, got %v", m.Name, m.Power)
	case m.EnergyDelta < 0:
		return fmt.Errorf("move %q: energy delta must be >= 0, got %d", m.Name, m.EnergyDelta)
	case m.DurationMs <= 0:
		return fmt.Errorf("move %q: duration must be > 0, got %d", m.Name, m.DurationMs)
	}
	return nil
}
