// Package metrics implements the closed-form damage and combat metric calculators.
package metrics

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrLevelOutOfRange is returned when a level has no CP multiplier.
var ErrLevelOutOfRange = errors.New("level out of range")

// CPMTable holds the CP multiplier for each whole level, starting at level 1.
// A CPMTable is immutable once constructed.
type CPMTable struct {
	multipliers []float64
}

type yamlCPM struct {
	Multipliers []float64 `yaml:"multipliers"`
}

// NewCPMTable builds a table from per-level multipliers, index 0 being level 1.
//
// Precondition: every multiplier must be positive.
// Postcondition: Returns a table owning a copy of multipliers, or a non-nil error.
func NewCPMTable(multipliers []float64) (*CPMTable, error) {
	if len(multipliers) == 0 {
		return nil, errors.New("cpm table is empty")
	}
	for i, m := range multipliers {
		if m <= 0 {
			return nil, fmt.Errorf("cpm for level %d must be positive, got %v", i+1, m)
		}
	}
	return &CPMTable{multipliers: append([]float64(nil), multipliers...)}, nil
}

// LoadCPMTable reads a YAML CPM table from path.
//
// Precondition: path must point to a readable YAML file with a multipliers list.
// Postcondition: Returns a validated table or a non-nil error.
func LoadCPMTable(path string) (*CPMTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cpm table %s: %w", path, err)
	}
	var raw yamlCPM
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing cpm table %s: %w", path, err)
	}
	return NewCPMTable(raw.Multipliers)
}

// At returns the multiplier for level.
//
// Postcondition: Returns ErrLevelOutOfRange when level < 1 or beyond the table.
func (t *CPMTable) At(level int) (float64, error) {
	if level < 1 || level > len(t.multipliers) {
		return 0, fmt.Errorf("level %d (table covers 1-%d): %w", level, len(t.multipliers), ErrLevelOutOfRange)
	}
	return t.multipliers[level-1], nil
}

// MaxLevel returns the highest level in the table.
func (t *CPMTable) MaxLevel() int { return len(t.multipliers) }
