package patch

import (
	"fmt"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/move"
)

// MoveResolver looks up moves by name. *catalog.Catalog satisfies it.
type MoveResolver interface {
	Move(name string) (move.Move, error)
}

// Rule is one (predicate, override) pair of the data-patch layer.
type Rule struct {
	Name      string
	Predicate func(*combatant.Combatant) bool
	Apply     func(*combatant.Combatant, MoveResolver) error
}

// Apply runs every rule against every combatant it matches, in order.
//
// Precondition: combatants must be owned by the caller; they are modified in place.
// Postcondition: Returns nil, or the first error annotated with rule and combatant.
func Apply(rules []Rule, combatants []*combatant.Combatant, moves MoveResolver) error {
	for _, r := range rules {
		for _, c := range combatants {
			if !r.Predicate(c) {
				continue
			}
			if err := r.Apply(c, moves); err != nil {
				return fmt.Errorf("patch %s on %s: %w", r.Name, c.Name, err)
			}
		}
	}
	return nil
}
