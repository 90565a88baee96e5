package engine

import (
	"slices"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// DefenderFilter toggles which raid classes may be selected as defenders.
type DefenderFilter struct {
	IncludeLegendary  bool
	IncludeMythical   bool
	IncludeMega       bool
	IncludeUltraBeast bool
}

// AllClasses returns a filter including every raid class.
func AllClasses() DefenderFilter {
	return DefenderFilter{IncludeLegendary: true, IncludeMythical: true, IncludeMega: true, IncludeUltraBeast: true}
}

func (f DefenderFilter) admits(c *combatant.Combatant) bool {
	switch {
	case c.Mythical && !f.IncludeMythical:
		return false
	case c.IsMega && !f.IncludeMega:
		return false
	case c.UltraBeast && !f.IncludeUltraBeast:
		return false
	case c.Legendary && !f.IncludeLegendary:
		return false
	}
	return true
}

// WeakDefendersForType selects the raid-class catalog entries whose top
// most-effective-type bucket contains t. typing.None selects every eligible entry.
//
// Postcondition: no entry on an exclusion list is ever returned; entries keep
// catalog order.
func (e *Engine) WeakDefendersForType(t typing.Type, filter DefenderFilter) []*combatant.Combatant {
	var out []*combatant.Combatant
	for _, c := range e.catalog.AllCombatants() {
		if !filter.admits(c) || !c.RaidClass() {
			continue
		}
		if !e.patches.Exclusions.RaidEligible(c) {
			continue
		}
		if t == typing.None {
			out = append(out, c)
			continue
		}
		buckets := e.calc.Chart().MostEffectiveTypes(c.Type1, c.Type2)
		if slices.Contains(buckets[0], t) {
			out = append(out, c)
		}
	}
	return out
}
