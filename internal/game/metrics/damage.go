package metrics

import (
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// SameTypeAttackBonus multiplies damage when the move type matches one of the user's types.
const SameTypeAttackBonus = 1.2

// Typed is anything with a (possibly dual) elemental typing.
type Typed interface {
	Types() (typing.Type, typing.Type)
}

// Damage returns the damage of one use of m.
//
//	0.5 * attackerAtk / defenderDefn * power * multiplier + 0.5
//
// where multiplier includes the same-type attack bonus and the type effectiveness
// against both defending types.
//
// Precondition: defenderDefn > 0.
// Postcondition: pure function of its inputs.
func Damage(chart *typing.Chart, m move.Move, attacker, defender Typed, attackerAtk, defenderDefn float64) float64 {
	multiplier := 1.0
	a1, a2 := attacker.Types()
	if a1 == m.Type || a2 == m.Type {
		multiplier *= SameTypeAttackBonus
	}
	d1, d2 := defender.Types()
	multiplier *= chart.Effectiveness(m.Type, d1)
	multiplier *= chart.Effectiveness(m.Type, d2)
	return 0.5*attackerAtk/defenderDefn*m.Power*multiplier + 0.5
}
