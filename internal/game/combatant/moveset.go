package combatant

import (
	"slices"

	"github.com/cory-johannsen/raidrank/internal/game/move"
)

// MoveSource tags where a chosen move comes from.
type MoveSource int

const (
	// Learnable moves are available through normal leveling.
	Learnable MoveSource = iota
	// Elite moves are available only through restricted means.
	Elite
)

// String returns "learnable" or "elite".
func (s MoveSource) String() string {
	if s == Elite {
		return "elite"
	}
	return "learnable"
}

// SourcedMove pairs a Move with its MoveSource.
type SourcedMove struct {
	Move   move.Move
	Source MoveSource
}

// FastMoveset returns learnable fast moves followed by elite fast moves. A move
// listed in both sets is tagged Elite in both positions.
//
// Postcondition: len(result) == len(FastMoves) + len(EliteFastMoves).
func (c *Combatant) FastMoveset() []SourcedMove {
	return sourced(c.FastMoves, c.EliteFastMoves)
}

// ChargedMoveset returns learnable charged moves followed by elite charged moves,
// tagged like FastMoveset.
//
// Postcondition: len(result) == len(ChargedMoves) + len(EliteChargedMoves).
func (c *Combatant) ChargedMoveset() []SourcedMove {
	return sourced(c.ChargedMoves, c.EliteChargedMoves)
}

func sourced(learnable, elite []move.Move) []SourcedMove {
	out := make([]SourcedMove, 0, len(learnable)+len(elite))
	for _, m := range learnable {
		src := Learnable
		if slices.ContainsFunc(elite, func(e move.Move) bool { return e.Name == m.Name }) {
			src = Elite
		}
		out = append(out, SourcedMove{Move: m, Source: src})
	}
	for _, m := range elite {
		out = append(out, SourcedMove{Move: m, Source: Elite})
	}
	return out
}
