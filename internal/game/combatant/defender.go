package combatant

import (
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

const (
	// DefenderScaling is the level 40 CP multiplier applied to a raid boss's
	// base stats with perfect IVs.
	DefenderScaling = 0.7903
	// DefenderIV is the fixed IV assumed for every stat of a raid boss.
	DefenderIV = 15
	// GenericDefense is the defense of the typeless generic defender.
	GenericDefense = 160
	// GenericReferenceDPS is the incoming pressure assumed for the generic defender.
	GenericReferenceDPS = 900
)

// Defender is a read-only combat projection of a raid boss or the generic defender.
type Defender struct {
	// Combatant is the wrapped catalog entry; nil for the generic defender.
	Combatant *Combatant

	Type1   typing.Type
	Type2   typing.Type
	Attack  float64
	Defense float64
	// ReferenceDPS is used only when Combatant is nil.
	ReferenceDPS float64

	// FastMove and ChargedMove pin a specific defender move; nil means all learnable moves.
	FastMove    *move.Move
	ChargedMove *move.Move
}

// NewDefender projects c into a raid boss defender.
//
// Precondition: c must be non-nil.
// Postcondition: Attack and Defense are (base + 15) * 0.7903 and types are copied.
func NewDefender(c *Combatant) *Defender {
	return &Defender{
		Combatant: c,
		Type1:     c.Type1,
		Type2:     c.Type2,
		Attack:    float64(c.BaseAttack+DefenderIV) * DefenderScaling,
		Defense:   float64(c.BaseDefense+DefenderIV) * DefenderScaling,
	}
}

// GenericDefender returns the typeless defender with defense 160 and reference DPS 900.
func GenericDefender() *Defender {
	return &Defender{
		Defense:      GenericDefense,
		ReferenceDPS: GenericReferenceDPS,
	}
}

// WithPinnedMoves returns a copy of d pinning the given moves. A nil argument
// leaves that slot unpinned.
func (d *Defender) WithPinnedMoves(fast, charged *move.Move) *Defender {
	out := *d
	if fast != nil {
		f := *fast
		out.FastMove = &f
	}
	if charged != nil {
		c := *charged
		out.ChargedMove = &c
	}
	return &out
}

// Types returns the defender's typing pair.
func (d *Defender) Types() (typing.Type, typing.Type) { return d.Type1, d.Type2 }

// IsGeneric reports whether d wraps no catalog entry.
func (d *Defender) IsGeneric() bool { return d.Combatant == nil }

// Name returns the wrapped combatant's name, or "generic".
func (d *Defender) Name() string {
	if d.Combatant == nil {
		return "generic"
	}
	return d.Combatant.Name
}

// MoveCombinations returns the fast and charged moves the defender may use:
// the pinned move if set, otherwise the wrapped combatant's learnable moves.
//
// Precondition: d must not be generic.
func (d *Defender) MoveCombinations() (fast, charged []move.Move) {
	fast = d.Combatant.FastMoves
	charged = d.Combatant.ChargedMoves
	if d.FastMove != nil {
		fast = []move.Move{*d.FastMove}
	}
	if d.ChargedMove != nil {
		charged = []move.Move{*d.ChargedMove}
	}
	return fast, charged
}
