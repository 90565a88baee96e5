// Package combatant defines the Combatant catalog entry and its Defender projection.
package combatant

import (
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// Stats holds the three base stats.
type Stats struct {
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Stamina int `yaml:"stamina"`
}

// Combatant is one catalog character: base stats, typing, and movesets.
//
// Precondition: BaseAttack, BaseDefense, BaseStamina are positive and Type1 is valid.
type Combatant struct {
	// TemplateID is the game master template identifier, e.g. V0382_POKEMON_KYOGRE.
	TemplateID string
	Name       string

	BaseAttack  int
	BaseDefense int
	BaseStamina int

	Type1 typing.Type
	Type2 typing.Type

	FastMoves         []move.Move
	ChargedMoves      []move.Move
	EliteFastMoves    []move.Move
	EliteChargedMoves []move.Move

	ShadowAvailable bool
	IsMega          bool
	Legendary       bool
	Mythical        bool
	UltraBeast      bool
}

// Types returns the combatant's typing pair.
func (c *Combatant) Types() (typing.Type, typing.Type) { return c.Type1, c.Type2 }

// HasType reports whether t is either of the combatant's types.
func (c *Combatant) HasType(t typing.Type) bool {
	return t != typing.None && (c.Type1 == t || c.Type2 == t)
}

// Stats returns the base stats as a Stats value.
func (c *Combatant) Stats() Stats {
	return Stats{Attack: c.BaseAttack, Defense: c.BaseDefense, Stamina: c.BaseStamina}
}

// SetStats overwrites the base stats.
func (c *Combatant) SetStats(s Stats) {
	c.BaseAttack = s.Attack
	c.BaseDefense = s.Defense
	c.BaseStamina = s.Stamina
}

// Clone returns a deep copy; move slices are not shared with c.
//
// Postcondition: mutating the clone's move slices never affects c.
func (c *Combatant) Clone() *Combatant {
	out := *c
	out.FastMoves = append([]move.Move(nil), c.FastMoves...)
	out.ChargedMoves = append([]move.Move(nil), c.ChargedMoves...)
	out.EliteFastMoves = append([]move.Move(nil), c.EliteFastMoves...)
	out.EliteChargedMoves = append([]move.Move(nil), c.EliteChargedMoves...)
	return &out
}

// MegaVariant derives a distinct mega catalog entry from c.
//
// Precondition: prefix is non-empty, e.g. "mega" or "mega x".
// Postcondition: Returns a new Combatant flagged IsMega with the prefixed name,
// overridden stats and typing; c is unchanged.
func (c *Combatant) MegaVariant(prefix string, stats Stats, type1, type2 typing.Type) *Combatant {
	mega := c.Clone()
	mega.IsMega = true
	mega.Name = prefix + " " + c.Name
	mega.SetStats(stats)
	mega.Type1 = type1
	mega.Type2 = type2
	return mega
}

// RaidClass reports whether c belongs to one of the raid-boss classes.
func (c *Combatant) RaidClass() bool {
	return c.Legendary || c.Mythical || c.UltraBeast || c.IsMega
}
