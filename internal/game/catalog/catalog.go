// Package catalog holds the immutable move and combatant catalogs built from a
// game master snapshot.
package catalog

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/move"
)

// ErrMoveNotFound is returned when a move name has no catalog entry.
var ErrMoveNotFound = errors.New("move not found")

// Catalog indexes moves by name and keeps combatants in snapshot order.
// A Catalog must not be mutated after New returns.
type Catalog struct {
	moves      []move.Move
	moveByName map[string]int
	combatants []*combatant.Combatant
	byName     map[string]*combatant.Combatant
}

// New builds a Catalog.
//
// Precondition: every move must pass move.Validate.
// Postcondition: Returns a Catalog preserving input order, or an error on an
// invalid or duplicate move name.
func New(moves []move.Move, combatants []*combatant.Combatant) (*Catalog, error) {
	c := &Catalog{
		moves:      make([]move.Move, 0, len(moves)),
		moveByName: make(map[string]int, len(moves)),
		combatants: append([]*combatant.Combatant(nil), combatants...),
		byName:     make(map[string]*combatant.Combatant, len(combatants)),
	}
	for _, m := range moves {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, exists := c.moveByName[m.Name]; exists {
			return nil, fmt.Errorf("catalog: move %q already registered", m.Name)
		}
		c.moveByName[m.Name] = len(c.moves)
		c.moves = append(c.moves, m)
	}
	for _, cb := range c.combatants {
		if _, exists := c.byName[cb.Name]; !exists {
			c.byName[cb.Name] = cb
		}
	}
	return c, nil
}

// AllMoves returns every move in snapshot order.
//
// Postcondition: Returns a fresh slice; callers may modify it.
func (c *Catalog) AllMoves() []move.Move {
	return append([]move.Move(nil), c.moves...)
}

// Move returns the move named name.
//
// Postcondition: Returns an error wrapping ErrMoveNotFound if name is unknown.
func (c *Catalog) Move(name string) (move.Move, error) {
	i, ok := c.moveByName[name]
	if !ok {
		return move.Move{}, fmt.Errorf("%q: %w", name, ErrMoveNotFound)
	}
	return c.moves[i], nil
}

// AllCombatants returns every combatant in snapshot order. The combatants are
// shared with the catalog and must be treated as read-only; use Clone to modify.
func (c *Catalog) AllCombatants() []*combatant.Combatant {
	return append([]*combatant.Combatant(nil), c.combatants...)
}

// Combatant returns the first combatant with the given name.
func (c *Catalog) Combatant(name string) (*combatant.Combatant, bool) {
	cb, ok := c.byName[name]
	return cb, ok
}

// MoveCount returns the number of moves.
func (c *Catalog) MoveCount() int { return len(c.moves) }

// CombatantCount returns the number of combatants.
func (c *Catalog) CombatantCount() int { return len(c.combatants) }
