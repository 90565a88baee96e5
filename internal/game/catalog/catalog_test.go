package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidrank/internal/game/catalog"
	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

func mv(name string) move.Move {
	return move.Move{Name: name, Type: typing.Normal, Power: 10, EnergyDelta: 10, DurationMs: 1000}
}

func TestCatalog_MoveLookup(t *testing.T) {
	c, err := catalog.New([]move.Move{mv("tackle"), mv("hyper beam")}, nil)
	require.NoError(t, err)

	m, err := c.Move("hyper beam")
	require.NoError(t, err)
	assert.Equal(t, "hyper beam", m.Name)

	_, err = c.Move("splash")
	assert.ErrorIs(t, err, catalog.ErrMoveNotFound)
	assert.Contains(t, err.Error(), "splash")
}

func TestCatalog_DuplicateMoveRejected(t *testing.T) {
	_, err := catalog.New([]move.Move{mv("tackle"), mv("tackle")}, nil)
	assert.Error(t, err)
}

func TestCatalog_InvalidMoveRejected(t *testing.T) {
	bad := mv("tackle")
	bad.DurationMs = 0
	_, err := catalog.New([]move.Move{bad}, nil)
	assert.Error(t, err)
}

func TestCatalog_CombatantsKeepOrder(t *testing.T) {
	a := &combatant.Combatant{Name: "a", Type1: typing.Water}
	b := &combatant.Combatant{Name: "b", Type1: typing.Fire}
	c, err := catalog.New(nil, []*combatant.Combatant{a, b})
	require.NoError(t, err)

	all := c.AllCombatants()
	require.Len(t, all, 2)
	assert.Same(t, a, all[0])
	assert.Same(t, b, all[1])

	got, ok := c.Combatant("b")
	assert.True(t, ok)
	assert.Same(t, b, got)
	_, ok = c.Combatant("z")
	assert.False(t, ok)
	assert.Equal(t, 2, c.CombatantCount())
}

func TestProperty_AllMovesReturnsCopy(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		moves := make([]move.Move, n)
		for i := range moves {
			moves[i] = mv(string(rune('a' + i)))
		}
		c, err := catalog.New(moves, nil)
		require.NoError(rt, err)
		all := c.AllMoves()
		all[0].Name = "mutated"
		_, err = c.Move("a")
		assert.NoError(rt, err)
		assert.Equal(rt, n, c.MoveCount())
	})
}
