package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/raidrank/internal/config"
	"github.com/cory-johannsen/raidrank/internal/engine"
	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/metrics"
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
	"github.com/cory-johannsen/raidrank/internal/storage"
)

func TestQueryType(t *testing.T) {
	assert.Equal(t, "all", queryType(typing.None))
	assert.Equal(t, "water", queryType(typing.Water))
}

func TestEngineOptions(t *testing.T) {
	opts := engineOptions(config.EngineConfig{
		Level: 50, AtkIV: 15, DefIV: 14, HPIV: 13, Workers: 3,
		IncludeLegendary: true, IncludeMega: true,
	})
	assert.Equal(t, metrics.Stats{AtkIV: 15, DefnIV: 14, HPIV: 13, Level: 50}, opts.Stats)
	assert.Equal(t, engine.DefenderFilter{IncludeLegendary: true, IncludeMega: true}, opts.Filter)
	assert.Equal(t, 3, opts.Workers)
}

func TestToRunAndStoredRows(t *testing.T) {
	chart, err := typing.LoadChart("../../content/typechart.yaml")
	require.NoError(t, err)
	cpm, err := metrics.LoadCPMTable("../../content/cpm.yaml")
	require.NoError(t, err)
	calc := metrics.NewCalculator(chart, cpm)

	waterfall := move.Move{Name: "waterfall", Type: typing.Water, Power: 16, EnergyDelta: 8, DurationMs: 1200}
	hydroPump := move.Move{Name: "hydro pump", Type: typing.Water, Power: 130, EnergyDelta: 100, DamageWindowStartMs: 900, DurationMs: 3300}
	base := &combatant.Combatant{
		TemplateID: "V0130_POKEMON_GYARADOS", Name: "gyarados",
		BaseAttack: 237, BaseDefense: 186, BaseStamina: 216, Type1: typing.Water, Type2: typing.Flying,
		FastMoves: []move.Move{waterfall}, EliteChargedMoves: []move.Move{hydroPump},
	}
	stats := metrics.DefaultStats()
	stats.Shadow = true
	m, err := calc.New(base,
		combatant.SourcedMove{Move: waterfall},
		combatant.SourcedMove{Move: hydroPump, Source: combatant.Elite},
		stats, combatant.GenericDefender())
	require.NoError(t, err)

	run := toRun("water", engine.SortDPS, "abc", 40, []engine.Entry{
		{Metrics: m, Score: 17.5},
		{Metrics: m, Score: 12},
	})
	assert.Equal(t, "water", run.QueryType)
	assert.Equal(t, "dps", run.SortMetric)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	require.Len(t, run.Entries, 2)
	assert.Equal(t, storage.RunEntry{
		Rank: 1, Attacker: "shadow gyarados", TemplateID: "V0130_POKEMON_GYARADOS", Shadow: true,
		FastMove: "waterfall", ChargedMove: "hydro pump", EliteCharged: true,
		Score: 17.5, DPS: m.DPS(), TDO: m.TDO(), ER: m.ER(),
	}, run.Entries[0])
	assert.Equal(t, 2, run.Entries[1].Rank)

	rows := storedRows(run, 1)
	require.Len(t, rows, 1)
	assert.Equal(t, "Shadow Gyarados", rows[0].Name)
	assert.Equal(t, "Waterfall", rows[0].Fast)
	assert.Equal(t, "Hydro Pump^", rows[0].Charged)
	assert.Len(t, storedRows(run, 0), 2)
}
