package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/raidrank/internal/storage"
)

func TestRunEntryColumnsLineUp(t *testing.T) {
	e := storage.RunEntry{
		Rank: 3, Attacker: "kyogre", TemplateID: "V0382_POKEMON_KYOGRE", Shadow: true,
		FastMove: "waterfall", ChargedMove: "origin pulse", EliteFast: true, EliteCharged: true,
		Score: 1, DPS: 2, TDO: 3, ER: 4,
	}
	values := e.Values()
	require.Len(t, values, len(storage.EntryColumns))

	var got storage.RunEntry
	targets := got.Targets()
	require.Len(t, targets, len(storage.EntryColumns))
	for i, v := range values {
		switch p := targets[i].(type) {
		case *int:
			*p = v.(int)
		case *string:
			*p = v.(string)
		case *bool:
			*p = v.(bool)
		case *float64:
			*p = v.(float64)
		default:
			t.Fatalf("column %s: unexpected target %T", storage.EntryColumns[i], p)
		}
	}
	assert.Equal(t, e, got)
}
