package typing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

func loadChart(t *testing.T) *typing.Chart {
	t.Helper()
	c, err := typing.LoadChart("../../../content/typechart.yaml")
	require.NoError(t, err)
	return c
}

func drawType(t *rapid.T, label string) typing.Type {
	return rapid.SampledFrom(typing.All()).Draw(t, label)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want typing.Type
	}{
		{"water", typing.Water},
		{"POKEMON_TYPE_WATER", typing.Water},
		{"POKEMON_TYPE_FAIRY", typing.Fairy},
		{"", typing.None},
	}
	for _, tc := range cases {
		got, err := typing.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
	_, err := typing.Parse("shadow")
	assert.Error(t, err)
}

func TestAll_HasEighteenDistinctTypes(t *testing.T) {
	types := typing.All()
	require.Len(t, types, 18)
	seen := make(map[typing.Type]bool)
	for _, ty := range types {
		assert.True(t, ty.Valid())
		assert.False(t, seen[ty], "duplicate %s", ty)
		seen[ty] = true
	}
	assert.False(t, typing.None.Valid())
}

func TestLoadChart_ActualContent(t *testing.T) {
	c := loadChart(t)
	assert.Equal(t, 1.6, c.Effectiveness(typing.Water, typing.Fire))
	assert.Equal(t, 0.625, c.Effectiveness(typing.Fire, typing.Water))
	assert.Equal(t, 0.390625, c.Effectiveness(typing.Normal, typing.Ghost))
	assert.InDelta(t, 2.56, c.Against(typing.Water, typing.Fire, typing.Rock), 1e-12)
	assert.Equal(t, c.Effectiveness(typing.Water, typing.Fire)*c.Effectiveness(typing.Water, typing.Rock),
		c.Against(typing.Water, typing.Fire, typing.Rock))
}

func TestLoadChartFromBytes_Incomplete(t *testing.T) {
	_, err := typing.LoadChartFromBytes([]byte("water:\n  fire: 1.6\n"))
	assert.Error(t, err)
}

func TestLoadChartFromBytes_UnknownType(t *testing.T) {
	_, err := typing.LoadChartFromBytes([]byte("laser:\n  fire: 1.6\n"))
	assert.Error(t, err)
}

func TestLoadChartFromBytes_Invalid(t *testing.T) {
	_, err := typing.LoadChartFromBytes([]byte("{{{ not yaml"))
	assert.Error(t, err)
}

func TestNewChart_RejectsNonPositive(t *testing.T) {
	m := make(map[typing.Type]map[typing.Type]float64)
	for _, a := range typing.All() {
		m[a] = make(map[typing.Type]float64)
		for _, d := range typing.All() {
			m[a][d] = 1
		}
	}
	m[typing.Fire][typing.Water] = 0
	_, err := typing.NewChart(m)
	assert.Error(t, err)
}

func TestProperty_EffectivenessAgainstNoneIsOne(t *testing.T) {
	c := loadChart(t)
	rapid.Check(t, func(rt *rapid.T) {
		atk := drawType(rt, "attacking")
		assert.Equal(rt, 1.0, c.Effectiveness(atk, typing.None))
	})
}

func TestProperty_MostEffectiveTypesPartitionsAllTypes(t *testing.T) {
	c := loadChart(t)
	rapid.Check(t, func(rt *rapid.T) {
		t1 := drawType(rt, "type1")
		t2 := rapid.SampledFrom(append(typing.All(), typing.None)).Draw(rt, "type2")

		buckets := c.MostEffectiveTypes(t1, t2)
		seen := make(map[typing.Type]int)
		prev := -1.0
		for i, bucket := range buckets {
			require.NotEmpty(rt, bucket)
			mult := c.Against(bucket[0], t1, t2)
			for _, ty := range bucket {
				seen[ty]++
				assert.Equal(rt, mult, c.Against(ty, t1, t2))
			}
			if i > 0 {
				assert.Less(rt, mult, prev, "buckets must strictly descend")
			}
			prev = mult
		}
		assert.Len(rt, seen, 18)
		for ty, n := range seen {
			assert.Equal(rt, 1, n, "type %s appears %d times", ty, n)
		}
	})
}

func TestMostEffectiveTypes_WaterGroundTopBucketIsGrass(t *testing.T) {
	c := loadChart(t)
	buckets := c.MostEffectiveTypes(typing.Water, typing.Ground)
	assert.Equal(t, []typing.Type{typing.Grass}, buckets[0])
}
