package typing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Chart maps attacking type × defending type to a damage multiplier.
// A Chart is immutable once constructed.
type Chart struct {
	m map[Type]map[Type]float64
}

// yamlChart is the on-disk layout: attacking type name → defending type name → multiplier.
type yamlChart map[string]map[string]float64

// NewChart builds a Chart from a nested attacking → defending multiplier map.
//
// Precondition: m must hold a positive multiplier for every pair of the 18 types.
// Postcondition: Returns a Chart that owns a private copy of m, or a non-nil error
// naming every missing or invalid entry.
func NewChart(m map[Type]map[Type]float64) (*Chart, error) {
	var errs []string
	c := &Chart{m: make(map[Type]map[Type]float64, len(all))}
	for _, atk := range all {
		row, ok := m[atk]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing attacking type %s", atk))
			continue
		}
		c.m[atk] = make(map[Type]float64, len(all))
		for _, def := range all {
			v, ok := row[def]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("missing %s→%s", atk, def))
			case v <= 0:
				errs = append(errs, fmt.Sprintf("%s→%s must be positive, got %v", atk, def, v))
			default:
				c.m[atk][def] = v
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("type chart invalid: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// LoadChart reads a YAML type chart from path.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns a validated Chart or a non-nil error.
func LoadChart(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type chart %s: %w", path, err)
	}
	return LoadChartFromBytes(data)
}

// LoadChartFromBytes parses a YAML type chart.
//
// Postcondition: Returns a validated Chart or a non-nil error.
func LoadChartFromBytes(data []byte) (*Chart, error) {
	var raw yamlChart
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing type chart YAML: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("type chart is empty")
	}
	m := make(map[Type]map[Type]float64, len(raw))
	for atkName, row := range raw {
		atk, err := Parse(atkName)
		if err != nil {
			return nil, fmt.Errorf("type chart row: %w", err)
		}
		m[atk] = make(map[Type]float64, len(row))
		for defName, v := range row {
			def, err := Parse(defName)
			if err != nil {
				return nil, fmt.Errorf("type chart row %s: %w", atk, err)
			}
			m[atk][def] = v
		}
	}
	return NewChart(m)
}

// Effectiveness returns the multiplier of an attacking type against one defending type.
//
// Postcondition: Returns 1 when defending is None.
func (c *Chart) Effectiveness(attacking, defending Type) float64 {
	if defending == None {
		return 1
	}
	return c.m[attacking][defending]
}

// Against returns the combined multiplier against a (possibly dual) typing.
func (c *Chart) Against(attacking, type1, type2 Type) float64 {
	return c.Effectiveness(attacking, type1) * c.Effectiveness(attacking, type2)
}

// MostEffectiveTypes buckets all 18 attacking types by their combined multiplier
// against the typing (type1, type2).
//
// Postcondition: buckets are ordered by strictly descending multiplier, every type
// appears in exactly one bucket, and types keep canonical order inside a bucket.
func (c *Chart) MostEffectiveTypes(type1, type2 Type) [][]Type {
	buckets := make(map[float64][]Type)
	var keys []float64
	for _, atk := range all {
		v := c.Against(atk, type1, type2)
		if _, ok := buckets[v]; !ok {
			keys = append(keys, v)
		}
		buckets[v] = append(buckets[v], atk)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(keys)))
	out := make([][]Type, 0, len(keys))
	for _, k := range keys {
		out = append(out, buckets[k])
	}
	return out
}
