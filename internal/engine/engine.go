// Package engine enumerates attacker configurations against raid defenders and
// reduces the per-defender metrics into a leaderboard.
package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/raidrank/internal/game/catalog"
	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/metrics"
	"github.com/cory-johannsen/raidrank/internal/game/patch"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// SortMetric selects the metric a leaderboard is ranked by.
type SortMetric int

const (
	SortDPS SortMetric = iota + 1
	SortTDO
	SortER
)

// ParseSortMetric maps "dps", "tdo" and "er" to a SortMetric.
func ParseSortMetric(s string) (SortMetric, error) {
	switch s {
	case "dps":
		return SortDPS, nil
	case "tdo":
		return SortTDO, nil
	case "er":
		return SortER, nil
	}
	return 0, fmt.Errorf("unknown sort metric %q", s)
}

// Valid reports whether m is one of the three metrics.
func (m SortMetric) Valid() bool { return m >= SortDPS && m <= SortER }

func (m SortMetric) String() string {
	switch m {
	case SortDPS:
		return "dps"
	case SortTDO:
		return "tdo"
	case SortER:
		return "er"
	}
	return fmt.Sprintf("SortMetric(%d)", int(m))
}

// Options configures an Engine.
type Options struct {
	// Stats supplies IVs and level for every attacker. The shadow flag is ignored.
	Stats  metrics.Stats
	Filter DefenderFilter
	// Workers > 1 enables parallel enumeration partitioned by attacker.
	Workers int
}

// DefaultOptions returns 15/15/15 level 40 attackers, all raid classes, sequential.
func DefaultOptions() Options {
	return Options{Stats: metrics.DefaultStats(), Filter: AllClasses(), Workers: 1}
}

// Entry is one leaderboard row: a representative metrics instance and the
// averaged score of its bucket.
type Entry struct {
	Metrics *metrics.CombatantMetrics
	Score   float64
}

// Engine ranks catalog attackers. An Engine is safe for concurrent use; the
// catalog is never mutated.
type Engine struct {
	catalog *catalog.Catalog
	calc    *metrics.Calculator
	patches *patch.Set
	opts    Options
	logger  *zap.Logger
}

// New creates an Engine.
//
// Precondition: cat, calc, patches and logger must be non-nil.
func New(cat *catalog.Catalog, calc *metrics.Calculator, patches *patch.Set, opts Options, logger *zap.Logger) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{catalog: cat, calc: calc, patches: patches, opts: opts, logger: logger}
}

// Roster returns private copies of the catalog combatants with the roster
// move previews applied.
func (e *Engine) Roster() ([]*combatant.Combatant, error) {
	src := e.catalog.AllCombatants()
	roster := make([]*combatant.Combatant, len(src))
	for i, c := range src {
		roster[i] = c.Clone()
	}
	if err := patch.Apply(e.patches.RosterRules(), roster, e.catalog); err != nil {
		return nil, fmt.Errorf("applying roster previews: %w", err)
	}
	return roster, nil
}

type bucketKey struct {
	shadow  bool
	fast    string
	charged string
}

type bucket struct {
	key    bucketKey
	first  *metrics.CombatantMetrics
	sum    [3]float64
	sample int
}

func (b *bucket) average(m SortMetric) float64 {
	return b.sum[m-1] / float64(b.sample)
}

// TopAttackersForType ranks every attacker against the defenders weak to t.
//
// Precondition: sort must be valid; t must be valid or typing.None.
// Postcondition: Returns up to two entries per attacker (shadow first) in
// catalog order, or the first metrics error encountered.
func (e *Engine) TopAttackersForType(ctx context.Context, t typing.Type, sort SortMetric) ([]Entry, error) {
	if !sort.Valid() {
		return nil, fmt.Errorf("invalid sort metric %d", int(sort))
	}
	if t != typing.None && !t.Valid() {
		return nil, fmt.Errorf("invalid type %q", t)
	}
	start := time.Now()

	roster, err := e.Roster()
	if err != nil {
		return nil, err
	}
	selected := e.WeakDefendersForType(t, e.opts.Filter)
	defenders := make([]*combatant.Defender, len(selected))
	for i, c := range selected {
		defenders[i] = combatant.NewDefender(c)
		e.logger.Debug("defender selected", zap.String("defender", c.Name), zap.Int("index", i))
	}

	results := make([][]Entry, len(roster))
	if e.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)
		for i, attacker := range roster {
			i, attacker := i, attacker
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				entries, err := e.rankAttacker(attacker, defenders, sort)
				if err != nil {
					return err
				}
				results[i] = entries
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, attacker := range roster {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entries, err := e.rankAttacker(attacker, defenders, sort)
			if err != nil {
				return nil, err
			}
			results[i] = entries
		}
	}

	var out []Entry
	for _, r := range results {
		out = append(out, r...)
	}
	e.logger.Info("ranked attackers",
		zap.String("type", t.String()),
		zap.Stringer("sort", sort),
		zap.Int("defenders", len(defenders)),
		zap.Int("attackers", len(roster)),
		zap.Int("entries", len(out)),
		zap.Int("workers", e.opts.Workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// rankAttacker enumerates every configuration of attacker against defenders and
// returns its best shadow entry followed by its best non-shadow entry.
func (e *Engine) rankAttacker(attacker *combatant.Combatant, defenders []*combatant.Defender, sort SortMetric) ([]Entry, error) {
	var order []*bucket
	index := make(map[bucketKey]*bucket)
	fastSet := attacker.FastMoveset()
	chargedSet := attacker.ChargedMoveset()

	for _, d := range defenders {
		for _, shadow := range []bool{true, false} {
			if shadow && attacker.IsMega {
				continue
			}
			stats := e.opts.Stats
			stats.Shadow = shadow
			for _, fast := range fastSet {
				for _, charged := range chargedSet {
					if !e.patches.ShadowRules.Allowed(charged.Move.Name, shadow) {
						continue
					}
					cm, err := e.calc.New(attacker, fast, charged, stats, d)
					if err != nil {
						return nil, err
					}
					key := bucketKey{shadow: shadow, fast: fast.Move.Name, charged: charged.Move.Name}
					b, ok := index[key]
					if !ok {
						b = &bucket{key: key, first: cm}
						index[key] = b
						order = append(order, b)
					}
					b.sum[0] += cm.DPS()
					b.sum[1] += cm.TDO()
					b.sum[2] += cm.ER()
					b.sample++
				}
			}
		}
	}

	var best, bestShadow *bucket
	var score, scoreShadow float64
	for _, b := range order {
		avg := b.average(sort)
		if b.key.shadow {
			if avg > scoreShadow {
				bestShadow, scoreShadow = b, avg
			}
		} else if avg > score {
			best, score = b, avg
		}
	}

	var out []Entry
	if bestShadow != nil {
		out = append(out, Entry{Metrics: bestShadow.first, Score: scoreShadow})
	}
	if best != nil {
		out = append(out, Entry{Metrics: best.first, Score: score})
	}
	return out, nil
}

// SortEntries orders entries by descending score. Equal scores keep their order.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
