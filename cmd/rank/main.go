// Package main provides the rank binary that prints the best raid attackers
// against every raid boss weak to a type.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidrank/internal/config"
	"github.com/cory-johannsen/raidrank/internal/engine"
	"github.com/cory-johannsen/raidrank/internal/game/metrics"
	"github.com/cory-johannsen/raidrank/internal/game/patch"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
	"github.com/cory-johannsen/raidrank/internal/gamemaster"
	"github.com/cory-johannsen/raidrank/internal/lifecycle"
	"github.com/cory-johannsen/raidrank/internal/observability"
	"github.com/cory-johannsen/raidrank/internal/report"
	"github.com/cory-johannsen/raidrank/internal/scripting"
	"github.com/cory-johannsen/raidrank/internal/storage"
	"github.com/cory-johannsen/raidrank/internal/storage/postgres"
	"github.com/cory-johannsen/raidrank/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	typeName := flag.String("type", "", "attacking type to rank; empty ranks against every raid boss")
	sortName := flag.String("sort", "er", "sort metric: dps, tdo or er")
	limit := flag.Int("limit", report.DefaultLimit, "number of rows to print (0 = all)")
	latest := flag.Bool("latest", false, "print the latest stored run for -type instead of computing")
	exportPath := flag.String("export", "", "also write the leaderboard to this SQLite file")
	showPath := flag.String("show", "", "print the leaderboard stored in this SQLite file instead of computing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("rank", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := lifecycle.WithSignals(context.Background(), logger)
	defer cancel()

	t, err := typing.Parse(*typeName)
	if err != nil {
		logger.Fatal("parsing type", zap.Error(err))
	}
	sort, err := engine.ParseSortMetric(*sortName)
	if err != nil {
		logger.Fatal("parsing sort metric", zap.Error(err))
	}

	if *showPath != "" {
		run, err := sqlite.Read(ctx, *showPath)
		if err != nil {
			logger.Fatal("reading export", zap.String("path", *showPath), zap.Error(err))
		}
		if err := printRun(run, *limit, logger); err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		return
	}
	if *latest {
		if err := printLatest(ctx, cfg.Database, queryType(t), *limit, logger); err != nil {
			logger.Fatal("printing latest run", zap.Error(err))
		}
		return
	}

	patches, err := loadPatches(cfg.Dataset, logger)
	if err != nil {
		logger.Fatal("loading patches", zap.Error(err))
	}

	chart, err := typing.LoadChart(cfg.Dataset.TypeChartPath)
	if err != nil {
		logger.Fatal("loading type chart", zap.Error(err))
	}
	cpm, err := metrics.LoadCPMTable(cfg.Dataset.CPMPath)
	if err != nil {
		logger.Fatal("loading cpm table", zap.Error(err))
	}

	snapshot, err := os.ReadFile(cfg.Dataset.GameMasterPath)
	if err != nil {
		logger.Fatal("reading game master snapshot", zap.Error(err))
	}
	parseStart := time.Now()
	parser := gamemaster.NewParser(patches, gamemaster.Options{HiddenPower: cfg.Dataset.HiddenPower}, logger)
	cat, err := parser.Parse(snapshot)
	if err != nil {
		logger.Fatal("parsing game master snapshot", zap.Error(err))
	}
	observability.LogElapsed(logger, "catalog loaded", parseStart,
		zap.Int("moves", cat.MoveCount()),
		zap.Int("combatants", cat.CombatantCount()),
	)

	eng := engine.New(cat, metrics.NewCalculator(chart, cpm), patches, engineOptions(cfg.Engine), logger)
	entries, err := eng.TopAttackersForType(ctx, t, sort)
	if err != nil {
		logger.Fatal("ranking attackers", zap.Error(err))
	}
	engine.SortEntries(entries)

	if err := report.Render(os.Stdout, entries, sort, *limit); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}

	run := toRun(queryType(t), sort, gamemaster.Digest(snapshot), cfg.Engine.Level, entries)
	if *exportPath != "" {
		if err := sqlite.Export(ctx, *exportPath, run); err != nil {
			logger.Fatal("exporting run", zap.String("path", *exportPath), zap.Error(err))
		}
		logger.Info("run exported", zap.String("path", *exportPath), zap.String("id", run.ID.String()))
	}
	if cfg.Database.Enabled {
		if err := persist(ctx, cfg.Database, run, logger); err != nil {
			logger.Fatal("persisting run", zap.Error(err))
		}
	}

	observability.LogElapsed(logger, "rank complete", start,
		zap.String("type", t.String()),
		zap.String("sort", sort.String()),
		zap.Int("entries", len(entries)),
	)
}

func loadPatches(cfg config.DatasetConfig, logger *zap.Logger) (*patch.Set, error) {
	set := patch.Default()
	if cfg.PatchesPath != "" {
		var err error
		if set, err = patch.Load(cfg.PatchesPath); err != nil {
			return nil, err
		}
	}
	if cfg.PatchScriptsDir == "" {
		return set, nil
	}
	mgr := scripting.NewManager(cfg.ScriptInstructionLimit, logger)
	if _, err := mgr.ApplyDir(cfg.PatchScriptsDir, set); err != nil {
		return nil, err
	}
	return set, nil
}

func engineOptions(cfg config.EngineConfig) engine.Options {
	return engine.Options{
		Stats: metrics.Stats{
			AtkIV:  cfg.AtkIV,
			DefnIV: cfg.DefIV,
			HPIV:   cfg.HPIV,
			Level:  cfg.Level,
		},
		Filter: engine.DefenderFilter{
			IncludeLegendary:  cfg.IncludeLegendary,
			IncludeMythical:   cfg.IncludeMythical,
			IncludeMega:       cfg.IncludeMega,
			IncludeUltraBeast: cfg.IncludeUltraBeast,
		},
		Workers: cfg.Workers,
	}
}

// queryType is the stored name of a query; "all" for the every-boss query.
func queryType(t typing.Type) string {
	if t == typing.None {
		return "all"
	}
	return t.String()
}

func toRun(query string, sort engine.SortMetric, digest string, level int, entries []engine.Entry) *storage.Run {
	run := &storage.Run{
		ID:             uuid.New(),
		QueryType:      query,
		SortMetric:     sort.String(),
		SnapshotDigest: digest,
		Level:          level,
		CreatedAt:      time.Now().UTC(),
		Entries:        make([]storage.RunEntry, len(entries)),
	}
	for i, e := range entries {
		m := e.Metrics
		run.Entries[i] = storage.RunEntry{
			Rank:         i + 1,
			Attacker:     m.Name(),
			TemplateID:   m.Base().TemplateID,
			Shadow:       m.Shadow(),
			FastMove:     m.FastMove().Move.Name,
			ChargedMove:  m.ChargedMove().Move.Name,
			EliteFast:    m.EliteFast(),
			EliteCharged: m.EliteCharged(),
			Score:        e.Score,
			DPS:          m.DPS(),
			TDO:          m.TDO(),
			ER:           m.ER(),
		}
	}
	return run
}

func persist(ctx context.Context, cfg config.DatabaseConfig, run *storage.Run, logger *zap.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	saved, err := postgres.NewRunRepository(pool.DB()).Save(ctx, run)
	if err != nil {
		return err
	}
	logger.Info("run stored",
		zap.String("id", saved.ID.String()),
		zap.String("type", saved.QueryType),
		zap.Int("entries", len(saved.Entries)),
	)
	return nil
}

func printLatest(ctx context.Context, cfg config.DatabaseConfig, query string, limit int, logger *zap.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	run, err := postgres.NewRunRepository(pool.DB()).Latest(ctx, query)
	if err != nil {
		return err
	}
	return printRun(run, limit, logger)
}

func printRun(run *storage.Run, limit int, logger *zap.Logger) error {
	logger.Info("stored run",
		zap.String("id", run.ID.String()),
		zap.String("type", run.QueryType),
		zap.Time("created_at", run.CreatedAt),
		zap.String("snapshot", run.SnapshotDigest),
	)
	return report.RenderRows(os.Stdout, run.SortMetric, storedRows(run, limit))
}

func storedRows(run *storage.Run, limit int) []report.Row {
	entries := run.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	rows := make([]report.Row, len(entries))
	for i, e := range entries {
		rows[i] = report.Row{
			Rank:    e.Rank,
			Name:    report.Title(e.Attacker),
			Fast:    report.MoveLabel(e.FastMove, e.EliteFast),
			Charged: report.MoveLabel(e.ChargedMove, e.EliteCharged),
			Score:   e.Score,
		}
	}
	return rows
}
