// Package main provides the refresh binary that downloads the latest game master
// snapshot and installs it atomically.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidrank/internal/config"
	"github.com/cory-johannsen/raidrank/internal/gamemaster"
	"github.com/cory-johannsen/raidrank/internal/lifecycle"
	"github.com/cory-johannsen/raidrank/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	url := flag.String("url", "", "snapshot URL; overrides dataset.source_url")
	dest := flag.String("dest", "", "install path; overrides dataset.gamemaster_path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("refresh", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	source := cfg.Dataset.SourceURL
	if *url != "" {
		source = *url
	}
	target := cfg.Dataset.GameMasterPath
	if *dest != "" {
		target = *dest
	}
	if source == "" {
		logger.Fatal("no snapshot source configured")
	}

	sigCtx, stop := lifecycle.WithSignals(context.Background(), logger)
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, cfg.Refresh.Timeout)
	defer cancel()

	client := &http.Client{Timeout: cfg.Refresh.Timeout}
	res, err := gamemaster.NewFetcher(client, source, target, logger).Fetch(ctx)
	if err != nil {
		logger.Fatal("refreshing snapshot", zap.String("url", source), zap.Error(err))
	}

	observability.LogElapsed(logger, "snapshot refreshed", start,
		zap.String("path", res.Path),
		zap.String("digest", res.Digest),
		zap.Int("records", res.Records),
		zap.Int("bytes", res.Bytes),
	)
}
