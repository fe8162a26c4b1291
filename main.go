package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Panel worker goroutines (0 = GOMAXPROCS)")
	runID := flag.String("run-id", "", "Run identifier for logs and CSV rows (empty = random)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	sim, err := game.New(cfg, game.Options{
		Seed:        rngSeed,
		RunID:       *runID,
		Workers:     *workers,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", *maxTicks,
	)

	// Interrupt stops an unlimited run cleanly so output files are flushed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	for *maxTicks <= 0 || int(sim.Tick()) < *maxTicks {
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", sim.Tick())
			break
		}
		sim.Step()
	}
	slog.Info("simulation stopped", "tick", sim.Tick(), "elapsed", time.Since(start).String())

	for _, snap := range sim.Snapshot() {
		slog.Info("final panel",
			"panel", snap.ID,
			"title", snap.Title,
			"agents", len(snap.Agents),
			"counts", snap.Counts,
			"entropy", snap.Entropy,
			"alignment", snap.Alignment,
		)
	}

	if *snapshotDir != "" {
		if path, err := sim.SaveSnapshot(*snapshotDir); err != nil {
			slog.Error("failed to save final snapshot", "error", err)
		} else {
			slog.Info("final snapshot saved", "path", path)
		}
	}

	if err := sim.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
