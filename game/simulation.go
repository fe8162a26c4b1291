// Package game runs the panels of a polygon clash simulation.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/telemetry"
)

// ErrOutOfBounds is returned when a global point lies in no panel.
var ErrOutOfBounds = errors.New("point is outside every panel")

// panelSeedStride separates the RNG streams of neighboring panels.
const panelSeedStride = 7919

// Options configures a Simulation beyond the YAML config.
type Options struct {
	Seed          int64
	RunID         string // empty = new random UUID
	Workers       int    // panel workers, 0 = GOMAXPROCS
	LogStats      bool
	OutputDir     string // CSV output, empty = disabled
	SnapshotDir   string // JSON snapshots on bookmarks, empty = disabled
	StatsCallback func(telemetry.PanelStats)
}

// Simulation owns a fixed set of panels and steps them together.
//
// Step, Reset and the snapshot methods are serialized internally. SpawnAt
// only touches the target panel's spawn queue and never blocks on a step.
type Simulation struct {
	cfg    *config.Config
	panels []*Panel
	pool   *panelPool

	mu   sync.Mutex
	tick int32

	seed          int64
	runID         string
	logStats      bool
	snapshotDir   string
	statsCallback func(telemetry.PanelStats)
	output        *telemetry.OutputManager
}

// New builds every panel from cfg and places the initial populations.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	s := &Simulation{
		cfg:           cfg,
		panels:        make([]*Panel, 0, len(cfg.Panels)),
		seed:          opts.Seed,
		runID:         runID,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}

	for i := range cfg.Panels {
		p, err := NewPanel(cfg, i, opts.Seed+int64(i)*panelSeedStride, runID)
		if err != nil {
			return nil, fmt.Errorf("building panel %d: %w", i, err)
		}
		s.panels = append(s.panels, p)
	}
	s.pool = newPanelPool(s.panels, opts.Workers)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("simulation created",
		"run_id", runID,
		"seed", opts.Seed,
		"panels", len(s.panels),
		"workers", s.pool.numWorkers,
	)
	return s, nil
}

// RunID returns the run identifier stamped into logs and CSV rows.
func (s *Simulation) RunID() string { return s.runID }

// Tick returns the number of steps taken since creation.
func (s *Simulation) Tick() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Panels returns the panels in layout order.
func (s *Simulation) Panels() []*Panel { return s.panels }

// Step advances every panel one tick and flushes telemetry windows.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool.step()
	s.tick++
	s.flushTelemetry()
}

// SpawnAt queues a random agent at a global point in whichever panel
// contains it. Volume panels place the agent on their middle depth plane.
func (s *Simulation) SpawnAt(x, y float64) error {
	for _, p := range s.panels {
		if !p.rect.Contains(x, y) {
			continue
		}
		lx, ly := p.rect.ToLocal(x, y)
		p.SpawnAt(r3.Vec{X: lx, Y: ly, Z: p.bounds.Depth / 2})
		return nil
	}
	return fmt.Errorf("spawn at (%.1f, %.1f): %w", x, y, ErrOutOfBounds)
}

// PanelAt returns the panel containing a global point.
func (s *Simulation) PanelAt(x, y float64) (*Panel, bool) {
	for _, p := range s.panels {
		if p.rect.Contains(x, y) {
			return p, true
		}
	}
	return nil, false
}

// Reset replays every panel's recipe.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.panels {
		p.Reset()
	}
	slog.Info("simulation reset", "run_id", s.runID, "tick", s.tick)
}

// Snapshot copies every panel's state.
func (s *Simulation) Snapshot() []PanelSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PanelSnapshot, len(s.panels))
	for i, p := range s.panels {
		out[i] = p.Snapshot()
	}
	return out
}

// SaveSnapshot writes every panel's full state as JSON to the snapshot dir.
func (s *Simulation) SaveSnapshot(dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return telemetry.SaveSnapshot(s.dump(nil), dir)
}

// dump builds a JSON snapshot. Callers hold s.mu.
func (s *Simulation) dump(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RunID:    s.runID,
		RNGSeed:  s.seed,
		Tick:     s.tick,
		Panels:   make([]telemetry.PanelDump, len(s.panels)),
		Bookmark: bookmark,
	}
	for i, p := range s.panels {
		snap.Panels[i] = p.Dump()
	}
	return snap
}

// Close stops the workers and closes output files.
func (s *Simulation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool.stopWorkers()
	return s.output.Close()
}
