package game

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/telemetry"
)

func newTestSimulation(t *testing.T, cfg *config.Config, opts Options) *Simulation {
	t.Helper()
	if opts.RunID == "" {
		opts.RunID = "test-run"
	}
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSimulationDeterministicAcrossWorkers(t *testing.T) {
	serial := newTestSimulation(t, config.Default(), Options{Seed: 7, Workers: 1})
	parallel := newTestSimulation(t, config.Default(), Options{Seed: 7, Workers: 4})

	for i := 0; i < 300; i++ {
		serial.Step()
		parallel.Step()
	}

	if !reflect.DeepEqual(serial.Snapshot(), parallel.Snapshot()) {
		t.Error("parallel stepping changed the outcome")
	}
	if serial.Tick() != 300 {
		t.Errorf("Tick = %d, want 300", serial.Tick())
	}
}

func TestSimulationSeedsDiffer(t *testing.T) {
	a := newTestSimulation(t, config.Default(), Options{Seed: 1, Workers: 1})
	b := newTestSimulation(t, config.Default(), Options{Seed: 2, Workers: 1})

	if reflect.DeepEqual(a.Snapshot()[2].Agents, b.Snapshot()[2].Agents) {
		t.Error("different seeds produced identical placements")
	}
}

func TestSimulationSpawnAt(t *testing.T) {
	s := newTestSimulation(t, config.Default(), Options{Seed: 3})

	// Inside panel 4 (second row, middle column).
	if err := s.SpawnAt(300, 400); err != nil {
		t.Fatalf("SpawnAt: %v", err)
	}
	// Padding between panels and the label strip belong to no panel.
	for _, pt := range [][2]float64{{5, 5}, {100, 300}, {2000, 100}} {
		if err := s.SpawnAt(pt[0], pt[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SpawnAt(%v) err = %v, want ErrOutOfBounds", pt, err)
		}
	}

	s.Step()
	snaps := s.Snapshot()
	if n := len(snaps[4].Agents); n != 31 {
		t.Fatalf("panel 4 has %d agents, want 31", n)
	}
	spawned := snaps[4].Agents[30]
	// IDs restart at zero per panel, so the first spawn follows the recipe.
	if spawned.ID != 30 {
		t.Errorf("spawned ID = %d, want 30", spawned.ID)
	}
	if spawned.Sides < 3 || spawned.Sides > 8 {
		t.Errorf("spawned sides = %d", spawned.Sides)
	}
	for i, snap := range snaps {
		if i != 4 && len(snap.Agents) != 30 {
			t.Errorf("panel %d has %d agents, want 30", i, len(snap.Agents))
		}
	}

	if p, ok := s.PanelAt(300, 400); !ok || p.Index() != 4 {
		t.Errorf("PanelAt = %v, %v; want panel 4", p, ok)
	}
}

func TestSimulationConcurrentSpawns(t *testing.T) {
	s := newTestSimulation(t, config.Default(), Options{Seed: 3, Workers: 3})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.SpawnAt(100, 100) // panel 0
			}
		}()
	}
	for i := 0; i < 20; i++ {
		s.Step()
	}
	wg.Wait()
	s.Step()

	if n := s.Panels()[0].Len(); n != 130 {
		t.Errorf("panel 0 has %d agents, want 130", n)
	}
}

func TestSimulationReset(t *testing.T) {
	s := newTestSimulation(t, config.Default(), Options{Seed: 11})

	s.SpawnAt(100, 100)
	for i := 0; i < 30; i++ {
		s.Step()
	}
	s.Reset()

	for _, snap := range s.Snapshot() {
		if len(snap.Agents) != 30 || snap.Tick != 0 {
			t.Errorf("panel %d after reset: %d agents at tick %d", snap.ID, len(snap.Agents), snap.Tick)
		}
	}
	if s.Tick() != 30 {
		t.Errorf("simulation tick = %d, reset only restarts panels", s.Tick())
	}
}

func TestSimulationStatsWindows(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 50
	outDir := filepath.Join(t.TempDir(), "out")

	var mu sync.Mutex
	var got []telemetry.PanelStats
	s := newTestSimulation(t, cfg, Options{
		Seed:      5,
		RunID:     "stats-run",
		OutputDir: outDir,
		StatsCallback: func(ps telemetry.PanelStats) {
			mu.Lock()
			got = append(got, ps)
			mu.Unlock()
		},
	})

	for i := 0; i < 100; i++ {
		s.Step()
	}

	if len(got) != 2*len(cfg.Panels) {
		t.Fatalf("got %d stats rows, want %d", len(got), 2*len(cfg.Panels))
	}
	for _, ps := range got {
		if ps.RunID != "stats-run" {
			t.Errorf("run id = %q", ps.RunID)
		}
		if ps.WindowEndTick != 50 && ps.WindowEndTick != 100 {
			t.Errorf("window end = %d", ps.WindowEndTick)
		}
		if ps.Agents != 30 {
			t.Errorf("panel %d agents = %d, want 30", ps.Panel, ps.Agents)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"stats.csv", "perf.csv", "config.yaml"} {
		if info, err := os.Stat(filepath.Join(outDir, name)); err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty: %v", name, err)
		}
	}
}

func TestSimulationSaveSnapshot(t *testing.T) {
	s := newTestSimulation(t, config.Default(), Options{Seed: 9, RunID: "snap-run"})
	for i := 0; i < 10; i++ {
		s.Step()
	}

	path, err := s.SaveSnapshot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.RunID != "snap-run" || loaded.Tick != 10 || len(loaded.Panels) != 6 {
		t.Errorf("snapshot header = %q tick %d with %d panels", loaded.RunID, loaded.Tick, len(loaded.Panels))
	}
	if n := len(loaded.Panels[0].Agents); n != 30 {
		t.Errorf("panel 0 dumped %d agents, want 30", n)
	}
}

func TestNewRejectsUnknownRecipe(t *testing.T) {
	cfg := config.Default()
	cfg.Panels[0].Recipe.Kind = "spiral"

	if _, err := New(cfg, Options{}); !errors.Is(err, ErrUnknownRecipe) {
		t.Errorf("err = %v, want ErrUnknownRecipe", err)
	}
}

func BenchmarkSimulationStep(b *testing.B) {
	for _, workers := range []int{1, 0} {
		name := "serial"
		if workers == 0 {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			s, err := New(config.Default(), Options{Seed: 1, RunID: "bench", Workers: workers})
			if err != nil {
				b.Fatal(err)
			}
			defer s.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Step()
			}
		})
	}
}
