package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/clash/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Methods are nil-safe.
	if err := om.WriteStats(PanelStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteStats(
		PanelStats{RunID: "r", WindowEndTick: 600, Panel: 0, Title: "a", Agents: 30, Entropy: 0.5},
		PanelStats{RunID: "r", WindowEndTick: 600, Panel: 1, Title: "b", Agents: 28, Entropy: 0.7},
	); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteStats(PanelStats{RunID: "r", WindowEndTick: 1200, Panel: 0, Title: "a", Agents: 30}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkFlocking, Tick: 600, Panel: 1}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "run_id"); n != 1 {
		t.Errorf("header written %d times, want once", n)
	}

	var rows []PanelStats
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("reading stats.csv back: %v", err)
	}
	if len(rows) != 3 || rows[1].Panel != 1 || rows[2].WindowEndTick != 1200 {
		t.Errorf("rows = %+v", rows)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
