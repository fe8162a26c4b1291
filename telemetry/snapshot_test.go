package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RunID:   "run-7",
		RNGSeed: 42,
		Tick:    1000,
		Panels: []PanelDump{
			{
				Index:     0,
				Title:     "100% tri",
				Width:     260,
				Height:    260,
				Entropy:   0.25,
				Alignment: 0.5,
				History:   []Sample{{Tick: 999, Entropy: 0.24, Alignment: 0.5}},
				Agents: []AgentDump{
					{ID: 3, X: 10, Y: 20, VelX: 0.6, VelY: 0.8, Speed: 1, Orientation: 1.2, Sides: 4, Hue: 215, Cooldown: 3},
				},
			},
		},
		Bookmark: &Bookmark{Type: BookmarkMonoculture, Tick: 1000, Panel: 0},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000_p0_monoculture.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RunID != "run-7" || loaded.RNGSeed != 42 || loaded.Tick != 1000 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Panels) != 1 || len(loaded.Panels[0].Agents) != 1 {
		t.Fatalf("panels/agents not round-tripped: %+v", loaded.Panels)
	}
	got := loaded.Panels[0].Agents[0]
	if got != snapshot.Panels[0].Agents[0] {
		t.Errorf("agent = %+v, want %+v", got, snapshot.Panels[0].Agents[0])
	}
	if len(loaded.Panels[0].History) != 1 || loaded.Panels[0].History[0].Tick != 999 {
		t.Errorf("history not round-tripped: %+v", loaded.Panels[0].History)
	}
}

func TestLoadSnapshotRejectsOtherVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "panels": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
