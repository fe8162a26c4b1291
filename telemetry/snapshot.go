package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a point-in-time dump of every panel for offline analysis.
// There is no restore path: runs always start from their recipes.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`
	Tick    int32  `json:"tick"`

	Panels []PanelDump `json:"panels"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// PanelDump holds one panel's state.
type PanelDump struct {
	Index     int         `json:"index"`
	Title     string      `json:"title"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Depth     float64     `json:"depth,omitempty"`
	Entropy   float64     `json:"entropy"`
	Alignment float64     `json:"alignment"`
	History   []Sample    `json:"history,omitempty"`
	Agents    []AgentDump `json:"agents"`
}

// AgentDump holds one agent's complete state.
type AgentDump struct {
	ID uint32 `json:"id"`

	// Position and movement
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z,omitempty"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	VelZ float64 `json:"vel_z,omitempty"`

	Speed       float64 `json:"speed"`
	Orientation float64 `json:"orientation"`
	Sides       int     `json:"sides"`
	Hue         float64 `json:"hue"`
	Cooldown    int     `json:"cooldown"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_p%d_%s", snapshot.Tick, snapshot.Bookmark.Panel, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
