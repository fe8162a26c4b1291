package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/components"
	"github.com/pthm-cable/clash/systems"
	"github.com/pthm-cable/clash/telemetry"
)

// AgentView is the read-only state a renderer needs to draw one agent.
type AgentView struct {
	ID          uint32
	Position    r3.Vec // panel-local
	Orientation float64
	Sides       int
	Hue         float64
}

// PanelSnapshot is a copy of one panel's state taken between ticks.
// It shares no memory with the panel.
type PanelSnapshot struct {
	ID        int
	Title     string
	Tick      int32
	Rect      Rect
	Bounds    systems.Bounds
	Agents    []AgentView
	Counts    [components.NumSideBuckets]int
	Entropy   float64
	Alignment float64
	History   []telemetry.Sample // oldest first; empty when metrics are disabled
	Dropped   int
}
