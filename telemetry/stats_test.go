package telemetry

import (
	"math"
	"testing"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector("run-1", 100)

	if c.ShouldFlush(99) {
		t.Error("ShouldFlush true before the window ended")
	}
	if !c.ShouldFlush(100) {
		t.Error("ShouldFlush false at window end")
	}

	for i := 0; i < 100; i++ {
		c.RecordTick(10)
	}
	c.RecordSync()
	c.RecordSync()
	c.RecordTrade()
	c.RecordSpawn()
	c.RecordDropped(2)
	c.RecordReset()

	state := PanelState{
		Panel:     2,
		Title:     "50% tri / 50% oct",
		Counts:    [6]int{4, 0, 0, 0, 0, 6},
		Entropy:   0.38,
		Alignment: 0.2,
	}
	stats := c.Flush(100, state)

	if stats.RunID != "run-1" || stats.Panel != 2 || stats.WindowEndTick != 100 {
		t.Errorf("identity fields = %q/%d/%d", stats.RunID, stats.Panel, stats.WindowEndTick)
	}
	if stats.Agents != 10 || stats.Sides3 != 4 || stats.Sides8 != 6 {
		t.Errorf("counts = %d agents, %d tri, %d oct", stats.Agents, stats.Sides3, stats.Sides8)
	}
	if math.Abs(stats.MeanSides-6) > 1e-12 {
		t.Errorf("MeanSides = %v, want 6", stats.MeanSides)
	}
	if stats.Syncs != 2 || stats.Trades != 1 || stats.Spawns != 1 || stats.Dropped != 2 || stats.Resets != 1 {
		t.Errorf("event counters = %+v", stats)
	}
	// 3 clashes * 2 agents / 1000 agent-ticks
	if math.Abs(stats.ClashRate-0.006) > 1e-12 {
		t.Errorf("ClashRate = %v, want 0.006", stats.ClashRate)
	}

	// Counters reset and the next window starts at the flush tick.
	next := c.Flush(150, state)
	if next.Syncs != 0 || next.ClashRate != 0 || next.WindowStartTick != 100 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.ShouldFlush(199) || !c.ShouldFlush(250) {
		t.Error("window not restarted at the last flush")
	}
}

func TestPanelStateEmpty(t *testing.T) {
	var s PanelState
	if s.Agents() != 0 || s.MeanSides() != 0 {
		t.Error("empty state should report zero agents and zero mean sides")
	}
}
