package telemetry

// Collector accumulates one panel's events within tick windows and produces PanelStats.
type Collector struct {
	runID               string
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	syncs      int
	trades     int
	spawns     int
	dropped    int
	resets     int
	agentTicks int // sum of roster sizes over the window's ticks
}

// NewCollector creates a stats collector that flushes every windowTicks ticks.
func NewCollector(runID string, windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		runID:               runID,
		windowDurationTicks: int32(windowTicks),
	}
}

// RecordSync records a Sync clash.
func (c *Collector) RecordSync() {
	c.syncs++
}

// RecordTrade records a Trade clash.
func (c *Collector) RecordTrade() {
	c.trades++
}

// RecordSpawn records an agent added by a spawn command.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordDropped records agents the placement step could not fit.
func (c *Collector) RecordDropped(n int) {
	c.dropped += n
}

// RecordReset records a panel reset.
func (c *Collector) RecordReset() {
	c.resets++
}

// RecordTick adds one tick's roster size for the clash rate.
func (c *Collector) RecordTick(agents int) {
	c.agentTicks += agents
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a PanelStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, state PanelState) PanelStats {
	var clashRate float64
	if c.agentTicks > 0 {
		// Each clash involves two agents.
		clashRate = float64(2*(c.syncs+c.trades)) / float64(c.agentTicks)
	}

	stats := PanelStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Panel:           state.Panel,
		Title:           state.Title,

		Agents: state.Agents(),
		Sides3: state.Counts[0],
		Sides4: state.Counts[1],
		Sides5: state.Counts[2],
		Sides6: state.Counts[3],
		Sides7: state.Counts[4],
		Sides8: state.Counts[5],

		Entropy:   state.Entropy,
		Alignment: state.Alignment,
		MeanSides: state.MeanSides(),

		Syncs:   c.syncs,
		Trades:  c.trades,
		Spawns:  c.spawns,
		Dropped: c.dropped,
		Resets:  c.resets,

		ClashRate: clashRate,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.syncs = 0
	c.trades = 0
	c.spawns = 0
	c.dropped = 0
	c.resets = 0
	c.agentTicks = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
