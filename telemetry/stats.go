package telemetry

import "log/slog"

// PanelStats holds aggregated statistics for one panel over a time window.
type PanelStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick int32  `csv:"-"`
	WindowEndTick   int32  `csv:"window_end"`
	Panel           int    `csv:"panel"`
	Title           string `csv:"title"`

	// Population at window end
	Agents int `csv:"agents"`
	Sides3 int `csv:"sides3"`
	Sides4 int `csv:"sides4"`
	Sides5 int `csv:"sides5"`
	Sides6 int `csv:"sides6"`
	Sides7 int `csv:"sides7"`
	Sides8 int `csv:"sides8"`

	// Sampled at window end
	Entropy   float64 `csv:"entropy"`
	Alignment float64 `csv:"alignment"`
	MeanSides float64 `csv:"mean_sides"`

	// Events during window
	Syncs   int `csv:"syncs"`
	Trades  int `csv:"trades"`
	Spawns  int `csv:"spawns"`
	Dropped int `csv:"dropped"`
	Resets  int `csv:"resets"`

	// Clashes per agent per tick
	ClashRate float64 `csv:"clash_rate"`
}

// PanelState is the end-of-window sample the caller supplies to Flush.
type PanelState struct {
	Panel     int
	Title     string
	Counts    [6]int // indexed by sides-3
	Entropy   float64
	Alignment float64
}

// Agents returns the total agent count.
func (s PanelState) Agents() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// MeanSides returns the average side count, or 0 for an empty panel.
func (s PanelState) MeanSides() float64 {
	n := s.Agents()
	if n == 0 {
		return 0
	}
	sum := 0
	for i, c := range s.Counts {
		sum += (i + 3) * c
	}
	return float64(sum) / float64(n)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PanelStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("panel", s.Panel),
		slog.String("title", s.Title),
		slog.Int("agents", s.Agents),
		slog.Any("sides", []int{s.Sides3, s.Sides4, s.Sides5, s.Sides6, s.Sides7, s.Sides8}),
		slog.Float64("entropy", s.Entropy),
		slog.Float64("alignment", s.Alignment),
		slog.Float64("mean_sides", s.MeanSides),
		slog.Int("syncs", s.Syncs),
		slog.Int("trades", s.Trades),
		slog.Int("spawns", s.Spawns),
		slog.Int("dropped", s.Dropped),
		slog.Int("resets", s.Resets),
		slog.Float64("clash_rate", s.ClashRate),
	)
}

// LogStats logs the window stats using slog.
func (s PanelStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"panel", s.Panel,
		"title", s.Title,
		"agents", s.Agents,
		"sides", []int{s.Sides3, s.Sides4, s.Sides5, s.Sides6, s.Sides7, s.Sides8},
		"entropy", s.Entropy,
		"alignment", s.Alignment,
		"mean_sides", s.MeanSides,
		"syncs", s.Syncs,
		"trades", s.Trades,
		"spawns", s.Spawns,
		"dropped", s.Dropped,
		"clash_rate", s.ClashRate,
	)
}
