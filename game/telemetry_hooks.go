package game

import (
	"log/slog"

	"github.com/pthm-cable/clash/telemetry"
)

// flushTelemetry flushes any panel whose stats window ended and handles
// bookmarks. Callers hold s.mu.
func (s *Simulation) flushTelemetry() {
	var rows []telemetry.PanelStats

	for _, p := range s.panels {
		if !p.collector.ShouldFlush(s.tick) {
			continue
		}

		stats := p.collector.Flush(s.tick, p.state())
		perfStats := p.perf.Stats()
		rows = append(rows, stats)

		if s.statsCallback != nil {
			s.statsCallback(stats)
		}

		if s.logStats {
			stats.LogStats()
			perfStats.LogStats(p.index)
		}

		if err := s.output.WritePerf(perfStats, p.index, s.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}

		for _, bm := range p.bookmarks.Check(stats) {
			if s.logStats {
				bm.LogBookmark()
			}
			if err := s.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			if s.snapshotDir != "" {
				s.saveSnapshot(&bm)
			}
		}
	}

	if err := s.output.WriteStats(rows...); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
}

// saveSnapshot writes a JSON snapshot tagged with a bookmark.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.dump(bookmark), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick, "panel", bookmark.Panel)
}
