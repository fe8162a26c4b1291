package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkMonoculture     BookmarkType = "monoculture"
	BookmarkEntropyCollapse BookmarkType = "entropy_collapse"
	BookmarkFlocking        BookmarkType = "flocking"
	BookmarkClashSurge      BookmarkType = "clash_surge"
	BookmarkStableMix       BookmarkType = "stable_mix"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Panel       int          `csv:"panel"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"panel", b.Panel,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in one panel's stats stream.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []PanelStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentEntropyPeak  float64
	monoculture        bool // inside a monoculture episode
	flocking           bool // inside a flocking episode
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable mix detection
	}
	return &BookmarkDetector{
		history:     make([]PanelStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats PanelStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkMonoculture(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFlocking(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkEntropyCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkClashSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	// Checked after the history update so the current window counts.
	if b := bd.checkStableMix(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Entropy > bd.recentEntropyPeak {
		bd.recentEntropyPeak = stats.Entropy
	}

	return bookmarks
}

// Reset forgets all history, e.g. after the panel is reset.
func (bd *BookmarkDetector) Reset() {
	bd.historyIdx = 0
	bd.historyFull = false
	bd.recentEntropyPeak = 0
	bd.monoculture = false
	bd.flocking = false
	bd.stableWindowsCount = 0
}

func (bd *BookmarkDetector) addToHistory(stats PanelStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (bd *BookmarkDetector) getHistory() []PanelStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]PanelStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkMonoculture(stats PanelStats) *Bookmark {
	if stats.Agents == 0 || stats.Entropy > 0 {
		bd.monoculture = false
		return nil
	}
	if bd.monoculture {
		return nil
	}
	bd.monoculture = true
	return &Bookmark{
		Type:        BookmarkMonoculture,
		Tick:        stats.WindowEndTick,
		Panel:       stats.Panel,
		Description: fmt.Sprintf("All %d agents share one side count (mean %.0f)", stats.Agents, stats.MeanSides),
	}
}

func (bd *BookmarkDetector) checkFlocking(stats PanelStats) *Bookmark {
	if stats.Alignment < 0.9 {
		bd.flocking = false
		return nil
	}
	if bd.flocking {
		return nil
	}
	bd.flocking = true
	return &Bookmark{
		Type:        BookmarkFlocking,
		Tick:        stats.WindowEndTick,
		Panel:       stats.Panel,
		Description: fmt.Sprintf("Alignment reached %.2f", stats.Alignment),
	}
}

func (bd *BookmarkDetector) checkEntropyCollapse(stats PanelStats) *Bookmark {
	if bd.recentEntropyPeak < 0.3 {
		return nil
	}

	drop := 1.0 - stats.Entropy/bd.recentEntropyPeak
	if drop > 0.5 {
		oldPeak := bd.recentEntropyPeak
		bd.recentEntropyPeak = stats.Entropy

		return &Bookmark{
			Type:        BookmarkEntropyCollapse,
			Tick:        stats.WindowEndTick,
			Panel:       stats.Panel,
			Description: fmt.Sprintf("Side entropy fell %.0f%% from peak %.2f to %.2f", drop*100, oldPeak, stats.Entropy),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkClashSurge(stats PanelStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.ClashRate
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.ClashRate > avg*2.0 && stats.Syncs+stats.Trades >= 10 {
		return &Bookmark{
			Type:        BookmarkClashSurge,
			Tick:        stats.WindowEndTick,
			Panel:       stats.Panel,
			Description: fmt.Sprintf("Clash rate %.4f is %.1fx average (%.4f)", stats.ClashRate, stats.ClashRate/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableMix(stats PanelStats) *Bookmark {
	history := bd.getHistory()
	if stats.Entropy < 0.5 || len(history) < 4 {
		bd.stableWindowsCount = 0
		return nil
	}

	recent := history[len(history)-4:]
	entropies := make([]float64, len(recent))
	for i, h := range recent {
		entropies[i] = h.Entropy
	}
	_, variance := stat.PopMeanVariance(entropies, nil)

	if variance < 0.0025 { // std dev below 0.05
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableMix,
			Tick:        stats.WindowEndTick,
			Panel:       stats.Panel,
			Description: fmt.Sprintf("Mixed population holding entropy %.2f over 5+ windows", stats.Entropy),
		}
	}

	return nil
}
