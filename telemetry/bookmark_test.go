package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Monoculture(t *testing.T) {
	bd := NewBookmarkDetector(10)

	mono := PanelStats{WindowEndTick: 600, Agents: 30, Entropy: 0, MeanSides: 4}
	if !hasBookmark(bd.Check(mono), BookmarkMonoculture) {
		t.Fatal("expected monoculture bookmark")
	}

	// Same episode does not trigger again.
	mono.WindowEndTick = 1200
	if hasBookmark(bd.Check(mono), BookmarkMonoculture) {
		t.Error("monoculture bookmark repeated within one episode")
	}

	bd.Check(PanelStats{WindowEndTick: 1800, Agents: 30, Entropy: 0.2})
	mono.WindowEndTick = 2400
	if !hasBookmark(bd.Check(mono), BookmarkMonoculture) {
		t.Error("expected monoculture bookmark for a new episode")
	}

	// An empty panel is not a monoculture.
	bd.Reset()
	if hasBookmark(bd.Check(PanelStats{Agents: 0}), BookmarkMonoculture) {
		t.Error("empty panel reported as monoculture")
	}
}

func TestBookmarkDetector_Flocking(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(PanelStats{WindowEndTick: 600, Agents: 30, Entropy: 0.5, Alignment: 0.4})
	if !hasBookmark(bd.Check(PanelStats{WindowEndTick: 1200, Agents: 30, Entropy: 0.5, Alignment: 0.95}), BookmarkFlocking) {
		t.Fatal("expected flocking bookmark")
	}
	if hasBookmark(bd.Check(PanelStats{WindowEndTick: 1800, Agents: 30, Entropy: 0.5, Alignment: 0.97}), BookmarkFlocking) {
		t.Error("flocking bookmark repeated within one episode")
	}
}

func TestBookmarkDetector_EntropyCollapse(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(PanelStats{WindowEndTick: int32(i * 600), Agents: 30, Entropy: 0.9})
	}

	bookmarks := bd.Check(PanelStats{WindowEndTick: 3000, Agents: 30, Entropy: 0.3})
	if !hasBookmark(bookmarks, BookmarkEntropyCollapse) {
		t.Error("expected entropy_collapse bookmark")
	}
}

func TestBookmarkDetector_ClashSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(PanelStats{WindowEndTick: int32(i * 600), Agents: 30, Entropy: 0.6, Syncs: 3, Trades: 2, ClashRate: 0.01})
	}

	bookmarks := bd.Check(PanelStats{WindowEndTick: 3000, Agents: 30, Entropy: 0.6, Syncs: 12, Trades: 8, ClashRate: 0.05})
	if !hasBookmark(bookmarks, BookmarkClashSurge) {
		t.Error("expected clash_surge bookmark")
	}
}

func TestBookmarkDetector_StableMix(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := -1
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(PanelStats{WindowEndTick: int32(i * 600), Agents: 30, Entropy: 0.8})
		if hasBookmark(bookmarks, BookmarkStableMix) {
			if triggered >= 0 {
				t.Fatalf("stable_mix triggered twice (windows %d and %d)", triggered, i)
			}
			triggered = i
		}
	}

	// Four windows fill the variance sample, then five stable checks are needed.
	if triggered != 7 {
		t.Errorf("stable_mix triggered at window %d, want 7", triggered)
	}
}
