package game

import (
	"testing"

	"github.com/pthm-cable/clash/config"
)

func TestPanelRect(t *testing.T) {
	l := config.Default().Layout

	tests := []struct {
		index int
		want  Rect
	}{
		{0, Rect{X: 16, Y: 16, W: 260, H: 260}},
		{2, Rect{X: 568, Y: 16, W: 260, H: 260}},
		{4, Rect{X: 292, Y: 377, W: 260, H: 260}},
	}

	for _, tt := range tests {
		if got := PanelRect(l, tt.index); got != tt.want {
			t.Errorf("PanelRect(%d) = %+v, want %+v", tt.index, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 16, Y: 16, W: 260, H: 260}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 100, 100, true},
		{"top-left corner", 16, 16, true},
		{"bottom-right corner", 276, 276, true},
		{"left padding", 15.9, 100, false},
		{"label area", 100, 300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	lx, ly := r.ToLocal(26, 36)
	if lx != 10 || ly != 20 {
		t.Errorf("ToLocal = (%v, %v), want (10, 20)", lx, ly)
	}
}
