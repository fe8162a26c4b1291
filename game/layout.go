package game

import "github.com/pthm-cable/clash/config"

// Rect is a panel's rectangle in global (canvas) coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether a global point lies inside the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// ToLocal converts a global point to panel-local coordinates.
func (r Rect) ToLocal(x, y float64) (float64, float64) {
	return x - r.X, y - r.Y
}

// PanelRect returns the global rectangle of the i-th panel. Panels fill the
// grid row by row; each row reserves label space under the panels.
func PanelRect(l config.LayoutConfig, i int) Rect {
	col := i % l.Columns
	row := i / l.Columns
	return Rect{
		X: l.Padding + float64(col)*(l.PanelWidth+l.Padding),
		Y: l.Padding + float64(row)*(l.PanelHeight+l.LabelHeight+l.Padding),
		W: l.PanelWidth,
		H: l.PanelHeight,
	}
}
