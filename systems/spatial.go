package systems

import "gonum.org/v1/gonum/spatial/r3"

// GridEntry is a placed point and the hue it carries.
type GridEntry struct {
	Pos r3.Vec
	Hue float64
}

// SpatialGrid buckets points on the XY plane for neighbor lookups during
// placement. Distances are plain Euclidean (Z included), not toroidal, since
// spacing is only enforced inside the panel.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]GridEntry
}

// NewSpatialGrid creates a spatial grid covering the given panel size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]GridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]GridEntry, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entry to the grid.
func (g *SpatialGrid) Insert(e GridEntry) {
	col, row := g.cell(e.Pos)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto appends every entry within radius (inclusive) of p to dst.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []GridEntry, p r3.Vec, radius float64) []GridEntry {
	g.visit(p, radius, func(e GridEntry, dist float64) bool {
		if dist <= radius {
			dst = append(dst, e)
		}
		return true
	})
	return dst
}

// AnyCloser reports whether some entry lies strictly closer than minDist to p.
func (g *SpatialGrid) AnyCloser(p r3.Vec, minDist float64) bool {
	found := false
	g.visit(p, minDist, func(_ GridEntry, dist float64) bool {
		if dist < minDist {
			found = true
			return false
		}
		return true
	})
	return found
}

// visit calls fn for entries in the cells overlapping the query circle until fn returns false.
func (g *SpatialGrid) visit(p r3.Vec, radius float64, fn func(GridEntry, float64) bool) {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cell(p)

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				if !fn(e, r3.Norm(r3.Sub(e.Pos, p))) {
					return
				}
			}
		}
	}
}

// cell returns the clamped grid coordinates of a point.
func (g *SpatialGrid) cell(p r3.Vec) (col, row int) {
	col = int(p.X / g.cellSize)
	row = int(p.Y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
