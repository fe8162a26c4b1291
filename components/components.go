// Package components defines ECS components for the simulation.
package components

// Side-count bounds. Rules clamp into this range, never wrap.
const (
	MinSides = 3
	MaxSides = 8

	// NumSideBuckets is the size of a side-count histogram indexed by sides-MinSides.
	NumSideBuckets = MaxSides - MinSides + 1
)

// Agent bundles identity, the fixed speed and the clash cooldown.
type Agent struct {
	ID       uint32
	Speed    float64 // set once at creation, never changed
	Cooldown int     // ticks until the agent may clash again
}

// Shape holds the polygon side count and its visual orientation.
// Orientation only decides which edge is adjacent to an impact.
type Shape struct {
	Sides       int
	Orientation float64 // radians
}

// Color holds the agent hue in degrees, [0, 360).
type Color struct {
	Hue float64
}

// ClampSides clamps a side count to [MinSides, MaxSides].
func ClampSides(s int) int {
	if s < MinSides {
		return MinSides
	}
	if s > MaxSides {
		return MaxSides
	}
	return s
}

// SideBucket returns the histogram index for a side count.
func SideBucket(s int) int {
	return ClampSides(s) - MinSides
}
