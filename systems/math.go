package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the magnitude below which a vector has no usable direction.
const Epsilon = 1e-6

const twoPi = 2 * math.Pi

// SafeNormalize returns v scaled to unit length. A vector shorter than Epsilon
// is replaced by a random unit vector (3D when volume is set) and usedFallback
// is true. The result never contains NaN.
func SafeNormalize(v r3.Vec, rng Random, volume bool) (dir r3.Vec, usedFallback bool) {
	if r3.Norm(v) < Epsilon {
		return UnitVector(rng, volume), true
	}
	return r3.Unit(v), false
}

// unitOrZero normalizes v, or returns the zero vector when it has no direction.
func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm(v) < Epsilon {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

// normalizeHeading wraps an angle to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	if h >= twoPi {
		h = 0
	}
	return h
}

// WrapHue wraps a hue in degrees to [0, 360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// h+360 can round up to exactly 360 for tiny negative inputs.
	if h >= 360 {
		h = 0
	}
	return h
}

// HueDistance returns the shortest distance between two hues on the color circle.
func HueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

// wrapAxis applies the toroidal rule on one axis: leaving below 0 reappears at
// the far edge, leaving past the extent reappears at 0.
func wrapAxis(v, extent float64) float64 {
	if v < 0 {
		return extent
	}
	if v > extent {
		return 0
	}
	return v
}

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
