package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// CircularMeanHue averages hues (degrees) on the color circle. A naive mean
// would put the average of 350 and 10 at 180. With no hues it returns a
// uniform random hue.
func CircularMeanHue(hues []float64, rng Random) float64 {
	rad := make([]float64, len(hues))
	for i, h := range hues {
		rad[i] = h * math.Pi / 180
	}
	return meanHueRad(rad, rng)
}

func meanHueRad(rad []float64, rng Random) float64 {
	if len(rad) == 0 {
		return rng.Range(0, 360)
	}
	mean := stat.CircularMean(rad, nil)
	return WrapHue(mean * 180 / math.Pi)
}

// HueSampler collects the hues of agents around a point. It keeps its buffer
// between calls so the clash loop does not allocate.
type HueSampler struct {
	rad []float64
}

// MeanWithin returns the circular mean hue of every agent within radius of
// center (inclusive), falling back to a random hue when none qualifies.
func (s *HueSampler) MeanWithin(center r3.Vec, roster []AgentRef, radius float64, rng Random) float64 {
	s.rad = s.rad[:0]
	for _, a := range roster {
		if r3.Norm(r3.Sub(a.Pos.Vec(), center)) <= radius {
			s.rad = append(s.rad, a.Color.Hue*math.Pi/180)
		}
	}
	return meanHueRad(s.rad, rng)
}

// PickDistinctHue draws a hue at least spacing degrees away from every
// neighbor hue. After tries failed draws it settles for any random hue.
func PickDistinctHue(neighbors []float64, spacing float64, tries int, rng Random) float64 {
	for t := 0; t < tries; t++ {
		h := rng.Range(0, 360)
		ok := true
		for _, n := range neighbors {
			if HueDistance(h, n) < spacing {
				ok = false
				break
			}
		}
		if ok {
			return h
		}
	}
	return rng.Range(0, 360)
}
