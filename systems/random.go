package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Random supplies the randomness the rules need. Implementations need not be
// safe for concurrent use; each panel owns its own source.
type Random interface {
	Float64() float64             // uniform in [0, 1)
	Range(lo, hi float64) float64 // uniform in [lo, hi)
	UnitVector2D() r3.Vec         // uniform direction in the XY plane, Z = 0
	UnitVector3D() r3.Vec         // uniform direction on the sphere
	Intn(n int) int               // uniform in [0, n)
	Shuffle(n int, swap func(i, j int))
}

// RandSource is the math/rand backed Random.
type RandSource struct {
	r *rand.Rand
}

// NewRandSource creates a source seeded with seed.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{r: rand.New(rand.NewSource(seed))}
}

func (s *RandSource) Float64() float64 { return s.r.Float64() }

func (s *RandSource) Range(lo, hi float64) float64 { return lo + s.r.Float64()*(hi-lo) }

func (s *RandSource) Intn(n int) int { return s.r.Intn(n) }

func (s *RandSource) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }

func (s *RandSource) UnitVector2D() r3.Vec {
	a := s.r.Float64() * twoPi
	return r3.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

func (s *RandSource) UnitVector3D() r3.Vec {
	// Uniform z with uniform azimuth is uniform on the sphere.
	z := s.Range(-1, 1)
	a := s.r.Float64() * twoPi
	r := math.Sqrt(1 - z*z)
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
}

// UnitVector picks the 2D or 3D unit vector depending on the panel kind.
func UnitVector(rng Random, volume bool) r3.Vec {
	if volume {
		return rng.UnitVector3D()
	}
	return rng.UnitVector2D()
}
