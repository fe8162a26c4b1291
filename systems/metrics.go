package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/clash/components"
)

// maxSideEntropy is ln(6), the entropy of an even split over all side counts.
var maxSideEntropy = math.Log(components.NumSideBuckets)

// SideHistogram counts agents per side count, indexed by sides-3.
func SideHistogram(roster []AgentRef) [components.NumSideBuckets]int {
	var counts [components.NumSideBuckets]int
	for _, a := range roster {
		counts[components.SideBucket(a.Shape.Sides)]++
	}
	return counts
}

// SideEntropy returns the Shannon entropy of a side histogram normalized to
// [0, 1]: 0 when every agent has the same side count, 1 for an even split.
func SideEntropy(counts [components.NumSideBuckets]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	var p [components.NumSideBuckets]float64
	for i, c := range counts {
		p[i] = float64(c) / float64(total)
	}
	h := stat.Entropy(p[:]) / maxSideEntropy
	return clampFloat(h, 0, 1)
}

// Alignment returns the length of the mean heading: 1 when every agent moves
// the same way, 0 when headings cancel out. Empty rosters have alignment 0.
func Alignment(roster []AgentRef) float64 {
	if len(roster) == 0 {
		return 0
	}
	var sum r3.Vec
	for _, a := range roster {
		sum = r3.Add(sum, a.Heading())
	}
	mean := r3.Scale(1/float64(len(roster)), sum)
	return clampFloat(r3.Norm(mean), 0, 1)
}
