package systems

import "gonum.org/v1/gonum/spatial/r3"

// ClashDetector finds colliding pairs with a full pairwise scan.
//
// The scan is O(n^2) per tick. That is fine for the ~30 agents a panel holds
// but it is the scaling limit of a panel. A spatial index cannot simply
// replace it: each resolved pair moves both agents and starts their cooldowns
// before later pairs are tested, so pairs must be visited in nested
// ascending-index order against live positions.
type ClashDetector struct {
	Radius float64
}

// Scan visits every pair (i, j), i < j, in roster order. A pair is handed to
// resolve when neither agent is cooling down and they are closer than Radius.
// Returns the number of pairs resolved.
func (d ClashDetector) Scan(roster []AgentRef, resolve func(a, b AgentRef)) int {
	clashes := 0
	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			a, b := roster[i], roster[j]
			if a.Agent.Cooldown > 0 || b.Agent.Cooldown > 0 {
				continue
			}
			if r3.Norm(r3.Sub(a.Pos.Vec(), b.Pos.Vec())) >= d.Radius {
				continue
			}
			resolve(a, b)
			clashes++
		}
	}
	return clashes
}
