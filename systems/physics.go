// Package systems implements agent motion, clash detection and the clash rules.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/components"
)

// Bounds represents a panel's local extent. Depth > 0 makes it a volume.
type Bounds struct {
	Width, Height, Depth float64
}

// Volume reports whether the panel has a depth axis.
func (b Bounds) Volume() bool {
	return b.Depth > 0
}

// Contains reports whether a local point lies inside the bounds (edges included).
func (b Bounds) Contains(p r3.Vec) bool {
	if p.X < 0 || p.X > b.Width || p.Y < 0 || p.Y > b.Height {
		return false
	}
	if b.Volume() {
		return p.Z >= 0 && p.Z <= b.Depth
	}
	return p.Z == 0
}

// Clamp pulls a local point inside the bounds. Flat panels force Z to 0.
func (b Bounds) Clamp(p r3.Vec) r3.Vec {
	p.X = clampFloat(p.X, 0, b.Width)
	p.Y = clampFloat(p.Y, 0, b.Height)
	if b.Volume() {
		p.Z = clampFloat(p.Z, 0, b.Depth)
	} else {
		p.Z = 0
	}
	return p
}

// Sample returns a uniform random point inside the bounds.
func (b Bounds) Sample(rng Random) r3.Vec {
	p := r3.Vec{X: rng.Range(0, b.Width), Y: rng.Range(0, b.Height)}
	if b.Volume() {
		p.Z = rng.Range(0, b.Depth)
	}
	return p
}

// AgentRef gives access to one agent's components for the duration of a tick.
type AgentRef struct {
	Pos   *components.Position
	Vel   *components.Velocity
	Agent *components.Agent
	Shape *components.Shape
	Color *components.Color
}

// Advance moves the agent one tick: spin, move, wrap, cool down.
// Speed is never touched.
func (a AgentRef) Advance(bounds Bounds, spinRate float64) {
	a.Shape.Orientation += spinRate * float64(a.Shape.Sides)

	a.Pos.X = wrapAxis(a.Pos.X+a.Vel.X, bounds.Width)
	a.Pos.Y = wrapAxis(a.Pos.Y+a.Vel.Y, bounds.Height)
	if bounds.Volume() {
		a.Pos.Z = wrapAxis(a.Pos.Z+a.Vel.Z, bounds.Depth)
	}

	if a.Agent.Cooldown > 0 {
		a.Agent.Cooldown--
	}
}

// SetHeading points the agent along dir, keeping its speed.
func (a AgentRef) SetHeading(dir r3.Vec, rng Random, volume bool) {
	d, _ := SafeNormalize(dir, rng, volume)
	a.Vel.Set(r3.Scale(a.Agent.Speed, d))
}

// Heading returns the unit direction of travel (zero if the agent is at rest).
func (a AgentRef) Heading() r3.Vec {
	return unitOrZero(a.Vel.Vec())
}

// RedirectAlongAdjacentEdge turns the agent to slide along the polygon edge
// next to the one facing the impact. impactAngle is the world angle from this
// agent towards the other one.
//
// The polygon is split into Sides sectors starting at Orientation. The impact
// falls in sector k; the agent moves tangentially to the outward normal of
// sector k+1. In a volume the current vertical heading is kept.
func (a AgentRef) RedirectAlongAdjacentEdge(impactAngle float64, rng Random, volume bool) {
	n := components.ClampSides(a.Shape.Sides)
	sector := twoPi / float64(n)

	local := normalizeHeading(impactAngle - a.Shape.Orientation)
	hit := int(math.Floor(local / sector))
	if hit >= n {
		hit = n - 1
	}
	adjacent := (hit + 1) % n

	edgeRadial := a.Shape.Orientation + (float64(adjacent)+0.5)*sector
	move := edgeRadial + math.Pi/2
	dir := r3.Vec{X: math.Cos(move), Y: math.Sin(move)}

	if volume {
		cur, _ := SafeNormalize(a.Vel.Vec(), rng, true)
		dir.Z = cur.Z
	}
	a.SetHeading(dir, rng, volume)
}
