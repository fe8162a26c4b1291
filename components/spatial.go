package components

import "gonum.org/v1/gonum/spatial/r3"

// Position is an agent's panel-local position. Z stays 0 in flat panels.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Set overwrites the position from a vector.
func (p *Position) Set(v r3.Vec) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Velocity is direction times the agent's fixed speed, applied once per tick.
type Velocity struct {
	X, Y, Z float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Set overwrites the velocity from a vector.
func (v *Velocity) Set(u r3.Vec) {
	v.X, v.Y, v.Z = u.X, u.Y, u.Z
}
