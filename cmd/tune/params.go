package main

import (
	"math"

	"github.com/pthm-cable/clash/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable rule constants.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "cooldown_ticks", Path: "agents.cooldown_ticks", Min: 0, Max: 60, Default: 10},
			{Name: "influence_radius", Path: "agents.influence_radius", Min: 5, Max: 60, Default: 20},
			// Separation
			{Name: "flat_factor", Path: "separation.flat.factor", Min: 0.1, Max: 1.5, Default: 0.6},
			{Name: "flat_offset", Path: "separation.flat.offset", Min: 0, Max: 3, Default: 0.5},
			{Name: "volume_factor", Path: "separation.volume.factor", Min: 0.1, Max: 1.5, Default: 0.8},
			{Name: "volume_offset", Path: "separation.volume.offset", Min: 0, Max: 3, Default: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Max(spec.Min, math.Min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Agents.CooldownTicks = int(math.Round(clamped[0]))
	cfg.Agents.InfluenceRadius = clamped[1]
	cfg.Separation.Flat.Factor = clamped[2]
	cfg.Separation.Flat.Offset = clamped[3]
	cfg.Separation.Volume.Factor = clamped[4]
	cfg.Separation.Volume.Offset = clamped[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		float64(cfg.Agents.CooldownTicks),
		cfg.Agents.InfluenceRadius,
		cfg.Separation.Flat.Factor,
		cfg.Separation.Flat.Offset,
		cfg.Separation.Volume.Factor,
		cfg.Separation.Volume.Offset,
	}
}
