package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCircularMeanHue(t *testing.T) {
	rng := NewRandSource(1)
	tests := []struct {
		name string
		hues []float64
		want float64
	}{
		{"single", []float64{123}, 123},
		{"across zero", []float64{350, 10}, 0},
		{"across zero uneven", []float64{340, 350, 0}, 350},
		{"plain", []float64{90, 180}, 135},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CircularMeanHue(tt.hues, rng)
			if got < 0 || got >= 360 {
				t.Fatalf("hue %v out of [0, 360)", got)
			}
			if HueDistance(got, tt.want) > 1e-9 {
				t.Errorf("CircularMeanHue(%v) = %v, want %v", tt.hues, got, tt.want)
			}
		})
	}
}

func TestCircularMeanHueNoNeighbors(t *testing.T) {
	rng := NewRandSource(3)
	for i := 0; i < 100; i++ {
		got := CircularMeanHue(nil, rng)
		if got < 0 || got >= 360 || math.IsNaN(got) {
			t.Fatalf("fallback hue %v out of [0, 360)", got)
		}
	}

	var s HueSampler
	far := []AgentRef{newTestAgent(500, 500, 3, 42, 1, r3.Vec{X: 1})}
	got := s.MeanWithin(r3.Vec{}, far, 20, rng)
	if got < 0 || got >= 360 {
		t.Errorf("sampler fallback hue %v out of [0, 360)", got)
	}
}

func TestHueSamplerRadiusInclusive(t *testing.T) {
	rng := NewRandSource(3)
	var s HueSampler
	roster := []AgentRef{
		newTestAgent(20, 0, 3, 60, 1, r3.Vec{X: 1}),
		newTestAgent(20.01, 0, 3, 300, 1, r3.Vec{X: 1}),
	}
	got := s.MeanWithin(r3.Vec{}, roster[:1], 20, rng)
	if HueDistance(got, 60) > 1e-9 {
		t.Errorf("hue = %v, want 60", got)
	}
	got = s.MeanWithin(r3.Vec{}, roster, 20, rng)
	if HueDistance(got, 60) > 1e-9 {
		t.Errorf("hue = %v, want 60 (second agent is outside the radius)", got)
	}
}

func TestPickDistinctHue(t *testing.T) {
	rng := NewRandSource(9)
	neighbors := []float64{0, 45, 90, 135, 180, 225, 270, 315}
	for i := 0; i < 50; i++ {
		h := PickDistinctHue(neighbors, 8, 500, rng)
		for _, n := range neighbors {
			if HueDistance(h, n) < 8 {
				t.Fatalf("hue %v within 8 degrees of neighbor %v", h, n)
			}
		}
	}

	// Impossible spacing still yields a valid hue.
	h := PickDistinctHue([]float64{0}, 200, 10, rng)
	if h < 0 || h >= 360 {
		t.Errorf("hue %v out of [0, 360)", h)
	}
}
