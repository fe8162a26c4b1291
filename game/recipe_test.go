package game

import (
	"errors"
	"testing"

	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/systems"
)

func countSides(recipe []int) map[int]int {
	m := make(map[int]int)
	for _, s := range recipe {
		m[s]++
	}
	return m
}

func TestTwoKind(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		tri           float64
		wantTri, want int
	}{
		{"all triangles", 30, 1.0, 30, 0},
		{"quarter triangles rounds up", 30, 0.25, 8, 22},
		{"half", 30, 0.5, 15, 15},
		{"three quarters rounds half away", 30, 0.75, 23, 7},
		{"all octagons", 30, 0, 0, 30},
		{"empty", 0, 0.5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TwoKind(tt.n, tt.tri)
			if len(got) != tt.n {
				t.Fatalf("len = %d, want %d", len(got), tt.n)
			}
			c := countSides(got)
			if c[3] != tt.wantTri || c[8] != tt.want {
				t.Errorf("counts = %v, want %d tri and %d oct", c, tt.wantTri, tt.want)
			}
		})
	}
}

func TestAllEqual(t *testing.T) {
	rng := systems.NewRandSource(1)

	c := countSides(AllEqual(30, rng))
	for s := 3; s <= 8; s++ {
		if c[s] != 5 {
			t.Errorf("sides %d: %d agents, want 5", s, c[s])
		}
	}

	// 8 = one of each plus two random picks.
	got := AllEqual(8, rng)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	c = countSides(got)
	for s := 3; s <= 8; s++ {
		if c[s] < 1 {
			t.Errorf("sides %d missing from %v", s, got)
		}
	}
	for _, s := range got {
		if s < 3 || s > 8 {
			t.Errorf("side count %d out of range", s)
		}
	}
}

func TestBuildRecipe(t *testing.T) {
	rng := systems.NewRandSource(1)

	got, err := BuildRecipe(config.RecipeConfig{Kind: config.RecipeExplicit, Sides: []int{3, 5, 9}}, rng)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 3 || got[1] != 5 || got[2] != 8 {
		t.Errorf("explicit recipe = %v, want [3 5 8]", got)
	}

	got, err = BuildRecipe(config.RecipeConfig{Kind: config.RecipeTwoKind, Count: 4, Tri: 0.5}, rng)
	if err != nil || len(got) != 4 {
		t.Errorf("two_kind recipe = %v, %v", got, err)
	}

	_, err = BuildRecipe(config.RecipeConfig{Kind: "spiral"}, rng)
	if !errors.Is(err, ErrUnknownRecipe) {
		t.Errorf("err = %v, want ErrUnknownRecipe", err)
	}
}
