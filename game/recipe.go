package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/clash/components"
	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/systems"
)

// ErrUnknownRecipe is returned for a recipe kind the builder does not know.
var ErrUnknownRecipe = errors.New("unknown recipe kind")

// TwoKind returns round(n*tri) triangles followed by octagons for the rest.
func TwoKind(n int, tri float64) []int {
	triCount := int(math.Round(float64(n) * tri))
	if triCount > n {
		triCount = n
	}
	out := make([]int, 0, n)
	for i := 0; i < triCount; i++ {
		out = append(out, components.MinSides)
	}
	for i := triCount; i < n; i++ {
		out = append(out, components.MaxSides)
	}
	return out
}

// AllEqual returns n/6 agents of every side count, then the remainder as
// random side counts.
func AllEqual(n int, rng systems.Random) []int {
	base := n / components.NumSideBuckets
	out := make([]int, 0, n)
	for s := components.MinSides; s <= components.MaxSides; s++ {
		for i := 0; i < base; i++ {
			out = append(out, s)
		}
	}
	for len(out) < n {
		out = append(out, components.MinSides+rng.Intn(components.NumSideBuckets))
	}
	return out
}

// BuildRecipe expands a recipe config into the multiset of initial side counts.
// The result is built once per panel and replayed on every reset.
func BuildRecipe(rc config.RecipeConfig, rng systems.Random) ([]int, error) {
	switch rc.Kind {
	case config.RecipeTwoKind:
		return TwoKind(rc.Count, rc.Tri), nil
	case config.RecipeAllEqual:
		return AllEqual(rc.Count, rng), nil
	case config.RecipeExplicit:
		out := make([]int, len(rc.Sides))
		for i, s := range rc.Sides {
			out[i] = components.ClampSides(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("recipe %q: %w", rc.Kind, ErrUnknownRecipe)
	}
}
