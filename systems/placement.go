package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/config"
)

// PlacementParams controls how a recipe is laid out on reset.
type PlacementParams struct {
	MinDist         float64 // reject points closer than this to a placed agent
	InfluenceRadius float64 // neighbors whose hue the new agent must avoid
	HueSpacing      float64 // degrees
	HueTries        int
	Attempts        int // per agent; the agent is dropped after this many misses
	SpeedMin        float64
	SpeedMax        float64
}

// PlacementFromConfig reads placement parameters for the initial population.
func PlacementFromConfig(cfg *config.Config) PlacementParams {
	a := cfg.Agents
	return PlacementParams{
		MinDist:         cfg.Derived.SpawnMinDist,
		InfluenceRadius: a.InfluenceRadius,
		HueSpacing:      a.HueSpacing,
		HueTries:        a.HueTries,
		Attempts:        a.PlacementAttempts,
		SpeedMin:        a.InitialSpeedMin,
		SpeedMax:        a.InitialSpeedMax,
	}
}

// Spawn describes an agent to be created.
type Spawn struct {
	Pos   r3.Vec
	Hue   float64
	Sides int
	Speed float64
}

// Placer lays out recipes without overlaps, giving neighbors distinct hues.
type Placer struct {
	params PlacementParams
	bounds Bounds
	grid   *SpatialGrid
	near   []GridEntry
	hues   []float64
}

// NewPlacer creates a placer for a panel.
func NewPlacer(bounds Bounds, params PlacementParams) *Placer {
	cell := math.Max(params.MinDist, params.InfluenceRadius)
	if cell <= 0 {
		cell = DefaultInfluenceRadius
	}
	return &Placer{
		params: params,
		bounds: bounds,
		grid:   NewSpatialGrid(bounds.Width, bounds.Height, cell),
	}
}

// Place shuffles a copy of recipe and finds a free spot for each side count.
// An agent that finds no spot within Attempts tries is dropped and counted;
// placement never loops unboundedly.
func (p *Placer) Place(recipe []int, rng Random) (spawns []Spawn, dropped int) {
	sides := make([]int, len(recipe))
	copy(sides, recipe)
	rng.Shuffle(len(sides), func(i, j int) { sides[i], sides[j] = sides[j], sides[i] })

	p.grid.Clear()
	spawns = make([]Spawn, 0, len(sides))

	for _, s := range sides {
		placed := false
		for attempt := 0; attempt < p.params.Attempts && !placed; attempt++ {
			pos := p.bounds.Sample(rng)
			if p.grid.AnyCloser(pos, p.params.MinDist) {
				continue
			}

			p.near = p.grid.QueryRadiusInto(p.near[:0], pos, p.params.InfluenceRadius)
			p.hues = p.hues[:0]
			for _, n := range p.near {
				p.hues = append(p.hues, n.Hue)
			}
			hue := PickDistinctHue(p.hues, p.params.HueSpacing, p.params.HueTries, rng)

			spawns = append(spawns, Spawn{
				Pos:   pos,
				Hue:   hue,
				Sides: s,
				Speed: rng.Range(p.params.SpeedMin, p.params.SpeedMax),
			})
			p.grid.Insert(GridEntry{Pos: pos, Hue: hue})
			placed = true
		}
		if !placed {
			dropped++
		}
	}
	return spawns, dropped
}
