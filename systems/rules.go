package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/components"
	"github.com/pthm-cable/clash/config"
)

// Default rule constants, matching config/defaults.yaml.
const (
	DefaultClashRadius     = 18.0
	DefaultInfluenceRadius = 20.0
	DefaultCooldownTicks   = 10
	DefaultSpinRate        = 0.002
)

// Rules holds the tuned constants of the clash rules.
type Rules struct {
	ClashRadius     float64
	InfluenceRadius float64
	CooldownTicks   int
	SpinRate        float64
	PushFactor      float64
	PushOffset      float64
}

// DefaultRules returns the flat-panel constants.
func DefaultRules() Rules {
	return Rules{
		ClashRadius:     DefaultClashRadius,
		InfluenceRadius: DefaultInfluenceRadius,
		CooldownTicks:   DefaultCooldownTicks,
		SpinRate:        DefaultSpinRate,
		PushFactor:      0.6,
		PushOffset:      0.5,
	}
}

// RulesFromConfig builds the rule constants for a flat or volume panel.
func RulesFromConfig(cfg *config.Config, volume bool) Rules {
	push := cfg.Push(volume)
	return Rules{
		ClashRadius:     cfg.Agents.ClashRadius,
		InfluenceRadius: cfg.Agents.InfluenceRadius,
		CooldownTicks:   cfg.Agents.CooldownTicks,
		SpinRate:        cfg.Agents.SpinRate,
		PushFactor:      push.Factor,
		PushOffset:      push.Offset,
	}
}

// Outcome says which rule a clash triggered.
type Outcome uint8

const (
	OutcomeNone  Outcome = iota
	OutcomeSync          // equal sides: shared heading and blended hue
	OutcomeTrade         // unequal sides: one side moves from the larger to the smaller
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSync:
		return "sync"
	case OutcomeTrade:
		return "trade"
	default:
		return "none"
	}
}

// RuleEngine applies the clash rules to colliding pairs of one panel.
type RuleEngine struct {
	rules  Rules
	rng    Random
	volume bool
	hues   HueSampler
}

// NewRuleEngine creates a rule engine. The engine is not safe for concurrent use.
func NewRuleEngine(rules Rules, rng Random, volume bool) *RuleEngine {
	return &RuleEngine{rules: rules, rng: rng, volume: volume}
}

// Rules returns the engine's constants.
func (e *RuleEngine) Rules() Rules {
	return e.rules
}

// Resolve applies the Sync or Trade rule to a and b, pushes them apart and
// starts both cooldowns. roster is the whole panel, used for hue blending.
func (e *RuleEngine) Resolve(a, b AgentRef, roster []AgentRef) Outcome {
	outcome := OutcomeTrade
	if a.Shape.Sides == b.Shape.Sides {
		outcome = OutcomeSync
		e.sync(a, b, roster)
	} else {
		e.trade(a, b)
	}

	e.Separate(a, b)
	a.Agent.Cooldown = e.rules.CooldownTicks
	b.Agent.Cooldown = e.rules.CooldownTicks
	return outcome
}

// sync gives both agents a shared heading and the local mean hue.
func (e *RuleEngine) sync(a, b AgentRef, roster []AgentRef) {
	dirA, _ := SafeNormalize(a.Vel.Vec(), e.rng, e.volume)
	dirB, _ := SafeNormalize(b.Vel.Vec(), e.rng, e.volume)

	// Roughly aligned agents share their sum; opposed ones take the difference.
	// dp == 0 goes to the sum.
	var shared r3.Vec
	if r3.Dot(dirA, dirB) >= 0 {
		shared = r3.Add(dirA, dirB)
	} else {
		shared = r3.Sub(dirA, dirB)
	}
	if r3.Norm(shared) < Epsilon {
		shared = dirA
	}
	shared = r3.Unit(shared)

	a.SetHeading(shared, e.rng, e.volume)
	b.SetHeading(shared, e.rng, e.volume)

	mid := r3.Scale(0.5, r3.Add(a.Pos.Vec(), b.Pos.Vec()))
	hue := e.hues.MeanWithin(mid, roster, e.rules.InfluenceRadius, e.rng)
	a.Color.Hue = hue
	b.Color.Hue = hue
}

// trade moves one side from the larger polygon to the smaller one. The gainer
// takes the loser's hue and slides off along its adjacent edge.
func (e *RuleEngine) trade(a, b AgentRef) {
	more, less := a, b
	if b.Shape.Sides > a.Shape.Sides {
		more, less = b, a
	}

	more.Shape.Sides = components.ClampSides(more.Shape.Sides - 1)
	less.Shape.Sides = components.ClampSides(less.Shape.Sides + 1)

	less.Color.Hue = more.Color.Hue

	impact := math.Atan2(more.Pos.Y-less.Pos.Y, more.Pos.X-less.Pos.X)
	less.RedirectAlongAdjacentEdge(impact, e.rng, e.volume)
}

// Separate pushes a and b apart along the line between them:
// push = (ClashRadius - dist)*PushFactor + PushOffset for each agent.
// Coincident agents are pushed along a random direction.
func (e *RuleEngine) Separate(a, b AgentRef) {
	delta := r3.Sub(a.Pos.Vec(), b.Pos.Vec())
	dist := r3.Norm(delta)
	dir, _ := SafeNormalize(delta, e.rng, e.volume)

	push := (e.rules.ClashRadius-dist)*e.rules.PushFactor + e.rules.PushOffset
	a.Pos.Set(r3.Add(a.Pos.Vec(), r3.Scale(push, dir)))
	b.Pos.Set(r3.Sub(b.Pos.Vec(), r3.Scale(push, dir)))
}
