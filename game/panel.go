package game

import (
	"log/slog"
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/clash/components"
	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/systems"
	"github.com/pthm-cable/clash/telemetry"
)

// perfWindow is the number of ticks the per-panel timing averages over.
const perfWindow = 120

// Panel is one bounded toroidal region with its own agents, ECS world and RNG.
//
// Step, Reset, Snapshot and Counts must not run concurrently with each other;
// Simulation serializes them. SpawnAt may be called from any goroutine.
type Panel struct {
	index  int
	title  string
	rect   Rect
	bounds systems.Bounds
	recipe []int // replayed on every reset

	// ECS storage. The roster keeps insertion order, which fixes the clash
	// pair order; refs holds component pointers valid until the next
	// structural change.
	world    *ecs.World
	agentMap *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Agent,
		components.Shape,
		components.Color,
	]
	agentFilter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Agent,
		components.Shape,
		components.Color,
	]
	roster []ecs.Entity
	refs   []systems.AgentRef

	rng      systems.Random
	rules    systems.Rules
	engine   *systems.RuleEngine
	detector systems.ClashDetector
	placer   *systems.Placer

	spawnSpeedMin float64
	spawnSpeedMax float64

	// Spawn commands queued by SpawnAt, applied at the next tick boundary.
	mu      sync.Mutex
	pending []r3.Vec

	// State
	tick      int32
	nextID    uint32
	dropped   int
	entropy   float64
	alignment float64

	// Telemetry
	history   *telemetry.History // nil when metrics are disabled
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
}

// NewPanel builds panel index from cfg and places its initial population.
func NewPanel(cfg *config.Config, index int, seed int64, runID string) (*Panel, error) {
	pc := cfg.Panels[index]
	bounds := systems.Bounds{
		Width:  cfg.Layout.PanelWidth,
		Height: cfg.Layout.PanelHeight,
		Depth:  pc.Depth,
	}
	rng := systems.NewRandSource(seed)

	recipe, err := BuildRecipe(pc.Recipe, rng)
	if err != nil {
		return nil, err
	}

	rules := systems.RulesFromConfig(cfg, bounds.Volume())
	world := ecs.NewWorld()

	p := &Panel{
		index:  index,
		title:  pc.Title,
		rect:   PanelRect(cfg.Layout, index),
		bounds: bounds,
		recipe: recipe,
		world:  world,
		agentMap: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Agent,
			components.Shape,
			components.Color,
		](world),
		agentFilter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Agent,
			components.Shape,
			components.Color,
		](world),
		rng:           rng,
		rules:         rules,
		engine:        systems.NewRuleEngine(rules, rng, bounds.Volume()),
		detector:      systems.ClashDetector{Radius: rules.ClashRadius},
		placer:        systems.NewPlacer(bounds, systems.PlacementFromConfig(cfg)),
		spawnSpeedMin: cfg.Agents.SpawnSpeedMin,
		spawnSpeedMax: cfg.Agents.SpawnSpeedMax,
		collector:     telemetry.NewCollector(runID, cfg.Telemetry.StatsWindow),
		perf:          telemetry.NewPerfCollector(perfWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
	}
	if cfg.Metrics.Enabled {
		p.history = telemetry.NewHistory(cfg.Metrics.HistoryLength)
	}

	p.populate()
	return p, nil
}

// Index returns the panel's position in the simulation.
func (p *Panel) Index() int { return p.index }

// Title returns the panel title.
func (p *Panel) Title() string { return p.title }

// Rect returns the panel's global rectangle.
func (p *Panel) Rect() Rect { return p.rect }

// Bounds returns the panel's local extent.
func (p *Panel) Bounds() systems.Bounds { return p.bounds }

// Tick returns the number of ticks since the last reset.
func (p *Panel) Tick() int32 { return p.tick }

// Len returns the number of agents.
func (p *Panel) Len() int { return len(p.roster) }

// Dropped returns how many agents the last placement could not fit.
func (p *Panel) Dropped() int { return p.dropped }

// Recipe returns a copy of the initial side-count multiset.
func (p *Panel) Recipe() []int {
	out := make([]int, len(p.recipe))
	copy(out, p.recipe)
	return out
}

// Reset discards every agent and queued spawn, restarts ids at 0 and places
// the recipe again.
func (p *Panel) Reset() {
	for _, e := range p.roster {
		p.world.RemoveEntity(e)
	}
	p.roster = p.roster[:0]
	p.refs = p.refs[:0]

	p.mu.Lock()
	p.pending = p.pending[:0]
	p.mu.Unlock()

	p.tick = 0
	p.nextID = 0
	if p.history != nil {
		p.history.Clear()
	}
	p.bookmarks.Reset()
	p.collector.RecordReset()

	p.populate()
}

// populate places the recipe into an empty panel.
func (p *Panel) populate() {
	spawns, dropped := p.placer.Place(p.recipe, p.rng)
	for _, s := range spawns {
		p.createAgent(s)
	}
	p.dropped = dropped
	if dropped > 0 {
		slog.Debug("placement dropped agents", "panel", p.index, "dropped", dropped, "placed", len(spawns))
		p.collector.RecordDropped(dropped)
	}

	p.refreshRefs()
	p.updateMetrics()
}

// createAgent adds an agent with a random heading and orientation.
func (p *Panel) createAgent(s systems.Spawn) ecs.Entity {
	pos := components.Position{}
	pos.Set(p.bounds.Clamp(s.Pos))

	vel := components.Velocity{}
	vel.Set(r3.Scale(s.Speed, systems.UnitVector(p.rng, p.bounds.Volume())))

	agent := components.Agent{ID: p.nextID, Speed: s.Speed}
	p.nextID++

	shape := components.Shape{
		Sides:       components.ClampSides(s.Sides),
		Orientation: p.rng.Range(0, 2*math.Pi),
	}
	color := components.Color{Hue: systems.WrapHue(s.Hue)}

	e := p.agentMap.NewEntity(&pos, &vel, &agent, &shape, &color)
	p.roster = append(p.roster, e)
	return e
}

// SpawnAt queues a random agent at a panel-local point, clamped into the
// panel. The agent appears at the start of the next tick. Safe for
// concurrent use.
func (p *Panel) SpawnAt(local r3.Vec) {
	p.mu.Lock()
	p.pending = append(p.pending, p.bounds.Clamp(local))
	p.mu.Unlock()
}

// applySpawns creates the queued agents. Side count, hue and speed are drawn
// here so the panel RNG is only used from the stepping goroutine.
func (p *Panel) applySpawns() {
	p.mu.Lock()
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(queued) == 0 {
		return
	}
	for _, pos := range queued {
		p.createAgent(systems.Spawn{
			Pos:   pos,
			Sides: components.MinSides + p.rng.Intn(components.NumSideBuckets),
			Hue:   p.rng.Range(0, 360),
			Speed: p.rng.Range(p.spawnSpeedMin, p.spawnSpeedMax),
		})
		p.collector.RecordSpawn()
	}
	p.refreshRefs()
}

// refreshRefs rebuilds the component pointers in roster order.
func (p *Panel) refreshRefs() {
	p.refs = p.refs[:0]
	for _, e := range p.roster {
		pos, vel, agent, shape, color := p.agentMap.Get(e)
		p.refs = append(p.refs, systems.AgentRef{
			Pos:   pos,
			Vel:   vel,
			Agent: agent,
			Shape: shape,
			Color: color,
		})
	}
}

// Step advances the panel one tick: queued spawns, motion, clashes, metrics.
func (p *Panel) Step() {
	p.perf.StartTick()

	p.perf.StartPhase(telemetry.PhaseSpawns)
	p.applySpawns()

	p.perf.StartPhase(telemetry.PhaseAdvance)
	query := p.agentFilter.Query()
	for query.Next() {
		pos, vel, agent, shape, color := query.Get()
		systems.AgentRef{Pos: pos, Vel: vel, Agent: agent, Shape: shape, Color: color}.
			Advance(p.bounds, p.rules.SpinRate)
	}

	p.perf.StartPhase(telemetry.PhaseClash)
	p.detector.Scan(p.refs, p.resolve)

	p.perf.StartPhase(telemetry.PhaseMetrics)
	p.tick++
	p.updateMetrics()
	p.collector.RecordTick(len(p.refs))

	p.perf.EndTick()
}

// resolve applies the clash rules to one pair and counts the outcome.
func (p *Panel) resolve(a, b systems.AgentRef) {
	switch p.engine.Resolve(a, b, p.refs) {
	case systems.OutcomeSync:
		p.collector.RecordSync()
	case systems.OutcomeTrade:
		p.collector.RecordTrade()
	}
}

// updateMetrics recomputes entropy and alignment and records them.
func (p *Panel) updateMetrics() {
	p.entropy = systems.SideEntropy(systems.SideHistogram(p.refs))
	p.alignment = systems.Alignment(p.refs)
	if p.history != nil {
		p.history.Push(telemetry.Sample{Tick: p.tick, Entropy: p.entropy, Alignment: p.alignment})
	}
}

// Counts returns the number of agents per side count, indexed by sides-3.
func (p *Panel) Counts() [components.NumSideBuckets]int {
	return systems.SideHistogram(p.refs)
}

// Entropy returns the normalized side entropy after the last tick.
func (p *Panel) Entropy() float64 { return p.entropy }

// Alignment returns the heading alignment after the last tick.
func (p *Panel) Alignment() float64 { return p.alignment }

// Snapshot copies the panel state for a renderer.
func (p *Panel) Snapshot() PanelSnapshot {
	s := PanelSnapshot{
		ID:        p.index,
		Title:     p.title,
		Tick:      p.tick,
		Rect:      p.rect,
		Bounds:    p.bounds,
		Agents:    make([]AgentView, len(p.refs)),
		Counts:    p.Counts(),
		Entropy:   p.entropy,
		Alignment: p.alignment,
		Dropped:   p.dropped,
	}
	for i, a := range p.refs {
		s.Agents[i] = AgentView{
			ID:          a.Agent.ID,
			Position:    a.Pos.Vec(),
			Orientation: a.Shape.Orientation,
			Sides:       a.Shape.Sides,
			Hue:         a.Color.Hue,
		}
	}
	if p.history != nil {
		s.History = p.history.AppendTo(make([]telemetry.Sample, 0, p.history.Len()))
	}
	return s
}

// Dump returns the panel's full state for a JSON snapshot.
func (p *Panel) Dump() telemetry.PanelDump {
	d := telemetry.PanelDump{
		Index:     p.index,
		Title:     p.title,
		Width:     p.bounds.Width,
		Height:    p.bounds.Height,
		Depth:     p.bounds.Depth,
		Entropy:   p.entropy,
		Alignment: p.alignment,
		Agents:    make([]telemetry.AgentDump, len(p.refs)),
	}
	for i, a := range p.refs {
		d.Agents[i] = telemetry.AgentDump{
			ID:          a.Agent.ID,
			X:           a.Pos.X,
			Y:           a.Pos.Y,
			Z:           a.Pos.Z,
			VelX:        a.Vel.X,
			VelY:        a.Vel.Y,
			VelZ:        a.Vel.Z,
			Speed:       a.Agent.Speed,
			Orientation: a.Shape.Orientation,
			Sides:       a.Shape.Sides,
			Hue:         a.Color.Hue,
			Cooldown:    a.Agent.Cooldown,
		}
	}
	if p.history != nil {
		d.History = p.history.AppendTo(nil)
	}
	return d
}

// state is the end-of-window sample for the stats collector.
func (p *Panel) state() telemetry.PanelState {
	return telemetry.PanelState{
		Panel:     p.index,
		Title:     p.title,
		Counts:    p.Counts(),
		Entropy:   p.entropy,
		Alignment: p.alignment,
	}
}
