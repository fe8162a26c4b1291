// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Recipe kinds understood by the panel builder.
const (
	RecipeTwoKind  = "two_kind"
	RecipeAllEqual = "all_equal"
	RecipeExplicit = "explicit"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Layout     LayoutConfig     `yaml:"layout"`
	Agents     AgentsConfig     `yaml:"agents"`
	Separation SeparationConfig `yaml:"separation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Panels     []PanelConfig    `yaml:"panels"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// LayoutConfig places panels on a grid. Only used to map global points to panels.
type LayoutConfig struct {
	PanelWidth  float64 `yaml:"panel_width"`
	PanelHeight float64 `yaml:"panel_height"`
	LabelHeight float64 `yaml:"label_height"` // space under each panel for counts
	Padding     float64 `yaml:"padding"`
	Columns     int     `yaml:"columns"`
}

// AgentsConfig holds agent rule constants.
type AgentsConfig struct {
	ClashRadius       float64 `yaml:"clash_radius"`
	InfluenceRadius   float64 `yaml:"influence_radius"`
	CooldownTicks     int     `yaml:"cooldown_ticks"`
	SpinRate          float64 `yaml:"spin_rate"` // orientation += spin_rate * sides per tick
	InitialSpeedMin   float64 `yaml:"initial_speed_min"`
	InitialSpeedMax   float64 `yaml:"initial_speed_max"`
	SpawnSpeedMin     float64 `yaml:"spawn_speed_min"`
	SpawnSpeedMax     float64 `yaml:"spawn_speed_max"`
	HueSpacing        float64 `yaml:"hue_spacing"`        // degrees
	HueTries          int     `yaml:"hue_tries"`          // attempts to find a distinct initial hue
	PlacementAttempts int     `yaml:"placement_attempts"` // per agent, then the agent is dropped
	SpawnSpacing      float64 `yaml:"spawn_spacing"`      // fraction of clash radius
}

// PushConfig is the overlap-resolution nudge: push = (clash - dist)*Factor + Offset.
type PushConfig struct {
	Factor float64 `yaml:"factor"`
	Offset float64 `yaml:"offset"`
}

// SeparationConfig holds push constants for flat and volume panels.
type SeparationConfig struct {
	Flat   PushConfig `yaml:"flat"`
	Volume PushConfig `yaml:"volume"`
}

// MetricsConfig controls the rolling entropy/alignment history.
type MetricsConfig struct {
	Enabled       bool `yaml:"enabled"`
	HistoryLength int  `yaml:"history_length"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks
}

// RecipeConfig describes the initial side-count multiset of a panel.
type RecipeConfig struct {
	Kind  string  `yaml:"kind"`
	Count int     `yaml:"count"`
	Tri   float64 `yaml:"tri,omitempty"`   // two_kind: fraction of 3-sided agents, rest are 8-sided
	Sides []int   `yaml:"sides,omitempty"` // explicit: verbatim side counts
}

// PanelConfig defines one panel.
type PanelConfig struct {
	Title  string       `yaml:"title"`
	Depth  float64      `yaml:"depth,omitempty"` // > 0 makes a volume (3D) panel
	Recipe RecipeConfig `yaml:"recipe"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpawnMinDist float64 // Agents.ClashRadius * Agents.SpawnSpacing
	Rows         int     // panel grid rows
	CanvasWidth  float64
	CanvasHeight float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file; a panels list replaces the defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	a := c.Agents
	switch {
	case a.ClashRadius <= 0:
		return errors.New("agents.clash_radius must be positive")
	case a.InfluenceRadius <= 0:
		return errors.New("agents.influence_radius must be positive")
	case a.CooldownTicks < 0:
		return errors.New("agents.cooldown_ticks must not be negative")
	case a.InitialSpeedMax < a.InitialSpeedMin || a.InitialSpeedMin <= 0:
		return errors.New("agents.initial_speed range is invalid")
	case a.SpawnSpeedMax < a.SpawnSpeedMin || a.SpawnSpeedMin <= 0:
		return errors.New("agents.spawn_speed range is invalid")
	case a.PlacementAttempts < 1:
		return errors.New("agents.placement_attempts must be at least 1")
	}
	if c.Layout.PanelWidth <= 0 || c.Layout.PanelHeight <= 0 {
		return errors.New("layout panel size must be positive")
	}
	if c.Layout.Columns < 1 {
		return errors.New("layout.columns must be at least 1")
	}
	if c.Metrics.Enabled && c.Metrics.HistoryLength < 1 {
		return errors.New("metrics.history_length must be at least 1")
	}
	if len(c.Panels) == 0 {
		return errors.New("at least one panel is required")
	}
	for i, p := range c.Panels {
		if p.Depth < 0 {
			return fmt.Errorf("panels[%d]: depth must not be negative", i)
		}
		switch p.Recipe.Kind {
		case RecipeTwoKind:
			if p.Recipe.Tri < 0 || p.Recipe.Tri > 1 {
				return fmt.Errorf("panels[%d]: tri must be within [0, 1]", i)
			}
		case RecipeAllEqual:
		case RecipeExplicit:
			for _, s := range p.Recipe.Sides {
				if s < 3 || s > 8 {
					return fmt.Errorf("panels[%d]: side count %d outside [3, 8]", i, s)
				}
			}
			continue
		default:
			return fmt.Errorf("panels[%d]: unknown recipe kind %q", i, p.Recipe.Kind)
		}
		if p.Recipe.Count < 0 {
			return fmt.Errorf("panels[%d]: count must not be negative", i)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SpawnMinDist = c.Agents.ClashRadius * c.Agents.SpawnSpacing

	cols := c.Layout.Columns
	c.Derived.Rows = (len(c.Panels) + cols - 1) / cols
	if len(c.Panels) < cols {
		cols = len(c.Panels)
	}

	l := c.Layout
	c.Derived.CanvasWidth = l.Padding + float64(cols)*(l.PanelWidth+l.Padding)
	c.Derived.CanvasHeight = l.Padding + float64(c.Derived.Rows)*(l.PanelHeight+l.LabelHeight+l.Padding)
}

// Push returns the separation constants for a flat or volume panel.
func (c *Config) Push(volume bool) PushConfig {
	if volume {
		return c.Separation.Volume
	}
	return c.Separation.Flat
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
