package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/clash/config"
	"github.com/pthm-cable/clash/game"
	"github.com/pthm-cable/clash/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how mixed the
// panels stay.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // mean windowed entropy from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Weight of the final entropy against the time-averaged window entropy.
const finalEntropyWeight = 0.7

// runResult holds the results from a single simulation run.
type runResult struct {
	finalEntropy []float64              // per panel at the last tick
	windowStats  []telemetry.PanelStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated weighted side entropy across seeds and panels.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				// Unbuildable configs score as fully sorted.
				results[idx] = seedResult{}
				return
			}
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.finalEntropy, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run to maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	sim, err := game.New(cfg, game.Options{
		Seed:    seed,
		RunID:   "tune",
		Workers: 1, // seeds already run in parallel
		StatsCallback: func(stats telemetry.PanelStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	for sim.Tick() < fe.maxTicks {
		sim.Step()
	}

	for _, snap := range sim.Snapshot() {
		result.finalEntropy = append(result.finalEntropy, snap.Entropy)
	}
	return result, nil
}

// copyConfig creates a copy of the base config that parameters can be
// applied to without touching other evaluations.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Panels = slices.Clone(fe.baseConfig.Panels)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(0.7 × mean final entropy + 0.3 × quality)
func computeFitness(finalEntropy []float64, quality float64) float64 {
	if len(finalEntropy) == 0 {
		return 0
	}
	final := stat.Mean(finalEntropy, nil)
	return -(finalEntropyWeight*final + (1-finalEntropyWeight)*quality)
}

// computeQuality is the mean window entropy in [0, 1], skipping the first
// window, where the recipe still dominates.
func computeQuality(windows []telemetry.PanelStats) float64 {
	if len(windows) == 0 {
		return 0
	}

	// Windows arrive panel by panel, so skip by window end rather than index.
	warmupEnd := windows[0].WindowEndTick
	var entropies []float64
	for _, w := range windows {
		if w.WindowEndTick <= warmupEnd || w.Agents == 0 {
			continue
		}
		entropies = append(entropies, w.Entropy)
	}
	if len(entropies) == 0 {
		return 0
	}
	return clamp01(stat.Mean(entropies, nil))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
