package runner

import (
	"fmt"
	"math"
)

// ConvergenceStrategy inspects the per-iteration fitness history of a
// search (higher is better) and reports whether it had converged
type ConvergenceStrategy interface {
	CheckConvergence(history []float64) (bool, string)
	Name() string
}

// ConvergenceConfig holds the thresholds shared by the strategies
type ConvergenceConfig struct {
	// NoImprovementIterations without a new best fitness count as converged
	NoImprovementIterations int
	// ScoreTolerance is the fitness range treated as flat
	ScoreTolerance float64
	// MinIterations before any strategy reports convergence
	MinIterations int
	// PlateauIterations is the trailing window checked for a plateau
	PlateauIterations int
}

func DefaultConvergenceConfig() *ConvergenceConfig {
	return &ConvergenceConfig{
		NoImprovementIterations: 50,
		ScoreTolerance:          1e-6,
		MinIterations:           10,
		PlateauIterations:       25,
	}
}

// DefaultConvergence combines the no-improvement and plateau strategies
func DefaultConvergence() ConvergenceStrategy {
	return NewCombinedStrategy(nil)
}

// NoImprovementStrategy converges when the best fitness is N iterations old
type NoImprovementStrategy struct {
	config *ConvergenceConfig
}

func NewNoImprovementStrategy(config *ConvergenceConfig) *NoImprovementStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) CheckConvergence(history []float64) (bool, string) {
	if len(history) < s.config.MinIterations {
		return false, ""
	}

	best := math.Inf(-1)
	bestIteration := -1
	for i, f := range history {
		if f > best {
			best = f
			bestIteration = i
		}
	}
	if bestIteration < 0 {
		return false, ""
	}

	since := len(history) - 1 - bestIteration
	if since >= s.config.NoImprovementIterations {
		return true, fmt.Sprintf("no improvement for %d iterations (best at iteration %d)", since, bestIteration+1)
	}
	return false, ""
}

// PlateauStrategy converges when the trailing window is flat
type PlateauStrategy struct {
	config *ConvergenceConfig
}

func NewPlateauStrategy(config *ConvergenceConfig) *PlateauStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) CheckConvergence(history []float64) (bool, string) {
	if len(history) < s.config.MinIterations || len(history) < s.config.PlateauIterations {
		return false, ""
	}

	recent := history[len(history)-s.config.PlateauIterations:]
	lo, hi := recent[0], recent[0]
	for _, f := range recent {
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}

	if spread := hi - lo; spread <= s.config.ScoreTolerance {
		return true, fmt.Sprintf("fitness plateaued for %d iterations (range: %.6f)", s.config.PlateauIterations, spread)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any member strategy does
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

func NewCombinedStrategy(config *ConvergenceConfig) *CombinedStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &CombinedStrategy{
		strategies: []ConvergenceStrategy{
			NewNoImprovementStrategy(config),
			NewPlateauStrategy(config),
		},
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) CheckConvergence(history []float64) (bool, string) {
	for _, strategy := range s.strategies {
		if converged, reason := strategy.CheckConvergence(history); converged {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}
	return false, ""
}

// AddStrategy appends a custom strategy
func (s *CombinedStrategy) AddStrategy(strategy ConvergenceStrategy) {
	s.strategies = append(s.strategies, strategy)
}
