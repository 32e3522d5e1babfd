// Package runner is the base experiment runner: it owns the shared
// experiment configuration, invokes optimization algorithms on behalf of
// specialised runners and drives the hyperparameter grid search.
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/dataset"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/logger"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

var (
	ErrInvalidConfig  = errors.New("invalid runner configuration")
	ErrMissingProblem = errors.New("params do not carry a problem")
)

// Config is the experiment-wide configuration shared by every trial
type Config struct {
	Train *dataset.Dataset
	Test  *dataset.Dataset

	ExperimentName       string
	Seed                 int64
	IterationList        []int
	GridSearchParameters map[string][]any
	GenerateCurves       bool
	OutputDirectory      string

	// Store receives one record per algorithm invocation when set
	Store *runstore.Store
	// Selection picks the best trial; defaults to BestTestScore
	Selection SelectionStrategy
	// Convergence annotates each result; defaults to DefaultConvergence
	Convergence ConvergenceStrategy
}

func (c *Config) validate() error {
	if c.ExperimentName == "" {
		return fmt.Errorf("%w: experiment name is required", ErrInvalidConfig)
	}
	if c.Train == nil {
		return fmt.Errorf("%w: training data is required", ErrInvalidConfig)
	}
	if c.Test == nil {
		return fmt.Errorf("%w: test data is required", ErrInvalidConfig)
	}
	if len(c.IterationList) == 0 {
		return fmt.Errorf("%w: iteration list cannot be empty", ErrInvalidConfig)
	}
	for _, it := range c.IterationList {
		if it < 0 {
			return fmt.Errorf("%w: iteration list entries cannot be negative, got %d", ErrInvalidConfig, it)
		}
	}
	for key, values := range c.GridSearchParameters {
		if len(values) == 0 {
			return fmt.Errorf("%w: grid parameter %s has no values", ErrInvalidConfig, key)
		}
	}
	return nil
}

// Base holds the shared configuration and bookkeeping of a runner
type Base struct {
	cfg           Config
	iterationList []int

	mu          sync.RWMutex
	dynamicName string
	extraArgs   *params.Args
	trials      int
}

// NewBase validates cfg and creates a base runner
func NewBase(cfg Config) (*Base, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Selection == nil {
		cfg.Selection = &BestTestScore{}
	}
	if cfg.Convergence == nil {
		cfg.Convergence = DefaultConvergence()
	}

	iterations := append([]int(nil), cfg.IterationList...)
	sort.Ints(iterations)

	return &Base{
		cfg:           cfg,
		iterationList: dedupeSorted(iterations),
	}, nil
}

// SetDynamicName sets the label results are filed under
func (b *Base) SetDynamicName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dynamicName = name
}

// DynamicName returns the label results are filed under
func (b *Base) DynamicName() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dynamicName
}

// SetExtraArgs sets runtime arguments merged into every trial
func (b *Base) SetExtraArgs(extra *params.Args) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.extraArgs = extra.Clone()
}

// ExtraArgs returns a copy of the runtime arguments; never nil
func (b *Base) ExtraArgs() *params.Args {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.extraArgs.Clone()
}

func (b *Base) GenerateCurves() bool {
	return b.cfg.GenerateCurves
}

// IterationList returns the sorted, de-duplicated checkpoint iterations
func (b *Base) IterationList() []int {
	return append([]int(nil), b.iterationList...)
}

func (b *Base) Seed() int64 {
	return b.cfg.Seed
}

func (b *Base) ExperimentName() string {
	return b.cfg.ExperimentName
}

func (b *Base) OutputDirectory() string {
	return b.cfg.OutputDirectory
}

func (b *Base) nextTrialIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.trials
	b.trials++
	return idx
}

func (b *Base) log() *slog.Logger {
	return logger.ForExperiment(b.cfg.ExperimentName, b.DynamicName())
}

func dedupeSorted(values []int) []int {
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			out = append(out, v)
		}
	}
	return out
}
