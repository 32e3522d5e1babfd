// Package nngs binds a neural-network classifier to the grid-search
// harness. The runner names itself after the optimizer it drives and
// forwards every trial to the base runner with its provenance attached.
package nngs

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/algorithms"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/nn"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runner"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/dataset"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/shortname"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// ID is the runner identifier registered with shortname
const ID = "nngs_runner"

// Base is what the runner needs from the base runner
type Base interface {
	SetDynamicName(name string)
	ExtraArgs() *params.Args
	IterationList() []int
	GenerateCurves() bool
	InvokeAlgorithm(ctx context.Context, inv runner.Invocation) (*runner.Result, error)
	Run(ctx context.Context, est runner.Estimator) (*runner.GridResult, error)
}

// Options configure a Runner
type Options struct {
	Train *dataset.Dataset
	Test  *dataset.Dataset

	ExperimentName       string
	Seed                 int64
	IterationList        []int
	Algorithm            algorithms.Algorithm
	GridSearchParameters map[string][]any

	Bias           bool
	EarlyStopping  bool
	ClipMax        float64
	MaxAttempts    int
	GenerateCurves bool

	OutputDirectory string
	ExtraArgs       *params.Args
	Store           *runstore.Store
	Selection       runner.SelectionStrategy
}

// Runner runs neural-network grid searches for one algorithm
type Runner struct {
	base       Base
	name       string
	algorithm  algorithms.Algorithm
	classifier *nn.Classifier
}

// New creates a runner on top of a fresh runner.Base
func New(opts Options) (*Runner, error) {
	base, err := runner.NewBase(runner.Config{
		Train:                opts.Train,
		Test:                 opts.Test,
		ExperimentName:       opts.ExperimentName,
		Seed:                 opts.Seed,
		IterationList:        opts.IterationList,
		GridSearchParameters: opts.GridSearchParameters,
		GenerateCurves:       opts.GenerateCurves,
		OutputDirectory:      opts.OutputDirectory,
		Store:                opts.Store,
		Selection:            opts.Selection,
	})
	if err != nil {
		return nil, err
	}
	if opts.ExtraArgs.Len() > 0 {
		base.SetExtraArgs(opts.ExtraArgs)
	}
	return NewWithBase(opts, base)
}

// NewWithBase creates a runner delegating to base
func NewWithBase(opts Options, base Base) (*Runner, error) {
	if opts.Algorithm == nil {
		return nil, fmt.Errorf("%w: algorithm is required", runner.ErrInvalidConfig)
	}
	if opts.Algorithm.ID() == "" {
		return nil, fmt.Errorf("%w: algorithm has no id", runner.ErrInvalidConfig)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: base runner is required", runner.ErrInvalidConfig)
	}

	r := &Runner{
		base:      base,
		name:      shortname.Compose(shortname.Lookup(ID), shortname.Lookup(opts.Algorithm.ID())),
		algorithm: opts.Algorithm,
	}
	base.SetDynamicName(r.name)
	r.classifier = nn.NewClassifier(r, opts.Algorithm, nn.Options{
		MaxAttempts:   opts.MaxAttempts,
		ClipMax:       opts.ClipMax,
		EarlyStopping: opts.EarlyStopping,
		Bias:          opts.Bias,
	})
	return r, nil
}

// Name returns the composed display name, e.g. "nngs_sa"
func (r *Runner) Name() string {
	return r.name
}

func (r *Runner) Algorithm() algorithms.Algorithm {
	return r.algorithm
}

func (r *Runner) Classifier() *nn.Classifier {
	return r.classifier
}

// TrialParams returns the parameters trial runs with: the base runner's
// extra args overlaid by trial, and max_iters defaulted to the last
// iteration checkpoint. trial is not modified.
func (r *Runner) TrialParams(trial *params.Args) *params.Args {
	effective := r.base.ExtraArgs().Clone().Merge(trial)
	if !effective.Has("max_iters") {
		if iters := r.base.IterationList(); len(iters) > 0 {
			effective.Set("max_iters", utils.MaxInt(iters))
		}
	}
	return effective
}

// RunOneExperiment merges the base runner's extra args under trial, merges
// trial over totalArgs and invokes alg through the base runner. totalArgs
// is updated in place and loses its "problem" entry; trial is not modified.
func (r *Runner) RunOneExperiment(ctx context.Context, alg algorithms.Algorithm, totalArgs, trial *params.Args) (*runner.Result, error) {
	if extra := r.base.ExtraArgs(); extra.Len() > 0 {
		trial = extra.Clone().Merge(trial)
	}
	if totalArgs == nil {
		totalArgs = params.New()
	}
	totalArgs.Merge(trial)
	totalArgs.Delete("problem")

	return r.base.InvokeAlgorithm(ctx, runner.Invocation{
		Algorithm:      alg,
		Curve:          r.base.GenerateCurves(),
		UserInfo:       totalArgs.Pairs(),
		AdditionalArgs: totalArgs,
		Params:         trial,
	})
}

// Run executes the grid search with the runner's classifier
func (r *Runner) Run(ctx context.Context) (*runner.GridResult, error) {
	return r.base.Run(ctx, r.classifier)
}
