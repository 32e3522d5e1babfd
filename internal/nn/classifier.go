package nn

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/algorithms"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runner"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/dataset"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

// ErrNotFitted is returned when predicting before a successful Fit
var ErrNotFitted = errors.New("classifier is not fitted")

// Defaults for trial hyperparameters the grid does not set
const (
	DefaultActivation   = ActivationReLU
	DefaultLearningRate = 0.1
)

// DefaultHiddenLayers is used when the grid does not set hidden_layer_sizes
var DefaultHiddenLayers = []int{4}

// ExperimentRunner executes one configured trial on behalf of the classifier.
// TrialParams reports the parameters a trial will actually run with, so the
// network is built from the same values recorded as its provenance.
type ExperimentRunner interface {
	TrialParams(trial *params.Args) *params.Args
	RunOneExperiment(ctx context.Context, alg algorithms.Algorithm, totalArgs, trial *params.Args) (*runner.Result, error)
}

// Options are the hyperparameters fixed for every trial
type Options struct {
	MaxAttempts   int
	ClipMax       float64
	EarlyStopping bool
	Bias          bool
}

// Classifier fits a Network by delegating the weight search to its runner
type Classifier struct {
	runner    ExperimentRunner
	algorithm algorithms.Algorithm
	opts      Options

	net     *Network
	weights []float64
}

// NewClassifier binds a classifier to a runner and an algorithm
func NewClassifier(r ExperimentRunner, alg algorithms.Algorithm, opts Options) *Classifier {
	return &Classifier{runner: r, algorithm: alg, opts: opts}
}

// Options returns the fixed hyperparameters
func (c *Classifier) Options() Options {
	return c.opts
}

// Fit builds the network described by trial, searches its weights through
// the runner and keeps the best weights found.
func (c *Classifier) Fit(ctx context.Context, train *dataset.Dataset, trial *params.Args) (*runner.Result, error) {
	if err := train.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training data: %w", err)
	}

	effective := c.runner.TrialParams(trial)
	hidden, err := effective.IntSlice("hidden_layer_sizes", DefaultHiddenLayers)
	if err != nil {
		return nil, err
	}
	activation, err := effective.Str("activation", DefaultActivation)
	if err != nil {
		return nil, err
	}
	learningRate, err := effective.Float("learning_rate", DefaultLearningRate)
	if err != nil {
		return nil, err
	}
	maxIters, err := effective.Int("max_iters", 0)
	if err != nil {
		return nil, err
	}

	net, err := NewNetwork(train.NumFeatures(), hidden, train.NumClasses(), activation, c.opts.Bias)
	if err != nil {
		return nil, err
	}
	problem := NewWeightsProblem(net, train.Features, train.Labels, c.opts.ClipMax, learningRate)

	totalArgs := params.New().
		Set("problem", problem).
		Set("max_attempts", c.effectiveMaxAttempts(maxIters)).
		Set("clip_max", c.opts.ClipMax).
		Set("early_stopping", c.opts.EarlyStopping).
		Set("bias", c.opts.Bias).
		Set("hidden_layer_sizes", hidden).
		Set("activation", activation).
		Set("learning_rate", learningRate)
	if maxIters > 0 {
		totalArgs.Set("max_iters", maxIters)
	}
	totalArgs.Merge(trial)
	trialParams := trial.Clone().Set("problem", problem)

	res, err := c.runner.RunOneExperiment(ctx, c.algorithm, totalArgs, trialParams)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.BestState) != net.NumWeights() {
		return nil, fmt.Errorf("runner returned no usable weights")
	}

	c.net = net
	c.weights = res.BestState
	return res, nil
}

// Without early stopping the search is allowed to run for all iterations
func (c *Classifier) effectiveMaxAttempts(maxIters int) int {
	if c.opts.EarlyStopping {
		return c.opts.MaxAttempts
	}
	if maxIters > 0 {
		return maxIters
	}
	return math.MaxInt32
}

// Predict returns the predicted class for each row
func (c *Classifier) Predict(x [][]float64) ([]int, error) {
	if c.net == nil {
		return nil, ErrNotFitted
	}
	out := make([]int, len(x))
	for i, row := range x {
		if len(row) != c.net.sizes[0] {
			return nil, fmt.Errorf("row %d has %d features, network expects %d", i, len(row), c.net.sizes[0])
		}
		out[i] = c.net.Predict(c.weights, row)
	}
	return out, nil
}

// Score returns the accuracy on ds
func (c *Classifier) Score(ds *dataset.Dataset) (float64, error) {
	if err := ds.Validate(); err != nil {
		return 0, err
	}
	if c.net != nil && ds.NumFeatures() != c.net.sizes[0] {
		return 0, fmt.Errorf("dataset has %d features, network expects %d", ds.NumFeatures(), c.net.sizes[0])
	}
	pred, err := c.Predict(ds.Features)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, p := range pred {
		if p == ds.Labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred)), nil
}

// Weights returns a copy of the fitted weights
func (c *Classifier) Weights() []float64 {
	out := make([]float64, len(c.weights))
	copy(out, c.weights)
	return out
}
