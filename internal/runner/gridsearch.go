package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/dataset"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

// Estimator is the model fitted once per grid trial
type Estimator interface {
	Fit(ctx context.Context, train *dataset.Dataset, trial *params.Args) (*Result, error)
	Score(ds *dataset.Dataset) (float64, error)
}

// Trial is one point of the grid and how it scored
type Trial struct {
	Index      int
	Params     []params.Pair
	TrainScore float64
	TestScore  float64
	Result     *Result
}

// GridResult summarises a grid search
type GridResult struct {
	Runner     string
	Experiment string
	Selection  string
	Trials     []Trial
	BestIndex  int
	Duration   time.Duration
}

// Best returns the selected trial
func (g *GridResult) Best() *Trial {
	if g.BestIndex < 0 || g.BestIndex >= len(g.Trials) {
		return nil
	}
	return &g.Trials[g.BestIndex]
}

// Run fits est on every point of the grid, scores it on the train and test
// sets and selects the best trial. Results are written to the output
// directory when one is configured.
func (b *Base) Run(ctx context.Context, est Estimator) (*GridResult, error) {
	if est == nil {
		return nil, fmt.Errorf("%w: estimator is required", ErrInvalidConfig)
	}
	grid := ExpandGrid(b.cfg.GridSearchParameters)
	log := b.log()
	log.Info("grid search started", "trials", len(grid), "selection", b.cfg.Selection.Name())

	start := time.Now()
	out := &GridResult{
		Runner:     b.DynamicName(),
		Experiment: b.cfg.ExperimentName,
		Selection:  b.cfg.Selection.Name(),
		Trials:     make([]Trial, 0, len(grid)),
		BestIndex:  -1,
	}

	for i, trial := range grid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := est.Fit(ctx, b.cfg.Train, trial)
		if err != nil {
			return nil, fmt.Errorf("trial %d %s: %w", i, trial, err)
		}
		trainScore, err := est.Score(b.cfg.Train)
		if err != nil {
			return nil, fmt.Errorf("trial %d: score train: %w", i, err)
		}
		testScore, err := est.Score(b.cfg.Test)
		if err != nil {
			return nil, fmt.Errorf("trial %d: score test: %w", i, err)
		}

		log.Info("trial finished",
			"trial", i,
			"params", trial.String(),
			"train_score", trainScore,
			"test_score", testScore)
		out.Trials = append(out.Trials, Trial{
			Index:      i,
			Params:     trial.Pairs(),
			TrainScore: trainScore,
			TestScore:  testScore,
			Result:     res,
		})
	}

	best, err := b.cfg.Selection.SelectBest(out.Trials)
	if err != nil {
		return nil, err
	}
	out.BestIndex = best
	out.Duration = time.Since(start)

	if b.cfg.OutputDirectory != "" {
		if err := writeOutputs(b.cfg.OutputDirectory, out, b.cfg.GenerateCurves); err != nil {
			return nil, err
		}
	}

	log.Info("grid search finished",
		"best_trial", best,
		"best_test_score", out.Trials[best].TestScore,
		"duration_ms", out.Duration.Milliseconds())
	return out, nil
}

// ExpandGrid returns the Cartesian product of grid. Keys are visited in
// sorted order with the last key varying fastest; values keep their
// declared order. An empty grid yields a single empty trial.
func ExpandGrid(grid map[string][]any) []*params.Args {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []*params.Args{params.New()}
	for _, k := range keys {
		next := make([]*params.Args, 0, len(out)*len(grid[k]))
		for _, partial := range out {
			for _, v := range grid[k] {
				next = append(next, partial.Clone().Set(k, v))
			}
		}
		out = next
	}
	return out
}
