package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/algorithms"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// Invocation is everything a specialised runner hands to InvokeAlgorithm
type Invocation struct {
	Algorithm algorithms.Algorithm
	// Curve requests a per-iteration fitness curve in the result
	Curve bool
	// UserInfo is the provenance attached to the result, in order
	UserInfo []params.Pair
	// AdditionalArgs are passed to the algorithm under Params
	AdditionalArgs *params.Args
	// Params are the trial arguments; they must carry the problem
	Params *params.Args
}

// Result is the outcome of one algorithm invocation
type Result struct {
	RunID       string
	Runner      string
	Algorithm   string
	BestState   []float64
	BestFitness float64
	Iterations  int
	StopReason  string
	UserInfo    []params.Pair
	Checkpoints []runstore.Sample
	Curve       []runstore.Sample
	Duration    time.Duration

	Converged         bool
	ConvergenceReason string
}

// InvokeAlgorithm runs inv.Algorithm on the problem carried by inv.Params.
// Algorithm arguments are inv.AdditionalArgs overridden by inv.Params, with
// max_iters defaulting to the last checkpoint and seed to the runner seed.
func (b *Base) InvokeAlgorithm(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Algorithm == nil {
		return nil, fmt.Errorf("%w: algorithm is required", algorithms.ErrInvalidArgs)
	}
	raw, ok := inv.Params.Get("problem")
	if !ok {
		return nil, ErrMissingProblem
	}
	problem, ok := raw.(algorithms.Problem)
	if !ok {
		return nil, fmt.Errorf("%w: problem has type %T", ErrMissingProblem, raw)
	}

	args := inv.AdditionalArgs.Clone().Merge(inv.Params)
	args.Delete("problem")
	if !args.Has("max_iters") {
		args.Set("max_iters", utils.MaxInt(b.iterationList))
	}
	if !args.Has("seed") {
		args.Set("seed", int(b.cfg.Seed))
	}

	name := b.DynamicName()
	runID := utils.GenerateTrialID(name, b.nextTrialIndex())
	log := b.log().With("run_id", runID, "algorithm", inv.Algorithm.ID())

	b.recordStart(runID, name, inv)
	log.Debug("invoking algorithm", "args", args.String())

	tracker := newTracker(problem, b.iterationList, inv.Curve)
	start := time.Now()
	outcome, err := inv.Algorithm.Run(ctx, tracker, args, tracker.observe)
	if err != nil {
		b.recordFailure(runID, err)
		log.Warn("algorithm failed", "error", err)
		return nil, fmt.Errorf("%s: %w", inv.Algorithm.ID(), err)
	}
	tracker.finish(outcome.Iterations)

	res := &Result{
		RunID:       runID,
		Runner:      name,
		Algorithm:   inv.Algorithm.ID(),
		BestState:   outcome.BestState,
		BestFitness: outcome.BestFitness,
		Iterations:  outcome.Iterations,
		StopReason:  outcome.StopReason,
		UserInfo:    append([]params.Pair(nil), inv.UserInfo...),
		Checkpoints: tracker.checkpoints,
		Duration:    time.Since(start),
	}
	if inv.Curve {
		res.Curve = tracker.curve
	}
	res.Converged, res.ConvergenceReason = b.cfg.Convergence.CheckConvergence(tracker.history)

	b.recordSuccess(runID, res)
	log.Info("algorithm finished",
		"best_fitness", res.BestFitness,
		"iterations", res.Iterations,
		"stop_reason", res.StopReason,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (b *Base) recordStart(runID, name string, inv Invocation) {
	if b.cfg.Store == nil {
		return
	}
	if _, err := b.cfg.Store.Create(runstore.RunRecord{
		ID:         runID,
		Experiment: b.cfg.ExperimentName,
		Runner:     name,
		Algorithm:  inv.Algorithm.ID(),
		UserInfo:   inv.UserInfo,
	}); err != nil {
		b.log().Warn("failed to record run", "run_id", runID, "error", err)
		return
	}
	b.cfg.Store.SetStatus(runID, runstore.StatusRunning, "")
}

func (b *Base) recordFailure(runID string, err error) {
	if b.cfg.Store == nil {
		return
	}
	b.cfg.Store.Fail(runID, err)
}

func (b *Base) recordSuccess(runID string, res *Result) {
	if b.cfg.Store == nil {
		return
	}
	b.cfg.Store.Complete(runID, runstore.Outcome{
		BestFitness: res.BestFitness,
		Iterations:  res.Iterations,
		StopReason:  res.StopReason,
		Checkpoints: res.Checkpoints,
	})
}

// tracker wraps a problem to count fitness evaluations and sample the
// search at checkpoint iterations
type tracker struct {
	algorithms.Problem

	checkpointsAt []int
	next          int
	wantCurve     bool
	start         time.Time

	fevals      int
	initial     float64
	seenInitial bool
	last        float64
	lastIter    int

	checkpoints []runstore.Sample
	curve       []runstore.Sample
	history     []float64
}

func newTracker(p algorithms.Problem, checkpointsAt []int, wantCurve bool) *tracker {
	return &tracker{
		Problem:       p,
		checkpointsAt: checkpointsAt,
		wantCurve:     wantCurve,
		start:         time.Now(),
	}
}

func (t *tracker) Fitness(state []float64) float64 {
	f := t.Problem.Fitness(state)
	t.fevals++
	if !t.seenInitial {
		t.seenInitial = true
		t.initial = f
		t.last = f
		if len(t.checkpointsAt) > 0 && t.checkpointsAt[0] == 0 {
			t.checkpoints = append(t.checkpoints, t.sample(0, f))
			t.next = 1
		}
	}
	return f
}

func (t *tracker) sample(iteration int, fitness float64) runstore.Sample {
	return runstore.Sample{
		Iteration: iteration,
		Fitness:   fitness,
		FEvals:    t.fevals,
		ElapsedMs: float64(time.Since(t.start).Microseconds()) / 1000,
	}
}

func (t *tracker) observe(iteration int, fitness float64) {
	t.last = fitness
	t.lastIter = iteration
	t.history = append(t.history, fitness)
	if t.wantCurve {
		t.curve = append(t.curve, t.sample(iteration, fitness))
	}
	for t.next < len(t.checkpointsAt) && t.checkpointsAt[t.next] <= iteration {
		if t.checkpointsAt[t.next] == iteration {
			t.checkpoints = append(t.checkpoints, t.sample(iteration, fitness))
		}
		t.next++
	}
}

// finish records the terminal state when the search stopped short of, or
// between, checkpoint iterations
func (t *tracker) finish(iterations int) {
	if n := len(t.checkpoints); n > 0 && t.checkpoints[n-1].Iteration == iterations {
		return
	}
	fitness := t.last
	if iterations == 0 {
		fitness = t.initial
	}
	t.checkpoints = append(t.checkpoints, t.sample(iterations, fitness))
}
