package algorithms

import (
	"context"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// SimulatedAnnealing accepts worse neighbors with probability
// exp(delta / T) where T follows the "schedule" argument.
type SimulatedAnnealing struct{}

func (a *SimulatedAnnealing) ID() string {
	return "simulated_annealing"
}

func (a *SimulatedAnnealing) Run(ctx context.Context, problem Problem, args *params.Args, progress ProgressFunc) (*Outcome, error) {
	if problem == nil {
		return nil, fmt.Errorf("%w: problem is required", ErrInvalidArgs)
	}
	settings, err := SettingsFrom(args)
	if err != nil {
		return nil, err
	}
	raw, _ := args.Get("schedule")
	schedule, err := ScheduleFrom(raw)
	if err != nil {
		return nil, err
	}

	rng := utils.NewRandSource(settings.Seed)
	current := problem.RandomState(rng)
	currentFitness := problem.Fitness(current)
	out := &Outcome{
		BestState:   cloneState(current),
		BestFitness: currentFitness,
		StopReason:  StopMaxIters,
	}

	attempts := attemptCounter{max: settings.MaxAttempts}
	for i := 0; i < settings.MaxIters; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempts.exhausted() {
			out.StopReason = StopMaxAttempts
			break
		}
		temp := schedule.Evaluate(i)
		if temp <= 0 {
			out.StopReason = StopColdTemp
			break
		}
		out.Iterations = i + 1

		next := problem.Neighbor(current, rng)
		nextFitness := problem.Fitness(next)
		delta := nextFitness - currentFitness
		if delta > 0 || rng.Float64() < math.Exp(delta/temp) {
			current, currentFitness = next, nextFitness
			attempts.improved()
		} else {
			attempts.failed()
		}

		if currentFitness > out.BestFitness {
			out.BestState = cloneState(current)
			out.BestFitness = currentFitness
		}
		if progress != nil {
			progress(out.Iterations, currentFitness)
		}
	}

	return out, nil
}
