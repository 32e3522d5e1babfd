package algorithms

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// RandomHillClimb moves to a random neighbor whenever it is strictly
// better, restarting from a fresh random state `restarts` times.
type RandomHillClimb struct{}

func (a *RandomHillClimb) ID() string {
	return "random_hill_climb"
}

// Run executes the search. Iteration numbers passed to progress are
// cumulative across restarts.
func (a *RandomHillClimb) Run(ctx context.Context, problem Problem, args *params.Args, progress ProgressFunc) (*Outcome, error) {
	if problem == nil {
		return nil, fmt.Errorf("%w: problem is required", ErrInvalidArgs)
	}
	settings, err := SettingsFrom(args)
	if err != nil {
		return nil, err
	}
	restarts, err := args.Int("restarts", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if restarts < 0 {
		return nil, fmt.Errorf("%w: restarts cannot be negative, got %d", ErrInvalidArgs, restarts)
	}

	rng := utils.NewRandSource(settings.Seed)
	out := &Outcome{}
	iteration := 0

	for r := 0; r <= restarts; r++ {
		current := problem.RandomState(rng)
		currentFitness := problem.Fitness(current)
		if r == 0 || currentFitness > out.BestFitness {
			out.BestState = cloneState(current)
			out.BestFitness = currentFitness
		}

		attempts := attemptCounter{max: settings.MaxAttempts}
		out.StopReason = StopMaxIters
		for i := 0; i < settings.MaxIters; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if attempts.exhausted() {
				out.StopReason = StopMaxAttempts
				break
			}
			iteration++

			next := problem.Neighbor(current, rng)
			nextFitness := problem.Fitness(next)
			if nextFitness > currentFitness {
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
				progress(iteration, currentFitness)
			}
		}
	}

	out.Iterations = iteration
	return out, nil
}
