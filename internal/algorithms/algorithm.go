// Package algorithms holds the randomized local-search optimizers that fit
// network weights, and the catalog that resolves them by name.
package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/shortname"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrInvalidArgs      = errors.New("invalid algorithm arguments")
)

// Problem is a maximization problem over a real-valued state vector
type Problem interface {
	Length() int
	RandomState(rng *utils.RandSource) []float64
	Neighbor(state []float64, rng *utils.RandSource) []float64
	// Fitness scores a state; higher is better
	Fitness(state []float64) float64
}

// ProgressFunc is called once per iteration with the current fitness
type ProgressFunc func(iteration int, fitness float64)

// Algorithm is a search strategy the runner can invoke
type Algorithm interface {
	ID() string
	Run(ctx context.Context, problem Problem, args *params.Args, progress ProgressFunc) (*Outcome, error)
}

// Outcome is the result of one search
type Outcome struct {
	BestState   []float64
	BestFitness float64
	Iterations  int
	StopReason  string
}

const (
	StopMaxIters    = "max iterations reached"
	StopMaxAttempts = "max attempts reached"
	StopColdTemp    = "temperature reached zero"
)

// Settings are the arguments shared by every algorithm
type Settings struct {
	MaxIters    int
	MaxAttempts int
	Seed        int64
}

const DefaultMaxAttempts = 10

// SettingsFrom reads max_iters, max_attempts and seed from args
func SettingsFrom(args *params.Args) (Settings, error) {
	var s Settings
	var err error
	if s.MaxIters, err = args.Int("max_iters", 0); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if s.MaxIters <= 0 {
		return s, fmt.Errorf("%w: max_iters must be positive, got %d", ErrInvalidArgs, s.MaxIters)
	}
	if s.MaxAttempts, err = args.Int("max_attempts", DefaultMaxAttempts); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if s.MaxAttempts <= 0 {
		return s, fmt.Errorf("%w: max_attempts must be positive, got %d", ErrInvalidArgs, s.MaxAttempts)
	}
	seed, err := args.Int("seed", 0)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	s.Seed = int64(seed)
	return s, nil
}

// attemptCounter tracks consecutive non-improving steps
type attemptCounter struct {
	max   int
	count int
}

func (a *attemptCounter) improved() { a.count = 0 }

func (a *attemptCounter) failed() { a.count++ }

func (a *attemptCounter) exhausted() bool { return a.count >= a.max }

var catalog = map[string]func() Algorithm{
	"random_hill_climb":   func() Algorithm { return &RandomHillClimb{} },
	"simulated_annealing": func() Algorithm { return &SimulatedAnnealing{} },
}

// Lookup resolves an algorithm by identifier or short name
func Lookup(name string) (Algorithm, error) {
	if ctor, ok := catalog[name]; ok {
		return ctor(), nil
	}
	for id, ctor := range catalog {
		if shortname.Lookup(id) == name {
			return ctor(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

// IDs returns the catalog identifiers in sorted order
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneState(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
