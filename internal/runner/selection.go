package runner

import (
	"errors"
	"math"
)

var ErrNoTrials = errors.New("no scored trials")

// SelectionStrategy chooses the best trial of a grid search
type SelectionStrategy interface {
	// SelectBest returns the index of the chosen trial
	SelectBest(trials []Trial) (int, error)
	Name() string
}

// BestTestScore picks the highest test accuracy. Ties resolve to the
// earliest trial.
type BestTestScore struct{}

func (s *BestTestScore) Name() string {
	return "best_test_score"
}

func (s *BestTestScore) SelectBest(trials []Trial) (int, error) {
	if len(trials) == 0 {
		return -1, ErrNoTrials
	}
	best := 0
	for i := 1; i < len(trials); i++ {
		if trials[i].TestScore > trials[best].TestScore {
			best = i
		}
	}
	return best, nil
}

// BalancedScore trades test accuracy against the train/test gap:
// score = test - Penalty * |train - test|. Ties resolve to the earliest trial.
type BalancedScore struct {
	Penalty float64
}

func (s *BalancedScore) Name() string {
	return "balanced_score"
}

func (s *BalancedScore) SelectBest(trials []Trial) (int, error) {
	if len(trials) == 0 {
		return -1, ErrNoTrials
	}
	best, bestScore := -1, math.Inf(-1)
	for i, t := range trials {
		score := t.TestScore - s.Penalty*math.Abs(t.TrainScore-t.TestScore)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, nil
}

// SelectionByName resolves a strategy from its name
func SelectionByName(name string) (SelectionStrategy, bool) {
	switch name {
	case "", "best_test_score":
		return &BestTestScore{}, true
	case "balanced_score":
		return &BalancedScore{Penalty: 0.5}, true
	}
	return nil, false
}
