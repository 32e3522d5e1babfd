package runner

import (
	"errors"
	"testing"
)

func TestBestTestScore(t *testing.T) {
	s := &BestTestScore{}
	if _, err := s.SelectBest(nil); !errors.Is(err, ErrNoTrials) {
		t.Fatalf("expected ErrNoTrials, got %v", err)
	}
	trials := []Trial{{TestScore: 0.5}, {TestScore: 0.9}, {TestScore: 0.9}}
	if got, _ := s.SelectBest(trials); got != 1 {
		t.Fatalf("expected first of tied trials, got %d", got)
	}
}

func TestBalancedScore(t *testing.T) {
	s := &BalancedScore{Penalty: 1}
	trials := []Trial{
		{TrainScore: 1.0, TestScore: 0.8},
		{TrainScore: 0.75, TestScore: 0.75},
	}
	if got, _ := s.SelectBest(trials); got != 1 {
		t.Fatalf("expected the trial with no gap, got %d", got)
	}
}

func TestSelectionByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"", "best_test_score", true},
		{"best_test_score", "best_test_score", true},
		{"balanced_score", "balanced_score", true},
		{"pareto", "", false},
	}
	for _, tt := range tests {
		s, ok := SelectionByName(tt.name)
		if ok != tt.ok {
			t.Fatalf("SelectionByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
		if ok && s.Name() != tt.want {
			t.Fatalf("SelectionByName(%q) = %s, want %s", tt.name, s.Name(), tt.want)
		}
	}
}
