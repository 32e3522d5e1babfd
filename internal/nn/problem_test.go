package nn

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

func newTestProblem(t *testing.T, clipMax, lr float64) *WeightsProblem {
	t.Helper()
	net, err := NewNetwork(2, []int{2}, 2, ActivationTanh, true)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	x := [][]float64{{0, 0}, {1, 1}}
	y := []int{0, 1}
	return NewWeightsProblem(net, x, y, clipMax, lr)
}

func TestRandomStateRange(t *testing.T) {
	p := newTestProblem(t, 0.5, 0.1)
	rng := utils.NewRandSource(7)
	s := p.RandomState(rng)
	if len(s) != p.Length() {
		t.Fatalf("expected %d weights, got %d", p.Length(), len(s))
	}
	for i, w := range s {
		if w < -0.5 || w > 0.5 {
			t.Fatalf("weight %d = %f escapes clip bound", i, w)
		}
	}
}

func TestNeighborMovesOneWeight(t *testing.T) {
	p := newTestProblem(t, 10, 0.25)
	rng := utils.NewRandSource(3)
	state := make([]float64, p.Length())

	for n := 0; n < 20; n++ {
		next := p.Neighbor(state, rng)
		changed := 0
		for i := range next {
			if next[i] != state[i] {
				changed++
				if math.Abs(math.Abs(next[i]-state[i])-0.25) > 1e-12 {
					t.Fatalf("weight %d moved by %f", i, next[i]-state[i])
				}
			}
		}
		if changed != 1 {
			t.Fatalf("expected exactly one weight to change, got %d", changed)
		}
	}
	if state[0] != 0 {
		t.Fatalf("Neighbor mutated its input")
	}
}

func TestNeighborClips(t *testing.T) {
	p := newTestProblem(t, 0.1, 1)
	rng := utils.NewRandSource(5)
	next := p.Neighbor(make([]float64, p.Length()), rng)
	for i, w := range next {
		if math.Abs(w) > 0.1 {
			t.Fatalf("weight %d = %f not clipped", i, w)
		}
	}
}

func TestFitnessIsNegativeLoss(t *testing.T) {
	p := newTestProblem(t, 1, 0.1)
	w := make([]float64, p.Length())
	if got := p.Fitness(w); math.Abs(got+math.Ln2) > 1e-12 {
		t.Fatalf("expected -ln 2, got %f", got)
	}
	if p.String() != "nn_weights_problem" {
		t.Fatalf("unexpected String %q", p.String())
	}
}
