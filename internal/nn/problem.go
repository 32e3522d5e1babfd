package nn

import (
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// WeightsProblem exposes a network's training loss as a maximization
// problem over its flattened weights
type WeightsProblem struct {
	net          *Network
	x            [][]float64
	y            []int
	clipMax      float64
	learningRate float64
}

// NewWeightsProblem creates the problem; weights stay within [-clipMax, clipMax]
func NewWeightsProblem(net *Network, x [][]float64, y []int, clipMax, learningRate float64) *WeightsProblem {
	return &WeightsProblem{net: net, x: x, y: y, clipMax: clipMax, learningRate: learningRate}
}

func (p *WeightsProblem) Length() int {
	return p.net.NumWeights()
}

// RandomState draws every weight uniformly from [-1, 1)
func (p *WeightsProblem) RandomState(rng *utils.RandSource) []float64 {
	s := make([]float64, p.Length())
	for i := range s {
		s[i] = p.clip(rng.UniformFloat64(-1, 1))
	}
	return s
}

// Neighbor moves one random weight by +/- learning rate
func (p *WeightsProblem) Neighbor(state []float64, rng *utils.RandSource) []float64 {
	next := make([]float64, len(state))
	copy(next, state)
	i := rng.Intn(len(next))
	if rng.BernoulliBool(0.5) {
		next[i] = p.clip(next[i] + p.learningRate)
	} else {
		next[i] = p.clip(next[i] - p.learningRate)
	}
	return next
}

// Fitness is the negated training loss
func (p *WeightsProblem) Fitness(state []float64) float64 {
	return -p.net.Loss(state, p.x, p.y)
}

func (p *WeightsProblem) clip(v float64) float64 {
	return utils.ClampFloat64(v, -p.clipMax, p.clipMax)
}

// String keeps logged provenance short
func (p *WeightsProblem) String() string {
	return "nn_weights_problem"
}
