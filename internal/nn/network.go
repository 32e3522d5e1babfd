// Package nn implements the fully-connected classifier whose weights are
// fitted by the local-search algorithms.
package nn

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

// Activation names accepted for hidden layers
const (
	ActivationReLU     = "relu"
	ActivationSigmoid  = "sigmoid"
	ActivationTanh     = "tanh"
	ActivationIdentity = "identity"
)

var activations = map[string]func(float64) float64{
	ActivationReLU:     func(x float64) float64 { return math.Max(0, x) },
	ActivationSigmoid:  func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
	ActivationTanh:     math.Tanh,
	ActivationIdentity: func(x float64) float64 { return x },
}

// Network is a multilayer perceptron with a softmax output layer. With
// bias enabled every layer gets one extra constant input.
type Network struct {
	sizes      []int
	activation string
	act        func(float64) float64
	bias       bool
}

// NewNetwork builds a network with the given input width, hidden layer
// sizes and number of output classes
func NewNetwork(inputs int, hidden []int, outputs int, activation string, bias bool) (*Network, error) {
	if inputs <= 0 {
		return nil, fmt.Errorf("network needs at least one input, got %d", inputs)
	}
	if outputs < 2 {
		return nil, fmt.Errorf("network needs at least two output classes, got %d", outputs)
	}
	act, ok := activations[activation]
	if !ok {
		return nil, fmt.Errorf("unknown activation %q", activation)
	}
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inputs)
	for i, h := range hidden {
		if h <= 0 {
			return nil, fmt.Errorf("hidden layer %d must have positive size, got %d", i, h)
		}
		sizes = append(sizes, h)
	}
	sizes = append(sizes, outputs)
	return &Network{sizes: sizes, activation: activation, act: act, bias: bias}, nil
}

// NumWeights returns the length of the flattened weight vector
func (n *Network) NumWeights() int {
	total := 0
	for l := 0; l+1 < len(n.sizes); l++ {
		total += n.fanIn(l) * n.sizes[l+1]
	}
	return total
}

func (n *Network) fanIn(layer int) int {
	if n.bias {
		return n.sizes[layer] + 1
	}
	return n.sizes[layer]
}

// Forward returns the class probabilities for one sample
func (n *Network) Forward(weights, x []float64) []float64 {
	values := x
	offset := 0
	last := len(n.sizes) - 2
	for l := 0; l <= last; l++ {
		in := values
		if n.bias {
			in = append(append(make([]float64, 0, len(values)+1), values...), 1)
		}
		out := make([]float64, n.sizes[l+1])
		for j := range out {
			sum := 0.0
			for i, v := range in {
				sum += v * weights[offset+i*len(out)+j]
			}
			if l < last {
				sum = n.act(sum)
			}
			out[j] = sum
		}
		offset += len(in) * len(out)
		values = out
	}
	return softmax(values)
}

// Predict returns the most probable class for one sample
func (n *Network) Predict(weights, x []float64) int {
	return utils.ArgMax(n.Forward(weights, x))
}

// Loss returns the mean cross-entropy over a labelled batch
func (n *Network) Loss(weights []float64, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	const eps = 1e-15
	total := 0.0
	for i, row := range x {
		probs := n.Forward(weights, row)
		p := eps
		if y[i] < len(probs) {
			p = math.Max(probs[y[i]], eps)
		}
		total -= math.Log(p)
	}
	return total / float64(len(x))
}

func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = math.Max(maxZ, v)
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
