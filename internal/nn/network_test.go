package nn

import (
	"math"
	"testing"
)

func TestNewNetworkValidation(t *testing.T) {
	tests := []struct {
		name       string
		inputs     int
		hidden     []int
		outputs    int
		activation string
	}{
		{"no inputs", 0, []int{2}, 2, ActivationReLU},
		{"one class", 2, []int{2}, 1, ActivationReLU},
		{"bad activation", 2, []int{2}, 2, "softplus"},
		{"empty hidden layer", 2, []int{0}, 2, ActivationTanh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNetwork(tt.inputs, tt.hidden, tt.outputs, tt.activation, true); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNumWeights(t *testing.T) {
	withBias, _ := NewNetwork(2, []int{3}, 2, ActivationReLU, true)
	if got := withBias.NumWeights(); got != 17 {
		t.Fatalf("expected 17 weights with bias, got %d", got)
	}
	noBias, _ := NewNetwork(2, []int{3}, 2, ActivationReLU, false)
	if got := noBias.NumWeights(); got != 12 {
		t.Fatalf("expected 12 weights without bias, got %d", got)
	}
}

func TestForwardZeroWeightsIsUniform(t *testing.T) {
	net, _ := NewNetwork(2, []int{4}, 3, ActivationSigmoid, true)
	probs := net.Forward(make([]float64, net.NumWeights()), []float64{0.3, -2})
	for i, p := range probs {
		if math.Abs(p-1.0/3) > 1e-12 {
			t.Fatalf("class %d: expected 1/3, got %f", i, p)
		}
	}
}

func TestPredictLinear(t *testing.T) {
	net, _ := NewNetwork(1, nil, 2, ActivationIdentity, false)
	weights := []float64{0, 1}
	if got := net.Predict(weights, []float64{2}); got != 1 {
		t.Fatalf("expected class 1 for positive input, got %d", got)
	}
	if got := net.Predict(weights, []float64{-2}); got != 0 {
		t.Fatalf("expected class 0 for negative input, got %d", got)
	}
}

func TestLoss(t *testing.T) {
	net, _ := NewNetwork(1, nil, 2, ActivationIdentity, false)
	x := [][]float64{{1}, {-1}}
	y := []int{1, 0}

	if got := net.Loss([]float64{0, 0}, x, y); math.Abs(got-math.Ln2) > 1e-12 {
		t.Fatalf("expected ln 2 for uniform output, got %f", got)
	}
	good := net.Loss([]float64{0, 5}, x, y)
	bad := net.Loss([]float64{0, -5}, x, y)
	if good >= bad {
		t.Fatalf("expected separating weights to have lower loss: %f >= %f", good, bad)
	}
	if got := net.Loss([]float64{0, 0}, nil, nil); got != 0 {
		t.Fatalf("expected zero loss for empty batch, got %f", got)
	}
}
