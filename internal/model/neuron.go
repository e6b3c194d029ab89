package model

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Neuron is a sigmoid unit owning its weights and bias.
type Neuron struct {
	weights []float64
	bias    float64
	lr      float64
}

// NewNeuron draws numInputs weights and a bias uniformly from [-1, 1].
func NewNeuron(numInputs int, lr float64, rng *rand.Rand) *Neuron {
	weights := make([]float64, numInputs)
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	return &Neuron{
		weights: weights,
		bias:    rng.Float64()*2 - 1,
		lr:      lr,
	}
}

// NewNeuronWithWeights builds a neuron from explicit parameters. The weight
// slice is copied.
func NewNeuronWithWeights(weights []float64, bias, lr float64) *Neuron {
	return &Neuron{
		weights: append([]float64(nil), weights...),
		bias:    bias,
		lr:      lr,
	}
}

// NumInputs is the length of the weight vector.
func (n *Neuron) NumInputs() int { return len(n.weights) }

// Weights returns a copy of the weight vector.
func (n *Neuron) Weights() []float64 { return append([]float64(nil), n.weights...) }

func (n *Neuron) Bias() float64 { return n.bias }

func (n *Neuron) LearningRate() float64 { return n.lr }

// Forward returns sigmoid(bias + inputs·weights).
func (n *Neuron) Forward(inputs []float64) (float64, error) {
	if len(inputs) != len(n.weights) {
		return 0, errors.Wrapf(ErrInputSizeMismatch, "got %d inputs, want %d", len(inputs), len(n.weights))
	}
	return sigmoid(n.bias + floats.Dot(inputs, n.weights)), nil
}

// Predict is Forward; it never mutates the neuron.
func (n *Neuron) Predict(inputs []float64) (float64, error) {
	return n.Forward(inputs)
}

// Train treats the neuron as a single-layer perceptron and applies one
// gradient step towards label. The returned output is the pre-update value.
func (n *Neuron) Train(inputs []float64, label float64) (TrainResult, error) {
	output, err := n.Forward(inputs)
	if err != nil {
		return TrainResult{}, err
	}
	e := label - output
	n.adjust(inputs, e*sigmoidDerivative(output))
	return TrainResult{Output: output, Error: e}, nil
}

// Test evaluates the neuron alone on samples.
func (n *Neuron) Test(samples []Sample) (TestResult, error) {
	return Evaluate(n, samples, slog.Default())
}

// adjust applies w += lr*delta*x and b += lr*delta. Callers guarantee
// len(inputs) == len(n.weights).
func (n *Neuron) adjust(inputs []float64, delta float64) {
	step := n.lr * delta
	floats.AddScaled(n.weights, step, inputs)
	n.bias += step
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// sigmoidDerivative takes the activated output, not z.
func sigmoidDerivative(output float64) float64 {
	return output * (1 - output)
}
