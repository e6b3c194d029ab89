package model

import (
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Layer is an ordered group of neurons sharing one input arity.
type Layer []*Neuron

// Network is a fully-connected feedforward stack of sigmoid layers ending in
// a single output neuron.
type Network struct {
	layers []Layer
	logger *slog.Logger
}

// Option customizes a Network at construction.
type Option func(*Network)

// WithLogger sets the logger used for per-epoch progress and evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// EpochFunc observes the end of each training epoch.
type EpochFunc func(epoch int, avgError float64, elapsed time.Duration)

// NewNetwork assembles pre-built layers. Every layer must be non-empty, all
// neurons in a layer must share an arity equal to the previous layer's width,
// and the last layer must hold exactly one neuron.
func NewNetwork(layers []Layer, opts ...Option) (*Network, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	n := &Network{
		layers: layers,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func validateLayers(layers []Layer) error {
	if len(layers) == 0 {
		return errors.Wrap(ErrStructuralMismatch, "no layers")
	}
	arity := -1
	for li, layer := range layers {
		if len(layer) == 0 {
			return errors.Wrapf(ErrStructuralMismatch, "layer %d is empty", li)
		}
		want := arity
		if li == 0 {
			want = layer[0].NumInputs()
			if want == 0 {
				return errors.Wrap(ErrStructuralMismatch, "first layer takes no inputs")
			}
		}
		for ni, neuron := range layer {
			if neuron == nil {
				return errors.Wrapf(ErrStructuralMismatch, "layer %d neuron %d is nil", li, ni)
			}
			if neuron.NumInputs() != want {
				return errors.Wrapf(ErrStructuralMismatch, "layer %d neuron %d has %d inputs, want %d",
					li, ni, neuron.NumInputs(), want)
			}
			if !(neuron.LearningRate() > 0) {
				return errors.Wrapf(ErrInvalidLearningRate, "layer %d neuron %d: %g", li, ni, neuron.LearningRate())
			}
		}
		arity = len(layer)
	}
	if last := layers[len(layers)-1]; len(last) != 1 {
		return errors.Wrapf(ErrStructuralMismatch, "output layer has %d neurons, want 1", len(last))
	}
	return nil
}

// InputSize is the feature vector length the first layer expects.
func (n *Network) InputSize() int { return n.layers[0][0].NumInputs() }

// Shape returns the width of every layer in order.
func (n *Network) Shape() []int {
	shape := make([]int, len(n.layers))
	for i, layer := range n.layers {
		shape[i] = len(layer)
	}
	return shape
}

// Forward returns the output vector of every layer in order. The last vector
// holds the single prediction.
func (n *Network) Forward(inputs []float64) ([][]float64, error) {
	outputs := make([][]float64, 0, len(n.layers))
	current := inputs
	for li, layer := range n.layers {
		layerOut := make([]float64, len(layer))
		for ni, neuron := range layer {
			v, err := neuron.Forward(current)
			if err != nil {
				return nil, errors.Wrapf(err, "layer %d neuron %d", li, ni)
			}
			layerOut[ni] = v
		}
		outputs = append(outputs, layerOut)
		current = layerOut
	}
	return outputs, nil
}

// Predict returns the output neuron's value for inputs.
func (n *Network) Predict(inputs []float64) (float64, error) {
	outputs, err := n.Forward(inputs)
	if err != nil {
		return 0, err
	}
	return outputs[len(outputs)-1][0], nil
}

// Train runs one backpropagation step on a single sample and returns the
// absolute prediction error measured before the update.
//
// Error terms are propagated backwards unscaled: a hidden neuron's term is the
// weighted sum of the next layer's terms over the connecting weights. The
// sigmoid derivative of each neuron's own output is applied only when its
// weights are updated.
func (n *Network) Train(inputs []float64, target float64) (float64, error) {
	outputs, err := n.Forward(inputs)
	if err != nil {
		return 0, err
	}
	last := len(n.layers) - 1
	predictionError := target - outputs[last][0]

	terms := make([][]float64, len(n.layers))
	for li, layer := range n.layers {
		terms[li] = make([]float64, len(layer))
	}
	terms[last][0] = predictionError

	for li := last - 1; li >= 0; li-- {
		next := n.layers[li+1]
		for j := range n.layers[li] {
			var sum float64
			for k, neuron := range next {
				sum += terms[li+1][k] * neuron.weights[j]
			}
			terms[li][j] = sum
		}
	}

	layerInputs := inputs
	for li, layer := range n.layers {
		for ni, neuron := range layer {
			out := outputs[li][ni]
			neuron.adjust(layerInputs, terms[li][ni]*sigmoidDerivative(out))
		}
		layerInputs = outputs[li]
	}

	return math.Abs(predictionError), nil
}

// TrainOnDataset trains on every sample in order, once per epoch, and returns
// the average absolute error of each epoch. onEpoch may be nil.
func (n *Network) TrainOnDataset(samples []Sample, epochs int, onEpoch EpochFunc) ([]float64, error) {
	if epochs < 0 {
		return nil, errors.Wrapf(ErrInvalidEpochs, "got %d", epochs)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	history := make([]float64, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		start := time.Now()
		var epochError float64
		for i, sample := range samples {
			e, err := n.Train(sample.Inputs, sample.Label)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", epoch, i)
			}
			epochError += e
		}
		avg := epochError / float64(len(samples))
		history = append(history, avg)
		n.logger.Info("epoch complete", "epoch", epoch, "avg_error", avg)
		if onEpoch != nil {
			onEpoch(epoch, avg, time.Since(start))
		}
	}
	return history, nil
}

// Test evaluates the network on samples without modifying it.
func (n *Network) Test(samples []Sample) (TestResult, error) {
	return Evaluate(n, samples, n.logger)
}
