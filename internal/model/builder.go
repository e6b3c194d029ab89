package model

import (
	"math/rand"

	"github.com/pkg/errors"
)

// NewLayer builds size neurons that each take inputSize inputs.
func NewLayer(size, inputSize int, lr float64, rng *rand.Rand) Layer {
	layer := make(Layer, size)
	for i := range layer {
		layer[i] = NewNeuron(inputSize, lr, rng)
	}
	return layer
}

// Build creates a network from layer widths. The first layer reads inputSize
// features and each later layer reads the previous layer's outputs. All
// weights and biases are drawn from rng.
func Build(sizes []int, inputSize int, lr float64, rng *rand.Rand, opts ...Option) (*Network, error) {
	if !(lr > 0) {
		return nil, errors.Wrapf(ErrInvalidLearningRate, "got %g", lr)
	}
	if inputSize <= 0 {
		return nil, errors.Wrapf(ErrStructuralMismatch, "input size must be > 0 (got %d)", inputSize)
	}
	layers := make([]Layer, 0, len(sizes))
	arity := inputSize
	for i, size := range sizes {
		if size <= 0 {
			return nil, errors.Wrapf(ErrStructuralMismatch, "layer %d size must be > 0 (got %d)", i, size)
		}
		layers = append(layers, NewLayer(size, arity, lr, rng))
		arity = size
	}
	return NewNetwork(layers, opts...)
}
