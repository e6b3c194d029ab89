package model

import "github.com/pkg/errors"

var (
	// ErrInputSizeMismatch is returned when a neuron receives a vector whose
	// length differs from its weight count.
	ErrInputSizeMismatch = errors.New("input size must match weight size")

	// ErrStructuralMismatch is returned when layers do not chain.
	ErrStructuralMismatch = errors.New("network layers do not chain")

	// ErrEmptyDataset is returned by dataset-level operations given no samples.
	ErrEmptyDataset = errors.New("dataset has no samples")

	ErrInvalidLearningRate = errors.New("learning rate must be > 0")

	ErrInvalidEpochs = errors.New("epochs must be >= 0")
)
