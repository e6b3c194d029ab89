package model

// Sample is one labeled feature vector.
type Sample struct {
	Inputs []float64
	Label  float64
}

// Predictor maps a feature vector to a scalar prediction in (0, 1).
type Predictor interface {
	Predict(inputs []float64) (float64, error)
}

// TrainResult is what a single-neuron update reports for monitoring.
type TrainResult struct {
	Output float64
	Error  float64
}

// TestResult summarizes a pass over a labeled dataset.
type TestResult struct {
	CorrectPredictions int
	TotalTestError     float64
	Accuracy           float64
	AvgTestError       float64
}
