package model

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"
)

// correctThreshold is the largest absolute error still counted as correct
// (exclusive).
const correctThreshold = 0.5

const loggedPredictions = 5

// Evaluate runs p over samples and scores each prediction against its label.
func Evaluate(p Predictor, samples []Sample, logger *slog.Logger) (TestResult, error) {
	if len(samples) == 0 {
		return TestResult{}, ErrEmptyDataset
	}
	if logger == nil {
		logger = slog.Default()
	}
	var res TestResult
	for i, sample := range samples {
		prediction, err := p.Predict(sample.Inputs)
		if err != nil {
			return TestResult{}, errors.Wrapf(err, "test sample %d", i)
		}
		e := math.Abs(sample.Label - prediction)
		res.TotalTestError += e
		if e < correctThreshold {
			res.CorrectPredictions++
		}
		if i < loggedPredictions {
			logger.Debug("test sample", "index", i+1, "target", sample.Label, "prediction", prediction, "error", e)
		}
	}
	n := float64(len(samples))
	res.Accuracy = float64(res.CorrectPredictions) / n * 100
	res.AvgTestError = res.TotalTestError / n
	return res, nil
}
