package model

import (
	"io"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPredictor struct {
	outputs []float64
	calls   int
}

func (p *scriptedPredictor) Predict([]float64) (float64, error) {
	v := p.outputs[p.calls]
	p.calls++
	return v, nil
}

type failingPredictor struct{}

func (failingPredictor) Predict([]float64) (float64, error) {
	return 0, errors.New("boom")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluateScoresPredictions(t *testing.T) {
	p := &scriptedPredictor{outputs: []float64{0.9, 0.1, 0.4, 0.6}}
	samples := []Sample{
		{Inputs: []float64{0}, Label: 1},
		{Inputs: []float64{0}, Label: 0},
		{Inputs: []float64{0}, Label: 0},
		{Inputs: []float64{0}, Label: 1},
	}
	res, err := Evaluate(p, samples, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, res.CorrectPredictions)
	assert.Equal(t, 100.0, res.Accuracy)
	assert.InDelta(t, 1.0, res.TotalTestError, 1e-12)
	assert.InDelta(t, 0.25, res.AvgTestError, 1e-12)
}

func TestEvaluateThresholdIsExclusive(t *testing.T) {
	p := &scriptedPredictor{outputs: []float64{0.5, 0.2}}
	samples := []Sample{
		{Label: 1},
		{Label: 1},
	}
	res, err := Evaluate(p, samples, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectPredictions)
	assert.Equal(t, 0.0, res.Accuracy)
	assert.InDelta(t, 0.65, res.AvgTestError, 1e-12)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := Evaluate(&scriptedPredictor{}, nil, discardLogger())
	require.ErrorIs(t, err, ErrEmptyDataset)
}

func TestEvaluatePropagatesPredictorError(t *testing.T) {
	_, err := Evaluate(failingPredictor{}, []Sample{{Label: 1}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test sample 0")
}
