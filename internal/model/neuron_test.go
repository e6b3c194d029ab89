package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func TestNewNeuronWeightsInRange(t *testing.T) {
	n := NewNeuron(100, 0.1, rand.New(rand.NewSource(1)))
	require.Equal(t, 100, n.NumInputs())
	for i, w := range n.Weights() {
		assert.GreaterOrEqual(t, w, -1.0, "weight %d", i)
		assert.LessOrEqual(t, w, 1.0, "weight %d", i)
	}
	assert.GreaterOrEqual(t, n.Bias(), -1.0)
	assert.LessOrEqual(t, n.Bias(), 1.0)
	assert.Equal(t, 0.1, n.LearningRate())
}

func TestNewNeuronDeterministicForSeed(t *testing.T) {
	a := NewNeuron(10, 0.1, rand.New(rand.NewSource(7)))
	b := NewNeuron(10, 0.1, rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Weights(), b.Weights())
	assert.Equal(t, a.Bias(), b.Bias())
}

func TestNeuronForward(t *testing.T) {
	n := NewNeuronWithWeights([]float64{0.5, -0.25}, 0.1, 0.1)
	got, err := n.Forward([]float64{2, 4})
	require.NoError(t, err)
	// z = 0.1 + 1 - 1
	assert.InDelta(t, 1/(1+math.Exp(-0.1)), got, 1e-15)
}

func TestNeuronForwardSizeMismatch(t *testing.T) {
	n := NewNeuronWithWeights([]float64{0.5, -0.25}, 0, 0.1)
	_, err := n.Forward([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInputSizeMismatch)
	_, err = n.Train([]float64{1}, 1)
	require.ErrorIs(t, err, ErrInputSizeMismatch)
}

func TestNeuronForwardInOpenUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		n := NewNeuron(20, 0.1, rng)
		inputs := make([]float64, 20)
		for i := range inputs {
			inputs[i] = rng.Float64()*4 - 2
		}
		out, err := n.Forward(inputs)
		require.NoError(t, err)
		require.Greater(t, out, 0.0)
		require.Less(t, out, 1.0)
	}
}

func TestNeuronPredictIsRepeatable(t *testing.T) {
	n := NewNeuron(100, 0.1, rand.New(rand.NewSource(5)))
	inputs := ones(100)
	first, err := n.Predict(inputs)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := n.Predict(inputs)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestNeuronTrainUpdatesWeights(t *testing.T) {
	n := NewNeuronWithWeights([]float64{0, 0}, 0, 0.5)
	inputs := []float64{1, 2}

	res, err := n.Train(inputs, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Output)
	assert.Equal(t, 0.5, res.Error)

	// delta = 0.5 * 0.5 * 0.5; step = lr * delta
	step := 0.5 * 0.125
	assert.InDelta(t, step*1, n.Weights()[0], 1e-15)
	assert.InDelta(t, step*2, n.Weights()[1], 1e-15)
	assert.InDelta(t, step, n.Bias(), 1e-15)
}

func TestNeuronTrainReportsPreUpdateOutput(t *testing.T) {
	n := NewNeuron(100, 0.1, rand.New(rand.NewSource(11)))
	inputs := ones(100)
	before, err := n.Forward(inputs)
	require.NoError(t, err)

	res, err := n.Train(inputs, 0)
	require.NoError(t, err)
	assert.Equal(t, before, res.Output)
	assert.Equal(t, 0-before, res.Error)
	assert.Greater(t, res.Output, 0.0)
	assert.Less(t, res.Output, 1.0)
}

func TestNeuronRepeatedTrainingConverges(t *testing.T) {
	n := NewNeuronWithWeights(make([]float64, 10), 0, 0.5)
	inputs := ones(10)

	first, err := n.Train(inputs, 1)
	require.NoError(t, err)

	var last TrainResult
	prev := math.Abs(first.Error)
	for i := 0; i < 15; i++ {
		last, err = n.Train(inputs, 1)
		require.NoError(t, err)
		require.LessOrEqual(t, math.Abs(last.Error), prev)
		prev = math.Abs(last.Error)
	}
	assert.Less(t, math.Abs(last.Error), math.Abs(first.Error))
}

func TestNeuronTest(t *testing.T) {
	n := NewNeuronWithWeights([]float64{4}, -2, 0.1)
	samples := []Sample{
		{Inputs: []float64{1}, Label: 1},
		{Inputs: []float64{0}, Label: 0},
	}
	res, err := n.Test(samples)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorrectPredictions)
	assert.Equal(t, 100.0, res.Accuracy)

	_, err = n.Test(nil)
	require.ErrorIs(t, err, ErrEmptyDataset)
}
