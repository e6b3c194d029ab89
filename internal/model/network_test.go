package model

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func faceLikeSamples(rng *rand.Rand, n int) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		inputs := make([]float64, 100)
		label := float64(i % 2)
		for j := range inputs {
			if rng.Float64() < 0.3+0.4*label {
				inputs[j] = 1
			}
		}
		samples[i] = Sample{Inputs: inputs, Label: label}
	}
	return samples
}

func TestBuildShape(t *testing.T) {
	net, err := Build([]int{10, 3, 1}, 100, 0.1, rand.New(rand.NewSource(1)), WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 3, 1}, net.Shape())
	assert.Equal(t, 100, net.InputSize())

	outputs, err := net.Forward(ones(100))
	require.NoError(t, err)
	require.Len(t, outputs, 3)
	assert.Len(t, outputs[0], 10)
	assert.Len(t, outputs[1], 3)
	require.Len(t, outputs[2], 1)
	for _, layer := range outputs {
		for _, v := range layer {
			assert.Greater(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestBuildRejectsBadArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Build([]int{10, 3, 1}, 100, 0, rng)
	assert.ErrorIs(t, err, ErrInvalidLearningRate)
	_, err = Build([]int{10, 0, 1}, 100, 0.1, rng)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
	_, err = Build([]int{10, 2}, 100, 0.1, rng)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
	_, err = Build(nil, 100, 0.1, rng)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
	_, err = Build([]int{1}, 0, 0.1, rng)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
}

func TestNewNetworkValidatesChaining(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cases := map[string][]Layer{
		"empty":        nil,
		"empty layer":  {NewLayer(2, 4, 0.1, rng), {}, NewLayer(1, 2, 0.1, rng)},
		"ragged layer": {{NewNeuron(4, 0.1, rng), NewNeuron(3, 0.1, rng)}, NewLayer(1, 2, 0.1, rng)},
		"broken chain": {NewLayer(2, 4, 0.1, rng), NewLayer(1, 3, 0.1, rng)},
		"wide output":  {NewLayer(2, 4, 0.1, rng), NewLayer(2, 2, 0.1, rng)},
		"nil neuron":   {{NewNeuron(4, 0.1, rng), nil}, NewLayer(1, 2, 0.1, rng)},
		"zero arity":   {NewLayer(1, 0, 0.1, rng)},
	}
	for name, layers := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewNetwork(layers)
			require.ErrorIs(t, err, ErrStructuralMismatch)
		})
	}

	_, err := NewNetwork([]Layer{NewLayer(2, 4, 0.1, rng), {NewNeuronWithWeights([]float64{1, 1}, 0, -1)}})
	require.ErrorIs(t, err, ErrInvalidLearningRate)
}

func TestNetworkForwardSizeMismatch(t *testing.T) {
	net, err := Build([]int{3, 1}, 5, 0.1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = net.Forward(ones(4))
	require.ErrorIs(t, err, ErrInputSizeMismatch)
	_, err = net.Train(ones(6), 1)
	require.ErrorIs(t, err, ErrInputSizeMismatch)
}

func TestNetworkPredictIsRepeatable(t *testing.T) {
	net, err := Build([]int{10, 3, 1}, 100, 0.1, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	inputs := ones(100)
	first, err := net.Predict(inputs)
	require.NoError(t, err)
	outputs, err := net.Forward(inputs)
	require.NoError(t, err)
	assert.Equal(t, first, outputs[2][0])
	again, err := net.Predict(inputs)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestNetworkTrainMatchesHandComputedStep(t *testing.T) {
	const lr = 0.5
	hidden := Layer{
		NewNeuronWithWeights([]float64{0.1, 0.2}, 0.1, lr),
		NewNeuronWithWeights([]float64{-0.3, 0.4}, -0.2, lr),
	}
	out := Layer{NewNeuronWithWeights([]float64{0.5, -0.6}, 0.3, lr)}
	net, err := NewNetwork([]Layer{hidden, out}, WithLogger(discardLogger()))
	require.NoError(t, err)

	x := []float64{1, 0.5}
	h0 := sigmoid(0.1 + 0.1*1 + 0.2*0.5)
	h1 := sigmoid(-0.2 + -0.3*1 + 0.4*0.5)
	o := sigmoid(0.3 + 0.5*h0 + -0.6*h1)
	e := 1 - o

	// hidden terms use the output weights before they are updated and are
	// not scaled by the output derivative
	t0 := e * 0.5
	t1 := e * -0.6
	a0 := t0 * h0 * (1 - h0)
	a1 := t1 * h1 * (1 - h1)
	ao := e * o * (1 - o)

	got, err := net.Train(x, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Abs(e), got, 1e-15)

	assertParams := func(n *Neuron, weights []float64, bias float64) {
		t.Helper()
		w := n.Weights()
		require.Len(t, w, len(weights))
		for i := range weights {
			assert.InDelta(t, weights[i], w[i], 1e-12, "weight %d", i)
		}
		assert.InDelta(t, bias, n.Bias(), 1e-12)
	}
	assertParams(hidden[0], []float64{0.1 + lr*a0*1, 0.2 + lr*a0*0.5}, 0.1+lr*a0)
	assertParams(hidden[1], []float64{-0.3 + lr*a1*1, 0.4 + lr*a1*0.5}, -0.2+lr*a1)
	assertParams(out[0], []float64{0.5 + lr*ao*h0, -0.6 + lr*ao*h1}, 0.3+lr*ao)
}

func TestNetworkTrainSingleLayer(t *testing.T) {
	out := NewNeuronWithWeights([]float64{0, 0}, 0, 0.5)
	net, err := NewNetwork([]Layer{{out}})
	require.NoError(t, err)

	got, err := net.Train([]float64{1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)

	ref := NewNeuronWithWeights([]float64{0, 0}, 0, 0.5)
	_, err = ref.Train([]float64{1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, ref.Weights(), out.Weights())
	assert.Equal(t, ref.Bias(), out.Bias())
}

func TestNetworkTrainReducesErrorOnOneSample(t *testing.T) {
	net, err := Build([]int{2, 1}, 2, 0.5, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	x := []float64{1, 1}

	first, err := net.Train(x, 1)
	require.NoError(t, err)
	var last float64
	for i := 0; i < 50; i++ {
		last, err = net.Train(x, 1)
		require.NoError(t, err)
	}
	assert.Less(t, last, first)
	assert.GreaterOrEqual(t, last, 0.0)
}

func TestTrainOnDataset(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	net, err := Build([]int{10, 3, 1}, 100, 0.1, rng, WithLogger(discardLogger()))
	require.NoError(t, err)
	samples := faceLikeSamples(rng, 8)

	var seen []int
	history, err := net.TrainOnDataset(samples, 10, func(epoch int, avg float64, _ time.Duration) {
		seen = append(seen, epoch)
	})
	require.NoError(t, err)
	require.Len(t, history, 10)
	for _, v := range history {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)

	res, err := net.Test(samples)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Accuracy, 0.0)
	assert.LessOrEqual(t, res.Accuracy, 100.0)
	assert.InDelta(t, res.TotalTestError/8, res.AvgTestError, 1e-12)
}

func TestTrainOnDatasetEdgeCases(t *testing.T) {
	net, err := Build([]int{1}, 2, 0.1, rand.New(rand.NewSource(1)), WithLogger(discardLogger()))
	require.NoError(t, err)
	samples := []Sample{{Inputs: []float64{1, 0}, Label: 1}}

	history, err := net.TrainOnDataset(samples, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = net.TrainOnDataset(samples, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidEpochs)

	_, err = net.TrainOnDataset(nil, 3, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = net.Test(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = net.TrainOnDataset([]Sample{{Inputs: []float64{1}, Label: 1}}, 1, nil)
	assert.ErrorIs(t, err, ErrInputSizeMismatch)
}

func TestTrainOnDatasetDeterministicForSeed(t *testing.T) {
	run := func() []float64 {
		rng := rand.New(rand.NewSource(5))
		net, err := Build([]int{4, 2, 1}, 100, 0.1, rng, WithLogger(discardLogger()))
		require.NoError(t, err)
		history, err := net.TrainOnDataset(faceLikeSamples(rng, 6), 3, nil)
		require.NoError(t, err)
		return history
	}
	assert.Equal(t, run(), run())
}
