package dataset

import (
	"math/rand"

	"facenet/internal/model"
)

// Shuffle permutes samples in place using rng.
func Shuffle(samples []model.Sample, rng *rand.Rand) {
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}
