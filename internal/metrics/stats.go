package metrics

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Window accumulates timing and error stats across training epochs.
type Window struct {
	samples int
	compute time.Duration
	errs    []float64
}

// Record adds one epoch's measurement to the window.
func (w *Window) Record(samples int, computeTime time.Duration, avgError float64) {
	w.samples += samples
	w.compute += computeTime
	w.errs = append(w.errs, avgError)
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Epochs: len(w.errs)}
	if w.compute > 0 {
		snap.SamplesPerSec = float64(w.samples) / w.compute.Seconds()
	}
	if len(w.errs) > 0 {
		snap.AvgEpochMS = (w.compute.Seconds() * 1000) / float64(len(w.errs))
		snap.MeanError = stat.Mean(w.errs, nil)
		snap.LastError = w.errs[len(w.errs)-1]
	}

	w.samples = 0
	w.compute = 0
	w.errs = w.errs[:0]
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Epochs        int
	SamplesPerSec float64
	AvgEpochMS    float64
	MeanError     float64
	LastError     float64
}
