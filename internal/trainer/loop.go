package trainer

import (
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"facenet/internal/config"
	"facenet/internal/dataset"
	"facenet/internal/metrics"
	"facenet/internal/model"
	"facenet/internal/viz"
)

const (
	plotWidth  = 640
	plotHeight = 400
)

// RunConfig captures the knobs required by a training run.
type RunConfig struct {
	TrainPaths    []string
	TestPaths     []string
	Model         string
	Layers        []int
	InputSize     int
	LearningRate  float64
	Epochs        int
	Seed          int64
	Shuffle       bool
	LogEvery      int
	PlotPath      string
	PredictImages []string
	Logger        *slog.Logger
}

// FromConfig resolves dataset locations and copies the run knobs out of cfg.
func FromConfig(cfg *config.Config) (RunConfig, error) {
	run := RunConfig{
		Model:        cfg.Model,
		Layers:       cfg.Layers,
		InputSize:    cfg.InputSize,
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		Seed:         cfg.Seed,
		Shuffle:      cfg.Shuffle,
		LogEvery:     cfg.LogEvery,
		PlotPath:     cfg.PlotPath,
	}
	if cfg.TrainPath != "" {
		run.TrainPaths = []string{cfg.TrainPath}
	}
	if cfg.TestPath != "" {
		run.TestPaths = []string{cfg.TestPath}
	}
	if len(run.TrainPaths) == 0 || len(run.TestPaths) == 0 {
		splits, err := dataset.DiscoverSplits(cfg.DataDir)
		if err != nil {
			return RunConfig{}, err
		}
		if len(run.TrainPaths) == 0 {
			run.TrainPaths = splits.Train
		}
		if len(run.TestPaths) == 0 {
			run.TestPaths = splits.Test
		}
	}
	if len(run.TrainPaths) == 0 {
		return RunConfig{}, errors.Errorf("no training csv found under %s", cfg.DataDir)
	}
	if len(run.TestPaths) == 0 {
		return RunConfig{}, errors.Errorf("no test csv found under %s", cfg.DataDir)
	}
	return run, nil
}

// ImagePrediction is the model's output for one image file.
type ImagePrediction struct {
	Path       string
	Prediction float64
	Face       bool
}

// Report is the outcome of a run.
type Report struct {
	RunID       string
	EpochErrors []float64
	Test        model.TestResult
	Predictions []ImagePrediction
}

// Run loads the datasets, trains the configured model and evaluates it on the
// test split.
func Run(cfg RunConfig) (*Report, error) {
	if cfg.Epochs <= 0 {
		return nil, errors.New("trainer: epochs must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	report := &Report{RunID: uuid.NewString()}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run", report.RunID)

	trainSet, err := dataset.LoadAll(cfg.TrainPaths)
	if err != nil {
		return nil, err
	}
	testSet, err := dataset.LoadAll(cfg.TestPaths)
	if err != nil {
		return nil, err
	}
	logger.Info("datasets loaded", "train", len(trainSet), "test", len(testSet))

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Shuffle {
		dataset.Shuffle(trainSet, rng)
		dataset.Shuffle(testSet, rng)
	}

	var predictor model.Predictor
	switch cfg.Model {
	case config.ModelPerceptron:
		neuron := model.NewNeuron(cfg.InputSize, cfg.LearningRate, rng)
		report.EpochErrors, err = trainPerceptron(neuron, trainSet, cfg, logger)
		predictor = neuron
	case config.ModelNetwork, "":
		var net *model.Network
		net, err = model.Build(cfg.Layers, cfg.InputSize, cfg.LearningRate, rng, model.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("network built", "shape", net.Shape(), "inputs", net.InputSize(), "learning_rate", cfg.LearningRate)
		window := &metrics.Window{}
		report.EpochErrors, err = net.TrainOnDataset(trainSet, cfg.Epochs, throughputLogger(window, len(trainSet), cfg.LogEvery, logger))
		predictor = net
	default:
		return nil, errors.Errorf("trainer: unknown model %q", cfg.Model)
	}
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}

	report.Test, err = model.Evaluate(predictor, testSet, logger)
	if err != nil {
		return nil, errors.Wrap(err, "test")
	}
	logger.Info("test complete",
		"correct", report.Test.CorrectPredictions,
		"total_error", report.Test.TotalTestError,
		"accuracy", report.Test.Accuracy,
		"avg_error", report.Test.AvgTestError,
	)

	if cfg.PlotPath != "" {
		if err := writePlot(cfg.PlotPath, report.EpochErrors); err != nil {
			return nil, err
		}
		logger.Info("error curve written", "path", cfg.PlotPath)
	}

	for _, path := range cfg.PredictImages {
		p, err := predictImage(predictor, path, cfg.InputSize)
		if err != nil {
			return nil, err
		}
		logger.Info("image classified", "path", p.Path, "prediction", p.Prediction, "face", p.Face)
		report.Predictions = append(report.Predictions, p)
	}

	return report, nil
}

// trainPerceptron trains a lone neuron sample by sample and reports the mean
// absolute error of each epoch.
func trainPerceptron(neuron *model.Neuron, samples []model.Sample, cfg RunConfig, logger *slog.Logger) ([]float64, error) {
	if len(samples) == 0 {
		return nil, model.ErrEmptyDataset
	}
	window := &metrics.Window{}
	onEpoch := throughputLogger(window, len(samples), cfg.LogEvery, logger)
	history := make([]float64, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		start := time.Now()
		var total float64
		for i, s := range samples {
			res, err := neuron.Train(s.Inputs, s.Label)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", epoch, i)
			}
			total += math.Abs(res.Error)
		}
		avg := total / float64(len(samples))
		history = append(history, avg)
		logger.Info("epoch complete", "epoch", epoch, "avg_error", avg)
		onEpoch(epoch, avg, time.Since(start))
	}
	return history, nil
}

func throughputLogger(window *metrics.Window, samples, every int, logger *slog.Logger) model.EpochFunc {
	return func(epoch int, avgError float64, elapsed time.Duration) {
		window.Record(samples, elapsed, avgError)
		if epoch%every != 0 {
			return
		}
		snap := window.Snapshot()
		logger.Debug("throughput",
			"epoch", epoch,
			"samples_per_sec", snap.SamplesPerSec,
			"epoch_ms", snap.AvgEpochMS,
			"mean_error", snap.MeanError,
		)
	}
}

func writePlot(path string, epochErrors []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create plot")
	}
	if err := viz.WriteErrorCurve(f, epochErrors, plotWidth, plotHeight); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func predictImage(p model.Predictor, path string, inputSize int) (ImagePrediction, error) {
	grid, err := dataset.LoadImageGrid(path, dataset.GridSize)
	if err != nil {
		return ImagePrediction{}, err
	}
	if len(grid) != inputSize {
		return ImagePrediction{}, errors.Errorf("%s: grid has %d cells, model takes %d", path, len(grid), inputSize)
	}
	v, err := p.Predict(grid)
	if err != nil {
		return ImagePrediction{}, errors.Wrap(err, path)
	}
	return ImagePrediction{Path: path, Prediction: v, Face: v >= 0.5}, nil
}
