package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Model kinds.
const (
	ModelNetwork    = "network"
	ModelPerceptron = "perceptron"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir      string  `yaml:"data_dir"`
	TrainPath    string  `yaml:"train_path"`
	TestPath     string  `yaml:"test_path"`
	Model        string  `yaml:"model"`
	Layers       []int   `yaml:"layers"`
	InputSize    int     `yaml:"input_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	Seed         int64   `yaml:"seed"`
	Shuffle      bool    `yaml:"shuffle"`
	LogEvery     int     `yaml:"log_every"`
	LogLevel     string  `yaml:"log_level"`
	PlotPath     string  `yaml:"plot_path"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataDir      string
	TrainPath    string
	TestPath     string
	Model        string
	Epochs       int
	LearningRate float64
	Seed         int64
	LogLevel     string
	PlotPath     string
}

// Default returns the configuration of the reference face run.
func Default() *Config {
	return &Config{
		DataDir:      "training-data",
		Model:        ModelNetwork,
		Layers:       []int{10, 3, 1},
		InputSize:    100,
		LearningRate: 0.1,
		Epochs:       10,
		Seed:         42,
		Shuffle:      true,
		LogEvery:     1,
		LogLevel:     "info",
	}
}

// Load reads and validates a Config from YAML. Keys absent from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.TrainPath != "" {
		c.TrainPath = o.TrainPath
	}
	if o.TestPath != "" {
		c.TestPath = o.TestPath
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.PlotPath != "" {
		c.PlotPath = o.PlotPath
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" && (c.TrainPath == "" || c.TestPath == "") {
		return errors.New("data_dir or both train_path and test_path must be set")
	}
	switch c.Model {
	case ModelNetwork:
		if len(c.Layers) == 0 {
			return errors.New("layers must not be empty")
		}
		for i, size := range c.Layers {
			if size <= 0 {
				return errors.Errorf("layers[%d] must be > 0 (got %d)", i, size)
			}
		}
		if last := c.Layers[len(c.Layers)-1]; last != 1 {
			return errors.Errorf("output layer must have 1 neuron (got %d)", last)
		}
	case ModelPerceptron:
	default:
		return errors.Errorf("model must be %q or %q (got %q)", ModelNetwork, ModelPerceptron, c.Model)
	}
	if c.InputSize <= 0 {
		return errors.Errorf("input_size must be > 0 (got %d)", c.InputSize)
	}
	if !(c.LearningRate > 0) {
		return errors.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, errors.Wrapf(err, "log_level %q", s)
	}
	return level, nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
