// Package train drives the optimization loop: epochs over shuffled
// batches, validation, early stopping, and the append-only History
// record of each run.
package train

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the training hyperparameters. Zero values are filled
// from DefaultConfig when loaded from file.
type Config struct {
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	LearningRate    float64 `yaml:"learning_rate"`
	ValidationSplit float64 `yaml:"validation_split"`

	// Early stopping on validation accuracy. Patience <= 0 disables it.
	EarlyStopMinDelta float64 `yaml:"early_stop_min_delta"`
	EarlyStopPatience int     `yaml:"early_stop_patience"`

	Seed     int64 `yaml:"seed"`
	Shuffle  bool  `yaml:"shuffle"`
	LogEvery int   `yaml:"log_every"`
}

// DefaultConfig returns the standard starting point for small-image
// classifiers.
func DefaultConfig() Config {
	return Config{
		Epochs:            10,
		BatchSize:         32,
		LearningRate:      0.001,
		ValidationSplit:   0.1,
		EarlyStopMinDelta: 0.001,
		EarlyStopPatience: 0,
		Seed:              1,
		Shuffle:           true,
		LogEvery:          1,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file
// only needs the keys it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the hyperparameters before training starts.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v", c.LearningRate)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("validation split %v outside [0, 1)", c.ValidationSplit)
	}
	if c.EarlyStopMinDelta < 0 {
		return fmt.Errorf("early stop min delta must not be negative, got %v", c.EarlyStopMinDelta)
	}
	return nil
}
