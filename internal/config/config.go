// Package config loads the tuning parameters shared by the plexquant tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"plexquant/internal/kmeans"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const maxFileSize = 1 << 20

// Config is the root configuration. Fields missing from a file keep their
// Default values.
type Config struct {
	Clustering Clustering `yaml:"clustering"`
	Sampling   Sampling   `yaml:"sampling"`
	Workers    int        `yaml:"workers"`
	Output     Output     `yaml:"output"`
}

// Clustering configures palette size and the k-means stopping policy.
type Clustering struct {
	Clusters  int    `yaml:"clusters"`
	Threshold int64  `yaml:"threshold"`
	MaxEpochs int    `yaml:"max_epochs"`
	Seed      uint64 `yaml:"seed"`
}

// Sampling configures how much of a video is clustered.
type Sampling struct {
	// PixelsPerFrame is the number of random pixels clustered per frame.
	PixelsPerFrame int `yaml:"pixels_per_frame"`
	// SampleRate processes every Nth frame.
	SampleRate int `yaml:"sample_rate"`
}

// Output configures where results go.
type Output struct {
	Dir      string `yaml:"dir"`
	Compress bool   `yaml:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Clustering: Clustering{
			Clusters:  5,
			Threshold: kmeans.DefaultThreshold,
			MaxEpochs: kmeans.DefaultMaxEpochs,
		},
		Sampling: Sampling{
			PixelsPerFrame: 5000,
			SampleRate:     5,
		},
		Workers: runtime.NumCPU(),
		Output:  Output{Dir: "./results"},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return cfg, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Clustering.Clusters < 1:
		return fmt.Errorf("%w: clustering.clusters must be >= 1, got %d", ErrInvalid, c.Clustering.Clusters)
	case c.Clustering.Threshold < 0:
		return fmt.Errorf("%w: clustering.threshold must be >= 0, got %d", ErrInvalid, c.Clustering.Threshold)
	case c.Clustering.MaxEpochs < 1:
		return fmt.Errorf("%w: clustering.max_epochs must be >= 1, got %d", ErrInvalid, c.Clustering.MaxEpochs)
	case c.Sampling.PixelsPerFrame < 1:
		return fmt.Errorf("%w: sampling.pixels_per_frame must be >= 1, got %d", ErrInvalid, c.Sampling.PixelsPerFrame)
	case c.Sampling.SampleRate < 1:
		return fmt.Errorf("%w: sampling.sample_rate must be >= 1, got %d", ErrInvalid, c.Sampling.SampleRate)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalid, c.Workers)
	}
	return nil
}

// KMeans returns the stopping policy for kmeans.Run.
func (c Config) KMeans() kmeans.Config {
	return kmeans.Config{
		Threshold: c.Clustering.Threshold,
		MaxEpochs: c.Clustering.MaxEpochs,
	}
}
