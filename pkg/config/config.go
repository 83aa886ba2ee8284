// Package config provides configuration loading and management for
// neurovolume. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Fetch parameters for retrieving remote images
	Fetch struct {
		// TimeoutMillis bounds a single transfer in milliseconds
		TimeoutMillis int64 `yaml:"timeoutMillis"`

		// ReportProgress enables incremental progress output during
		// transfers whose total length is known
		ReportProgress bool `yaml:"reportProgress"`
	} `yaml:"fetch"`

	// Decode parameters for the volumetric decoder
	Decode struct {
		// MaxInputBytes rejects inputs larger than this before decoding.
		// Inputs are practically capped at tens to low hundreds of
		// megabytes by the surrounding application.
		MaxInputBytes int64 `yaml:"maxInputBytes"`
	} `yaml:"decode"`

	// Output parameters
	Output struct {
		// HistogramBins is the number of bins in the intensity histogram
		HistogramBins int `yaml:"histogramBins"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Fetch.TimeoutMillis = 60000
	cfg.Fetch.ReportProgress = true

	cfg.Decode.MaxInputBytes = 512 << 20

	cfg.Output.HistogramBins = 16
	cfg.Output.Verbose = true

	return cfg
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutMillis) * time.Millisecond
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
