// Package config loads the optional YAML run configuration: detector
// thresholds and plot styling.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ir/peaks"
	"github.com/cwbudde/algo-ir/plot"
)

// Detector mirrors peaks.Config; zero fields keep the detector defaults.
type Detector struct {
	MinProminence   float64 `yaml:"min_prominence"`
	MinSeparation   float64 `yaml:"min_separation"`
	SmoothingWindow int     `yaml:"smoothing_window"`
	MinWidth        float64 `yaml:"min_width"`
	BroadWidth      float64 `yaml:"broad_width"`
}

// PeaksConfig converts the YAML form to the detector's config type.
func (d Detector) PeaksConfig() peaks.Config {
	return peaks.Config{
		MinProminence:   d.MinProminence,
		MinSeparation:   d.MinSeparation,
		SmoothingWindow: d.SmoothingWindow,
		MinWidth:        d.MinWidth,
		BroadWidth:      d.BroadWidth,
	}
}

// Config is the full run configuration.
type Config struct {
	Detector Detector   `yaml:"detector"`
	Plot     plot.Style `yaml:"plot"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Plot: plot.DefaultStyle(),
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults unchanged; keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
