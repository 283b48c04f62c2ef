// Package config handles configuration loading for the batch runner.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/bsaid97/go-buffer-overlap/overlap"
)

// Config is the root configuration for a batch run.
type Config struct {
	BufferM      float64 `yaml:"buffer_m"`      // buffer distance in meters, zero legal
	QuadSegments int     `yaml:"quad_segments"` // segments per quarter circle in buffer arcs
	Workers      int     `yaml:"workers"`       // parallel items, 0 means one per CPU
	OutDir       string  `yaml:"out_dir"`       // artifact directory, empty disables artifacts
	Shapefile    bool    `yaml:"shapefile"`     // also export overlap pieces as shapefiles
	LogLevel     string  `yaml:"log_level"`
	Pretty       bool    `yaml:"pretty"` // indent the output JSON
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		BufferM:      overlap.DefaultBufferM,
		QuadSegments: overlap.DefaultQuadSegs,
		LogLevel:     "info",
	}
}

// Load reads and parses the YAML configuration file from the specified
// path. An empty path returns the defaults; keys present in the file
// override them, so an explicit `buffer_m: 0` is honored.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values no run could work with.
func (c *Config) Validate() error {
	if c.BufferM < 0 {
		return fmt.Errorf("buffer_m must be >= 0, got %v", c.BufferM)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Shapefile && c.OutDir == "" {
		return fmt.Errorf("shapefile export requires out_dir")
	}
	return nil
}
