// Package config loads grid-search parameters from YAML, following
// abworrall-eclipse-hdr's estack.Configuration:
// NewConfiguration/LoadConfiguration/FinalizeConfiguration split.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// SearchConfiguration holds the grid-search parameters exposed by
// search.StackSearch's external interface.
type SearchConfiguration struct {
	AngleSteps    int     `yaml:"angle_steps"`
	VelocitySteps int     `yaml:"velocity_steps"`
	MinAngle      float64 `yaml:"min_angle"`
	MaxAngle      float64 `yaml:"max_angle"`
	MinVelocity   float64 `yaml:"min_velocity"`
	MaxVelocity   float64 `yaml:"max_velocity"`

	MinObservations int     `yaml:"min_observations"`
	MinLH           float64 `yaml:"min_lh"`

	SigmaGEnabled     bool    `yaml:"sigma_g_enabled"`
	SigmaGPercentileL float64 `yaml:"sigma_g_percentile_l"`
	SigmaGPercentileH float64 `yaml:"sigma_g_percentile_h"`
	SigmaGCoefficient float64 `yaml:"sigma_g_coefficient"`

	EncodingBytes int `yaml:"encoding_bytes"`

	StartX0 int `yaml:"start_x0"`
	StartX1 int `yaml:"start_x1"`
	StartY0 int `yaml:"start_y0"`
	StartY1 int `yaml:"start_y1"`
}

// NewSearchConfiguration returns the defaults: a 128x64 angle/velocity grid
// over [-pi,pi) x [0,2), no sigma-G filter, float encoding, min_observations
// 0 and min_lh 0. Unlike a bare StackSearch, whose minimum LH accepts any
// value, a min_lh of 0 drops trajectories with negative likelihood.
func NewSearchConfiguration() *SearchConfiguration {
	return &SearchConfiguration{
		AngleSteps:        128,
		VelocitySteps:     64,
		MinAngle:          -3.14159265358979,
		MaxAngle:          3.14159265358979,
		MinVelocity:       0,
		MaxVelocity:       2,
		MinObservations:   0,
		MinLH:             0,
		SigmaGPercentileL: 0.25,
		SigmaGPercentileH: 0.75,
		SigmaGCoefficient: 0.7413,
		EncodingBytes:     4,
	}
}

// LoadSearchConfiguration reads filename, unmarshals YAML over the
// defaults from NewSearchConfiguration, then Finalizes.
func LoadSearchConfiguration(filename string) (*SearchConfiguration, error) {
	cfg := NewSearchConfiguration()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the configuration, replaces an encoding width other
// than 1, 2 or 4 with 4, and replaces a non-positive sigma-G coefficient
// with 0.7413.
func (c *SearchConfiguration) Finalize() error {
	if c.AngleSteps <= 0 {
		return fmt.Errorf("angle_steps must be positive, got %d", c.AngleSteps)
	}
	if c.VelocitySteps <= 0 {
		return fmt.Errorf("velocity_steps must be positive, got %d", c.VelocitySteps)
	}
	if c.MaxAngle <= c.MinAngle {
		return fmt.Errorf("max_angle (%f) must exceed min_angle (%f)", c.MaxAngle, c.MinAngle)
	}
	if c.MaxVelocity <= c.MinVelocity {
		return fmt.Errorf("max_velocity (%f) must exceed min_velocity (%f)", c.MaxVelocity, c.MinVelocity)
	}
	if c.EncodingBytes != 1 && c.EncodingBytes != 2 && c.EncodingBytes != 4 {
		c.EncodingBytes = 4
	}
	if c.SigmaGCoefficient <= 0 {
		c.SigmaGCoefficient = 0.7413
	}
	return nil
}
