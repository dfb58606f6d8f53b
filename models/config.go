// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a model configuration is rejected.
var ErrInvalidConfig = errors.New("invalid model config")

// Default configuration values.
const (
	DefaultNumConvLayers = 6
	DefaultNumFilters    = 16
	DefaultFeatureBins   = 1024
	DefaultRamps         = 128
)

// DefaultFilterSize is the default convolution kernel size.
var DefaultFilterSize = [2]int{3, 3}

// Config describes the topology of a range-Doppler CNN.
//
// Zero values mean "not set" and are replaced by WithDefaults:
// NumConvLayers 6, NumFilters 16, FilterSize 3x3, Padding half the filter
// size (same padding for odd kernels), UseBatchNorm true and InputSize
// (2, 1024, 128).
type Config struct {
	NumConvLayers int     `yaml:"num_conv_layers"`
	NumFilters    int     `yaml:"num_filters"`
	FilterSize    [2]int  `yaml:"filter_size"`
	Padding       *[2]int `yaml:"padding,omitempty"`
	UseBatchNorm  *bool   `yaml:"use_batch_norm,omitempty"`

	// InputSize is (channels, feature bins, ramps). Channels is 2 for
	// real/imaginary input and 1 for magnitude input.
	InputSize [3]int `yaml:"input_size"`

	// Seed drives parameter initialization and ResetParameters.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the real/imaginary configuration with every field set.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// DefaultMagConfig returns the magnitude configuration with every field set.
func DefaultMagConfig() Config {
	return Config{InputSize: [3]int{1, DefaultFeatureBins, DefaultRamps}}.WithDefaults()
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	c = c.clone()
	if c.NumConvLayers == 0 {
		c.NumConvLayers = DefaultNumConvLayers
	}
	if c.NumFilters == 0 {
		c.NumFilters = DefaultNumFilters
	}
	if c.FilterSize == [2]int{} {
		c.FilterSize = DefaultFilterSize
	}
	if c.Padding == nil {
		c.Padding = &[2]int{c.FilterSize[0] / 2, c.FilterSize[1] / 2}
	}
	if c.UseBatchNorm == nil {
		enabled := true
		c.UseBatchNorm = &enabled
	}
	if c.InputSize == [3]int{} {
		c.InputSize = [3]int{2, DefaultFeatureBins, DefaultRamps}
	}
	return c
}

// clone returns a copy of c that shares no pointers with it.
func (c Config) clone() Config {
	if c.Padding != nil {
		padding := *c.Padding
		c.Padding = &padding
	}
	if c.UseBatchNorm != nil {
		enabled := *c.UseBatchNorm
		c.UseBatchNorm = &enabled
	}
	return c
}

// Validate checks a configuration that has already gone through WithDefaults.
func (c Config) Validate() error {
	if c.NumConvLayers < 2 {
		return fmt.Errorf("%w: num_conv_layers must be >= 2, got %d", ErrInvalidConfig, c.NumConvLayers)
	}
	if c.NumFilters < 1 {
		return fmt.Errorf("%w: num_filters must be >= 1, got %d", ErrInvalidConfig, c.NumFilters)
	}
	if c.FilterSize[0] < 1 || c.FilterSize[1] < 1 {
		return fmt.Errorf("%w: filter_size must be positive, got %v", ErrInvalidConfig, c.FilterSize)
	}
	if c.Padding == nil {
		return fmt.Errorf("%w: padding is not set", ErrInvalidConfig)
	}
	if c.Padding[0] < 0 || c.Padding[1] < 0 {
		return fmt.Errorf("%w: padding must be non-negative, got %v", ErrInvalidConfig, *c.Padding)
	}
	if c.UseBatchNorm == nil {
		return fmt.Errorf("%w: use_batch_norm is not set", ErrInvalidConfig)
	}

	channels, bins, ramps := c.InputSize[0], c.InputSize[1], c.InputSize[2]
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: input channels must be 1 (magnitude) or 2 (real/imaginary), got %d", ErrInvalidConfig, channels)
	}
	if bins < 1 || ramps < 1 {
		return fmt.Errorf("%w: input_size must be positive, got %v", ErrInvalidConfig, c.InputSize)
	}

	// Every stage must keep at least one output row and column.
	outH := bins + c.NumConvLayers*(2*c.Padding[0]-c.FilterSize[0]+1)
	outW := ramps + c.NumConvLayers*(2*c.Padding[1]-c.FilterSize[1]+1)
	if outH < 1 || outW < 1 {
		return fmt.Errorf("%w: %d layers of %v filters with padding %v shrink input %v below 1x1",
			ErrInvalidConfig, c.NumConvLayers, c.FilterSize, *c.Padding, c.InputSize)
	}
	return nil
}

// BatchNorm reports whether middle stages include batch normalization.
func (c Config) BatchNorm() bool {
	return c.UseBatchNorm == nil || *c.UseBatchNorm
}

// Channels returns the configured input channel count.
func (c Config) Channels() int {
	return c.InputSize[0]
}

// LoadConfig reads a YAML model configuration.
//
// Unknown keys are rejected. Defaults are not applied; the model
// constructors do that.
func LoadConfig(path string) (Config, error) {
	//nolint:gosec // G304: Config path comes from user input
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML model configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// YAML encodes the configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
