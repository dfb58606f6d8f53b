// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"github.com/radarml/rdcnn/internal/tensor"
)

// MagCNN is the magnitude-only variant of RICNN.
//
// It takes a single channel of shape (1, 1024, 128) by default and otherwise
// behaves exactly like RICNN: input [batch, 1, bins, ramps] produces output
// [batch, bins, ramps].
type MagCNN struct {
	*RICNN
}

// NewMagCNN builds a magnitude model with default padding, batch
// normalization enabled and input size (1, 1024, 128).
//
// Zero arguments select the defaults (6 layers, 16 filters, 3x3 filters).
func NewMagCNN(numConvLayers, numFilters int, filterSize [2]int, backend tensor.Backend, opts ...Option) (*MagCNN, error) {
	return NewMagCNNFromConfig(Config{
		NumConvLayers: numConvLayers,
		NumFilters:    numFilters,
		FilterSize:    filterSize,
	}, backend, opts...)
}

// NewMagCNNFromConfig builds a magnitude model from cfg with the channel
// count forced to 1. Unset feature-bin and ramp sizes default to 1024 and
// 128.
func NewMagCNNFromConfig(cfg Config, backend tensor.Backend, opts ...Option) (*MagCNN, error) {
	if cfg.InputSize == [3]int{} {
		cfg.InputSize = [3]int{1, DefaultFeatureBins, DefaultRamps}
	}
	cfg.InputSize[0] = 1

	base, err := NewRICNN(cfg, backend, opts...)
	if err != nil {
		return nil, err
	}
	base.name = "MagCNN"
	return &MagCNN{RICNN: base}, nil
}
