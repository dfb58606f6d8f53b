// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
package cpu

import (
	internalcpu "github.com/radarml/rdcnn/internal/backend/cpu"
	"github.com/radarml/rdcnn/tensor"
)

// Backend represents the CPU backend implementation.
//
// Convolutions run as im2col + gonum BLAS GEMM; element-wise and
// per-channel kernels are spread over the logical cores.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	model, err := models.NewRICNN(models.Config{}, backend)
func New() *Backend {
	return internalcpu.New()
}
