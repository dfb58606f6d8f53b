// Package cpu implements the CPU backend on top of gonum BLAS.
package cpu

import (
	"github.com/radarml/rdcnn/internal/parallel"
	"github.com/radarml/rdcnn/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Convolutions are lowered to GEMM via im2col; element-wise and per-channel
// kernels are split across workers with internal/parallel.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend using every available logical core.
func New() *CPUBackend {
	return &CPUBackend{
		parallel: parallel.DefaultConfig(),
	}
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// ParallelConfig returns the worker configuration in use.
func (cpu *CPUBackend) ParallelConfig() parallel.Config {
	return cpu.parallel
}

var _ tensor.Backend = (*CPUBackend)(nil)
