package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(make([]float32, shape.NumElements()), shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	t.Fill(value)
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	buf := make([]float32, len(data))
	copy(buf, data)
	return New(buf, shape), nil
}

// Uniform creates a tensor with values drawn uniformly from [low, high).
func Uniform(shape Shape, low, high float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	FillUniform(t, low, high, rng)
	return t
}

// FillUniform overwrites t with values drawn uniformly from [low, high).
func FillUniform(t *Tensor, low, high float64, rng *rand.Rand) {
	span := high - low
	for i := range t.data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		t.data[i] = float32(low + rng.Float64()*span)
	}
}

// Randn creates a tensor with values from the standard normal distribution.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		//nolint:gosec // Using math/rand for test data (not security-critical)
		t.data[i] = float32(rng.NormFloat64())
	}
	return t
}
