// Package tensor implements the dense float32 tensor used by the rdcnn model.
//
// Tensors are contiguous and row-major. Shape operations either return a view
// sharing the same storage (Reshape, Squeeze) or a fresh copy (Narrow,
// Select, Cat, Clone). Compute-heavy operations live behind the Backend
// interface so that nn modules never depend on a concrete device.
package tensor

import "fmt"

// Tensor is a dense float32 tensor with a fixed shape.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y := x.Reshape(3, 2) // shares storage with x
type Tensor struct {
	shape   Shape
	strides []int
	data    []float32
}

// New wraps data in a tensor of the given shape without copying.
//
// Panics if the shape is invalid or does not match len(data).
func New(data []float32, shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	if shape.NumElements() != len(data) {
		panic(fmt.Sprintf("tensor: shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data)))
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    data,
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the row-major strides of the tensor.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage.
//
// Writes through the returned slice are visible to every view of the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(indices ...int) float32 {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of size %d", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return t.data[offset]
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return New(data, t.shape)
}

// CopyFrom overwrites the tensor's values with src.
//
// Panics if the shapes differ.
func (t *Tensor) CopyFrom(src *Tensor) {
	if !t.shape.Equal(src.shape) {
		panic(fmt.Sprintf("tensor: copy shape mismatch %v vs %v", t.shape, src.shape))
	}
	copy(t.data, src.data)
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float32) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Reshape returns a view of the tensor with a new shape.
//
// A single dimension may be -1, in which case it is inferred from the
// element count. Panics if the new shape is incompatible.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape, err := Infer(dims, len(t.data))
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return New(t.data, shape)
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}
