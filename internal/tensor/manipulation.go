package tensor

import "fmt"

// splitAt returns the product of dims before dim and after dim.
func splitAt(shape Shape, dim int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, inner
}

// Narrow returns a copy of the slice [start, start+length) along dim.
//
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	x := tensor.Zeros(Shape{2, 1, 4, 6})
//	re := x.Narrow(-1, 0, 3) // Shape: [2, 1, 4, 3]
//	im := x.Narrow(-1, 3, 3) // Shape: [2, 1, 4, 3]
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	dim = normalizeDim(dim, len(t.shape))
	size := t.shape[dim]
	if start < 0 || length <= 0 || start+length > size {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d of size %d", start, start+length, dim, size))
	}

	outer, inner := splitAt(t.shape, dim)
	outShape := t.shape.Clone()
	outShape[dim] = length
	out := make([]float32, outer*length*inner)

	block := length * inner
	for o := 0; o < outer; o++ {
		src := o*size*inner + start*inner
		copy(out[o*block:(o+1)*block], t.data[src:src+block])
	}
	return New(out, outShape)
}

// Select returns a copy of index along dim with that dimension removed.
//
// Example:
//
//	x := tensor.Zeros(Shape{2, 3, 4})
//	y := x.Select(1, 0) // Shape: [2, 4]
func (t *Tensor) Select(dim, index int) *Tensor {
	dim = normalizeDim(dim, len(t.shape))
	narrowed := t.Narrow(dim, index, 1)
	return narrowed.Squeeze(dim)
}

// Squeeze removes a dimension of size 1 at the specified position.
//
// Panics if the dimension size is not 1.
// This is a view operation (no data copy).
func (t *Tensor) Squeeze(dim int) *Tensor {
	dim = normalizeDim(dim, len(t.shape))
	if t.shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, t.shape[dim]))
	}
	shape := make(Shape, 0, len(t.shape)-1)
	shape = append(shape, t.shape[:dim]...)
	shape = append(shape, t.shape[dim+1:]...)
	return New(t.data, shape)
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a := tensor.Zeros(Shape{2, 3})
//	b := tensor.Zeros(Shape{2, 5})
//	c := tensor.Cat([]*Tensor{a, b}, 1) // Shape: [2, 8]
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	first := tensors[0].shape
	dim = normalizeDim(dim, len(first))

	total := 0
	for i, t := range tensors {
		if len(t.shape) != len(first) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, expected %d", i, len(t.shape), len(first)))
		}
		for d := range first {
			if d != dim && t.shape[d] != first[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v incompatible with %v on dimension %d", i, t.shape, first, d))
			}
		}
		total += t.shape[dim]
	}

	outShape := first.Clone()
	outShape[dim] = total
	outer, inner := splitAt(first, dim)
	out := make([]float32, outShape.NumElements())

	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.shape[dim] * inner
			copy(out[pos:pos+block], t.data[o*block:(o+1)*block])
			pos += block
		}
	}
	return New(out, outShape)
}
