package nn

import (
	"fmt"

	"github.com/radarml/rdcnn/internal/tensor"
)

// Parameter represents a learnable parameter in a neural network.
//
// Training happens outside this module; a Parameter only names the tensor
// so that callers can find and update the values in place.
//
// Example:
//
//	weight := nn.NewParameter("conv2d.weight", weightTensor)
//	w := weight.Tensor()
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new learnable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// loadInto copies src into dst after checking the shape.
func loadInto(stateDict map[string]*tensor.Tensor, key string, dst *tensor.Tensor) error {
	src, ok := stateDict[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingTensor, key)
	}
	if !src.Shape().Equal(dst.Shape()) {
		return fmt.Errorf("%w: %q expected %v, got %v", ErrShapeMismatch, key, dst.Shape(), src.Shape())
	}
	dst.CopyFrom(src)
	return nil
}
