// Package nn implements the neural network modules the rdcnn models are built from.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named learnable tensors
//   - Conv2D, BatchNorm2D, ReLU: Layer primitives
//   - Sequential: Container for stacking layers
//
// Optional capabilities are expressed as small interfaces (Resetter,
// Trainable) and discovered with type assertions, so containers can apply
// them to whichever children support them.
package nn

import (
	"errors"

	"github.com/radarml/rdcnn/internal/tensor"
)

// Errors returned when loading state dictionaries.
var (
	ErrMissingTensor = errors.New("missing tensor in state dict")
	ErrShapeMismatch = errors.New("tensor shape mismatch")
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all learnable parameters
//   - StateDict / LoadStateDict: Export and import persistent tensors
//
// Modules can be composed to build complex architectures:
//
//	stage := nn.NewSequential(
//	    nn.NewConv2D(2, 16, 3, 3, 1, [2]int{1, 1}, true, backend, rng),
//	    nn.NewReLU(backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all learnable parameters of this module.
	//
	// Returns an empty slice for modules without learnable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter

	// StateDict returns the tensors that make up the module's state,
	// keyed by name. The returned tensors share storage with the module.
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict copies values from stateDict into the module.
	LoadStateDict(stateDict map[string]*tensor.Tensor) error
}

// Resetter is implemented by modules whose parameters can be re-initialized.
type Resetter interface {
	ResetParameters()
}

// Trainable is implemented by modules that behave differently in training
// and evaluation mode.
type Trainable interface {
	SetTraining(training bool)
}
