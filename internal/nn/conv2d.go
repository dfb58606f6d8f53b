package nn

import (
	"fmt"
	"math/rand"

	"github.com/radarml/rdcnn/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*pad_h - kernel_h) / stride + 1
//	out_w = (width + 2*pad_w - kernel_w) / stride + 1
//
// Example:
//
//	// 2 channels -> 16 channels, 3x3 kernel, same padding
//	conv := nn.NewConv2D(2, 16, 3, 3, 1, [2]int{1, 1}, true, backend, rng)
//	output := conv.Forward(input) // [N, 16, H, W]
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     [2]int
	useBias     bool

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels] or nil
	ones   []float32  // unit scale for the bias affine

	backend tensor.Backend
	rng     *rand.Rand
}

// NewConv2D creates a new 2D convolutional layer with Kaiming-uniform weights.
//
// Parameters:
//   - inChannels: Number of input channels
//   - outChannels: Number of output channels (number of filters)
//   - kernelH, kernelW: Kernel dimensions
//   - stride: Stride for convolution
//   - padding: Zero padding [pad_h, pad_w] applied to both sides
//   - useBias: Whether to include bias term
//   - backend: Backend for computation
//   - rng: Random source used now and by ResetParameters
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride int,
	padding [2]int,
	useBias bool,
	backend tensor.Backend,
	rng *rand.Rand,
) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding[0] < 0 || padding[1] < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %v", padding))
	}

	c := &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		useBias:     useBias,
		weight:      NewParameter("conv2d.weight", tensor.Zeros(tensor.Shape{outChannels, inChannels, kernelH, kernelW})),
		backend:     backend,
		rng:         rng,
	}

	if useBias {
		c.bias = NewParameter("conv2d.bias", tensor.Zeros(tensor.Shape{outChannels}))
		c.ones = make([]float32, outChannels)
		for i := range c.ones {
			c.ones[i] = 1
		}
	}

	c.ResetParameters()
	return c
}

// ResetParameters re-initializes weight and bias.
//
// Weights: Kaiming uniform, bound 1/sqrt(fan_in)
// Bias: U(-1/sqrt(fan_in), 1/sqrt(fan_in))
func (c *Conv2D) ResetParameters() {
	fanIn := c.inChannels * c.kernelSize[0] * c.kernelSize[1]
	KaimingUniform(c.weight.Tensor(), fanIn, c.rng)
	if c.useBias {
		FanInUniform(c.bias.Tensor(), fanIn, c.rng)
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	output := c.backend.Conv2D(input, c.weight.Tensor(), c.stride, c.padding)
	if c.useBias {
		output = c.backend.ChannelAffine(output, c.ones, c.bias.Tensor().Data())
	}
	return output
}

// Parameters returns all learnable parameters.
func (c *Conv2D) Parameters() []*Parameter {
	if c.useBias {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// StateDict returns the weight and, if present, the bias.
func (c *Conv2D) StateDict() map[string]*tensor.Tensor {
	stateDict := map[string]*tensor.Tensor{
		"weight": c.weight.Tensor(),
	}
	if c.useBias {
		stateDict["bias"] = c.bias.Tensor()
	}
	return stateDict
}

// LoadStateDict loads weight and bias from a state dictionary.
func (c *Conv2D) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	if err := loadInto(stateDict, "weight", c.weight.Tensor()); err != nil {
		return err
	}
	if c.useBias {
		if err := loadInto(stateDict, "bias", c.bias.Tensor()); err != nil {
			return err
		}
	}
	return nil
}

// String returns a string representation of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2d(%d, %d, kernel_size=(%d, %d), stride=(%d, %d), padding=(%d, %d), bias=%v)",
		c.inChannels, c.outChannels,
		c.kernelSize[0], c.kernelSize[1],
		c.stride, c.stride,
		c.padding[0], c.padding[1], c.useBias)
}

// InChannels returns the number of input channels.
func (c *Conv2D) InChannels() int {
	return c.inChannels
}

// OutChannels returns the number of output channels.
func (c *Conv2D) OutChannels() int {
	return c.outChannels
}

// KernelSize returns the kernel size [height, width].
func (c *Conv2D) KernelSize() [2]int {
	return c.kernelSize
}

// Stride returns the stride.
func (c *Conv2D) Stride() int {
	return c.stride
}

// Padding returns the padding [height, width].
func (c *Conv2D) Padding() [2]int {
	return c.padding
}

// Weight returns the weight parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// Bias returns the bias parameter, or nil when the layer has no bias.
func (c *Conv2D) Bias() *Parameter {
	return c.bias
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (c *Conv2D) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH+2*c.padding[0]-c.kernelSize[0])/c.stride + 1
	outW := (inputW+2*c.padding[1]-c.kernelSize[1])/c.stride + 1
	return [2]int{outH, outW}
}
