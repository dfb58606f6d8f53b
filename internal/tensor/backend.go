package tensor

// Backend defines the interface that compute backends must implement.
// Backends handle the numeric kernels used by nn modules.
//
// Implementations:
//   - CPU: gonum BLAS GEMM with parallel im2col (internal/backend/cpu)
type Backend interface {
	// Conv2D performs a 2D cross-correlation.
	//
	// Input shape:  [N, C_in, H, W]
	// Kernel shape: [C_out, C_in, K_h, K_w]
	// Output shape: [N, C_out, H_out, W_out]
	// padding is [pad_h, pad_w], applied symmetrically.
	Conv2D(input, kernel *Tensor, stride int, padding [2]int) *Tensor

	// ReLU applies max(0, x) element-wise.
	ReLU(x *Tensor) *Tensor

	// ChannelMoments returns the per-channel mean and biased variance of an
	// [N, C, H, W] tensor, reduced over N, H and W.
	ChannelMoments(x *Tensor) (mean, variance []float32)

	// ChannelAffine returns x*scale[c] + shift[c] for an [N, C, H, W] tensor.
	ChannelAffine(x *Tensor, scale, shift []float32) *Tensor

	// Name returns the backend name.
	Name() string
}
