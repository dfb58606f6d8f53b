package cpu

import (
	"fmt"

	"github.com/radarml/rdcnn/internal/parallel"
	"github.com/radarml/rdcnn/internal/tensor"
)

// ReLU applies max(0, x) element-wise and returns a new tensor.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.Zeros(x.Shape())
	src := x.Data()
	dst := out.Data()

	const block = 4096
	blocks := (len(src) + block - 1) / block
	parallel.For(blocks, func(i int) {
		start := i * block
		end := min(start+block, len(src))
		for j := start; j < end; j++ {
			if v := src[j]; v > 0 {
				dst[j] = v
			}
		}
	}, cpu.coarseConfig())

	return out
}

// ChannelMoments returns per-channel mean and biased variance of an
// [N, C, H, W] tensor.
//
// Accumulation is done in float64 to keep large spatial planes stable.
func (cpu *CPUBackend) ChannelMoments(x *tensor.Tensor) (mean, variance []float32) {
	n, c, plane := channelLayout("channel_moments", x)
	data := x.Data()
	count := float64(n * plane)

	mean = make([]float32, c)
	variance = make([]float32, c)

	parallel.For(c, func(ch int) {
		var sum float64
		for b := 0; b < n; b++ {
			base := (b*c + ch) * plane
			for _, v := range data[base : base+plane] {
				sum += float64(v)
			}
		}
		mu := sum / count

		var sq float64
		for b := 0; b < n; b++ {
			base := (b*c + ch) * plane
			for _, v := range data[base : base+plane] {
				d := float64(v) - mu
				sq += d * d
			}
		}

		mean[ch] = float32(mu)
		variance[ch] = float32(sq / count)
	}, cpu.coarseConfig())

	return mean, variance
}

// ChannelAffine returns x*scale[c] + shift[c] for an [N, C, H, W] tensor.
func (cpu *CPUBackend) ChannelAffine(x *tensor.Tensor, scale, shift []float32) *tensor.Tensor {
	n, c, plane := channelLayout("channel_affine", x)
	if len(scale) != c || len(shift) != c {
		panic(fmt.Sprintf("channel_affine: expected %d scale/shift values, got %d/%d", c, len(scale), len(shift)))
	}

	out := tensor.Zeros(x.Shape())
	src := x.Data()
	dst := out.Data()

	parallel.ForBatch(n, c, func(b, ch int) {
		base := (b*c + ch) * plane
		s, t := scale[ch], shift[ch]
		for i := base; i < base+plane; i++ {
			dst[i] = src[i]*s + t
		}
	}, cpu.coarseConfig())

	return out
}

// channelLayout validates an NCHW tensor and returns N, C and H*W.
func channelLayout(op string, x *tensor.Tensor) (n, c, plane int) {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %dD", op, len(shape)))
	}
	return shape[0], shape[1], shape[2] * shape[3]
}

// coarseConfig is used when each work item is already a large block
// (an element block, a channel plane or an im2col row).
func (cpu *CPUBackend) coarseConfig() parallel.Config {
	cfg := cpu.parallel
	cfg.MinChunkSize = 1
	return cfg
}
