package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarml/rdcnn/internal/parallel"
	"github.com/radarml/rdcnn/internal/tensor"
)

func TestBackendName(t *testing.T) {
	assert.Equal(t, "CPU", New().Name())
	assert.False(t, NewWithConfig(parallel.Sequential()).ParallelConfig().Enabled)
}

func TestReLU(t *testing.T) {
	backend := New()
	x := tensor.New([]float32{-2, -0.5, 0, 0.5, 3}, tensor.Shape{5})

	out := backend.ReLU(x)

	assert.Equal(t, []float32{0, 0, 0, 0.5, 3}, out.Data())
	assert.Equal(t, float32(-2), x.Data()[0], "input must not be modified")
}

func TestReLU_LargeInput(t *testing.T) {
	backend := New()
	n := 10000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i - n/2)
	}

	out := backend.ReLU(tensor.New(data, tensor.Shape{n}))

	for i, v := range out.Data() {
		assert.Equal(t, float32(max(i-n/2, 0)), v)
	}
}

func TestChannelMoments(t *testing.T) {
	backend := New()
	// [N=2, C=2, H=1, W=2]
	// channel 0: 1, 3, 5, 7  -> mean 4, var 5
	// channel 1: 2, 2, 2, 2  -> mean 2, var 0
	x := tensor.New([]float32{
		1, 3, 2, 2,
		5, 7, 2, 2,
	}, tensor.Shape{2, 2, 1, 2})

	mean, variance := backend.ChannelMoments(x)

	assert.InDeltaSlice(t, []float32{4, 2}, mean, 1e-6)
	assert.InDeltaSlice(t, []float32{5, 0}, variance, 1e-6)
}

func TestChannelAffine(t *testing.T) {
	backend := New()
	x := tensor.New([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, tensor.Shape{1, 2, 2, 2})

	out := backend.ChannelAffine(x, []float32{2, -1}, []float32{1, 0.5})

	assert.Equal(t, []float32{3, 5, 7, 9, -4.5, -5.5, -6.5, -7.5}, out.Data())
	assert.Panics(t, func() { backend.ChannelAffine(x, []float32{1}, []float32{1, 2}) })
	assert.Panics(t, func() { backend.ChannelAffine(tensor.Zeros(tensor.Shape{2, 2}), nil, nil) })
}

func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := tensor.New([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})

	// 1 0
	// 0 1
	kernel := tensor.New([]float32{1, 0, 0, 1}, tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 1, [2]int{0, 0})

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	// Diagonal sums of each 2x2 patch.
	assert.Equal(t, []float32{6, 8, 12, 14}, output.Data())
}

func TestConv2D_WithPadding(t *testing.T) {
	backend := New()
	input := tensor.Ones(tensor.Shape{1, 1, 3, 3})
	kernel := tensor.Ones(tensor.Shape{1, 1, 3, 3})

	output := backend.Conv2D(input, kernel, 1, [2]int{1, 1})

	require.Equal(t, tensor.Shape{1, 1, 3, 3}, output.Shape())
	// Each output counts the in-bounds taps.
	assert.Equal(t, []float32{
		4, 6, 4,
		6, 9, 6,
		4, 6, 4,
	}, output.Data())
}

func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// [1, 2, 2, 2]: channel 0 = 1..4, channel 1 = 10..40
	input := tensor.New([]float32{1, 2, 3, 4, 10, 20, 30, 40}, tensor.Shape{1, 2, 2, 2})

	// Two 1x1 kernels: out0 = in0 + in1, out1 = in1 - in0
	kernel := tensor.New([]float32{1, 1, -1, 1}, tensor.Shape{2, 2, 1, 1})

	output := backend.Conv2D(input, kernel, 1, [2]int{0, 0})

	require.Equal(t, tensor.Shape{1, 2, 2, 2}, output.Shape())
	assert.Equal(t, []float32{11, 22, 33, 44, 9, 18, 27, 36}, output.Data())
}

func TestConv2D_RectangularKernelAndBatch(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())

	// Batch of two 2x4 images.
	input := tensor.New([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,

		-1, -2, -3, -4,
		-5, -6, -7, -8,
	}, tensor.Shape{2, 1, 2, 4})

	// 1x3 horizontal sum kernel with width padding only.
	kernel := tensor.Ones(tensor.Shape{1, 1, 1, 3})

	output := backend.Conv2D(input, kernel, 1, [2]int{0, 1})

	require.Equal(t, tensor.Shape{2, 1, 2, 4}, output.Shape())
	assert.Equal(t, []float32{
		3, 6, 9, 7,
		11, 18, 21, 15,

		-3, -6, -9, -7,
		-11, -18, -21, -15,
	}, output.Data())
}

func TestConv2D_Stride(t *testing.T) {
	backend := New()
	input := tensor.New([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})
	kernel := tensor.Ones(tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 2, [2]int{0, 0})

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{14, 22, 46, 54}, output.Data())
}

func TestConv2D_MatchesDirect(t *testing.T) {
	backend := New()
	n, cIn, h, w := 2, 3, 5, 6
	cOut, kh, kw := 4, 3, 2
	pad := [2]int{1, 0}

	in := make([]float32, n*cIn*h*w)
	for i := range in {
		in[i] = float32(math.Sin(float64(i)))
	}
	k := make([]float32, cOut*cIn*kh*kw)
	for i := range k {
		k[i] = float32(math.Cos(float64(i)))
	}
	input := tensor.New(in, tensor.Shape{n, cIn, h, w})
	kernel := tensor.New(k, tensor.Shape{cOut, cIn, kh, kw})

	output := backend.Conv2D(input, kernel, 1, pad)

	hOut := h + 2*pad[0] - kh + 1
	wOut := w + 2*pad[1] - kw + 1
	require.Equal(t, tensor.Shape{n, cOut, hOut, wOut}, output.Shape())

	for b := 0; b < n; b++ {
		for o := 0; o < cOut; o++ {
			for y := 0; y < hOut; y++ {
				for x := 0; x < wOut; x++ {
					var want float64
					for c := 0; c < cIn; c++ {
						for ky := 0; ky < kh; ky++ {
							for kx := 0; kx < kw; kx++ {
								iy, ix := y+ky-pad[0], x+kx-pad[1]
								if iy < 0 || iy >= h || ix < 0 || ix >= w {
									continue
								}
								want += float64(input.At(b, c, iy, ix)) * float64(kernel.At(o, c, ky, kx))
							}
						}
					}
					assert.InDelta(t, want, output.At(b, o, y, x), 1e-4)
				}
			}
		}
	}
}

func TestConv2D_InvalidArguments(t *testing.T) {
	backend := New()
	input := tensor.Zeros(tensor.Shape{1, 2, 3, 3})

	assert.Panics(t, func() { backend.Conv2D(tensor.Zeros(tensor.Shape{2, 3, 3}), tensor.Zeros(tensor.Shape{1, 2, 1, 1}), 1, [2]int{}) })
	assert.Panics(t, func() { backend.Conv2D(input, tensor.Zeros(tensor.Shape{1, 1, 1, 1}), 1, [2]int{}) })
	assert.Panics(t, func() { backend.Conv2D(input, tensor.Zeros(tensor.Shape{1, 2, 5, 5}), 1, [2]int{}) })
	assert.Panics(t, func() { backend.Conv2D(input, tensor.Zeros(tensor.Shape{1, 2, 1, 1}), 0, [2]int{}) })
}
