package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/radarml/rdcnn/internal/parallel"
	"github.com/radarml/rdcnn/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*pad_h - kernel_h) / stride + 1
//	out_w = (width + 2*pad_w - kernel_w) / stride + 1
//
// Algorithm, per batch element:
//  1. Im2col: [C, H, W] -> col [C*K_h*K_w, H_out*W_out]
//  2. GEMM:   kernel [C_out, C*K_h*K_w] @ col -> [C_out, H_out*W_out]
//
// The GEMM result is already in NCHW order, so no rearrangement is needed.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.Tensor, stride int, padding [2]int) *tensor.Tensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding[0] < 0 || padding[1] < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %v", padding))
	}

	n := inputShape[0]
	cIn := inputShape[1]
	h := inputShape[2]
	w := inputShape[3]
	cOut := kernelShape[0]
	kh := kernelShape[2]
	kw := kernelShape[3]

	if cIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", cIn, kernelShape[1]))
	}

	hOut := (h+2*padding[0]-kh)/stride + 1
	wOut := (w+2*padding[1]-kw)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", hOut, wOut))
	}

	g := geometry{
		c: cIn, h: h, w: w,
		kh: kh, kw: kw,
		hOut: hOut, wOut: wOut,
		stride: stride, padH: padding[0], padW: padding[1],
	}

	output := tensor.Zeros(tensor.Shape{n, cOut, hOut, wOut})
	outData := output.Data()
	inData := input.Data()

	colRows := cIn * kh * kw
	colCols := hOut * wOut
	col := make([]float32, colRows*colCols)

	weights := blas32.General{Rows: cOut, Cols: colRows, Stride: colRows, Data: kernel.Data()}
	colMat := blas32.General{Rows: colRows, Cols: colCols, Stride: colCols, Data: col}

	inStride := cIn * h * w
	outStride := cOut * colCols
	for b := 0; b < n; b++ {
		im2col(col, inData[b*inStride:(b+1)*inStride], g, cpu.coarseConfig())

		dst := blas32.General{Rows: cOut, Cols: colCols, Stride: colCols, Data: outData[b*outStride : (b+1)*outStride]}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, weights, colMat, 0, dst)
	}

	return output
}

// geometry describes one convolution's input, kernel and output sizes.
type geometry struct {
	c, h, w    int
	kh, kw     int
	hOut, wOut int
	stride     int
	padH, padW int
}

// im2col transforms one [C, H, W] sample into a column matrix.
//
// Row r = (c, ky, kx) holds the input values seen by kernel tap (ky, kx) of
// channel c at every output position; out-of-bounds taps read zero.
func im2col(col, sample []float32, g geometry, cfg parallel.Config) {
	taps := g.kh * g.kw
	outSize := g.hOut * g.wOut

	parallel.For(g.c*taps, func(r int) {
		c := r / taps
		ky := (r % taps) / g.kw
		kx := r % g.kw

		row := col[r*outSize : (r+1)*outSize]
		plane := sample[c*g.h*g.w : (c+1)*g.h*g.w]

		for oy := 0; oy < g.hOut; oy++ {
			iy := oy*g.stride + ky - g.padH
			dst := row[oy*g.wOut : (oy+1)*g.wOut]
			if iy < 0 || iy >= g.h {
				for i := range dst {
					dst[i] = 0
				}
				continue
			}
			src := plane[iy*g.w : (iy+1)*g.w]
			for ox := 0; ox < g.wOut; ox++ {
				ix := ox*g.stride + kx - g.padW
				if ix >= 0 && ix < g.w {
					dst[ox] = src[ix]
				} else {
					dst[ox] = 0
				}
			}
		}
	}, cfg)
}
