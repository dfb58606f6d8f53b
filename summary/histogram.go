// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the number of equal-width buckets used for histograms.
const DefaultBins = 30

// Histogram is a summary of a tensor's values at one step.
//
// BucketLimits holds the upper edge of each bucket; BucketCounts the number
// of values that fell into it. The first bucket starts at Min.
//
// NaN and infinite values are counted in NaN and Inf and left out of every
// other field, so Num-NaN-Inf values are binned.
type Histogram struct {
	Tag          string
	Step         int
	Num          int
	NaN          int
	Inf          int
	Min          float64
	Max          float64
	Sum          float64
	SumSquares   float64
	Mean         float64
	StdDev       float64
	BucketLimits []float64
	BucketCounts []float64
}

// NewHistogram computes a histogram of values with the given number of
// equal-width buckets.
//
// A constant input gets a unit-wide range centered on the value so that
// every bucket has positive width.
func NewHistogram(tag string, values []float32, step, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}

	h := Histogram{
		Tag:          tag,
		Step:         step,
		Num:          len(values),
		BucketLimits: make([]float64, bins),
		BucketCounts: make([]float64, bins),
	}
	x := make([]float64, 0, len(values))
	for _, v := range values {
		f := float64(v)
		switch {
		case math.IsNaN(f):
			h.NaN++
		case math.IsInf(f, 0):
			h.Inf++
		default:
			x = append(x, f)
		}
	}
	if len(x) == 0 {
		return h
	}
	sort.Float64s(x)

	h.Min = x[0]
	h.Max = x[len(x)-1]
	h.Sum = floats.Sum(x)
	h.SumSquares = floats.Dot(x, x)
	if len(x) > 1 {
		h.Mean, h.StdDev = stat.MeanStdDev(x, nil)
	} else {
		h.Mean = x[0]
	}

	lo, hi := h.Min, h.Max
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram buckets are half-open; nudge the last edge past Max.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	stat.Histogram(h.BucketCounts, dividers, x, nil)
	copy(h.BucketLimits, dividers[1:])

	return h
}
