// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package summary records diagnostic histograms emitted by models.
//
// A Writer receives (tag, values, step) triples, in the same shape as a
// TensorBoard summary writer's add_histogram call. Two implementations are
// provided:
//   - CSVWriter: appends one row per histogram to an events CSV file
//   - Recorder: keeps histograms in memory
//
// Example:
//
//	w, err := summary.NewCSVWriter("runs/exp1")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	model, err := models.NewRICNN(cfg, backend, models.WithSummaryWriter(w))
package summary

import (
	"sort"
	"sync"
)

// Writer receives histogram summaries.
type Writer interface {
	// AddHistogram records the distribution of values under tag at step.
	AddHistogram(tag string, values []float32, step int) error
}

// Recorder is an in-memory Writer. It is safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	bins       int
	histograms []Histogram
}

// NewRecorder creates a Recorder using DefaultBins buckets.
func NewRecorder() *Recorder {
	return &Recorder{bins: DefaultBins}
}

// AddHistogram computes and stores a histogram.
func (r *Recorder) AddHistogram(tag string, values []float32, step int) error {
	h := NewHistogram(tag, values, step, r.bins)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms = append(r.histograms, h)
	return nil
}

// Histograms returns a copy of the recorded histograms in arrival order.
func (r *Recorder) Histograms() []Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Histogram, len(r.histograms))
	copy(out, r.histograms)
	return out
}

// Len returns the number of recorded histograms.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.histograms)
}

// Tags returns the distinct tags seen so far, sorted.
func (r *Recorder) Tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	for _, h := range r.histograms {
		seen[h.Tag] = struct{}{}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Reset drops all recorded histograms.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms = nil
}
