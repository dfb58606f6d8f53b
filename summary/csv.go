// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package summary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned when writing to a closed CSVWriter.
var ErrClosed = errors.New("summary: writer is closed")

var csvHeader = []string{
	"run_id", "tag", "step", "num", "min", "max", "sum", "sum_squares",
	"mean", "std", "bucket_limits", "bucket_counts", "nan", "inf",
}

// CSVWriter writes histograms to <dir>/events.<run-id>.csv.
//
// Bucket limits and counts are stored as ';'-separated lists. Each row is
// flushed as soon as it is written. CSVWriter is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	runID  string
	path   string
	bins   int
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates dir if needed and opens a new events file in it.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	return NewCSVWriterWithBins(dir, DefaultBins)
}

// NewCSVWriterWithBins is NewCSVWriter with a custom bucket count.
func NewCSVWriterWithBins(dir string, bins int) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create summary dir: %w", err)
	}

	runID := uuid.New().String()
	path := filepath.Join(dir, "events."+runID+".csv")

	//nolint:gosec // G304: Directory comes from user input, which is expected for event logs
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create events file: %w", err)
	}

	w := &CSVWriter{
		runID:  runID,
		path:   path,
		bins:   bins,
		file:   file,
		writer: csv.NewWriter(file),
	}
	if err := w.writeRecord(csvHeader); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// RunID returns the unique id of this writer's events file.
func (w *CSVWriter) RunID() string {
	return w.runID
}

// Path returns the events file path.
func (w *CSVWriter) Path() string {
	return w.path
}

// AddHistogram computes a histogram of values and appends it as one row.
func (w *CSVWriter) AddHistogram(tag string, values []float32, step int) error {
	h := NewHistogram(tag, values, step, w.bins)

	record := []string{
		w.runID,
		h.Tag,
		strconv.Itoa(h.Step),
		strconv.Itoa(h.Num),
		formatFloat(h.Min),
		formatFloat(h.Max),
		formatFloat(h.Sum),
		formatFloat(h.SumSquares),
		formatFloat(h.Mean),
		formatFloat(h.StdDev),
		joinFloats(h.BucketLimits),
		joinFloats(h.BucketCounts),
		strconv.Itoa(h.NaN),
		strconv.Itoa(h.Inf),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeRecord(record)
}

// Close flushes and closes the events file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	w.writer.Flush()
	flushErr := w.writer.Error()
	closeErr := w.file.Close()
	w.file = nil
	w.writer = nil

	if flushErr != nil {
		return fmt.Errorf("failed to flush events file: %w", flushErr)
	}
	return closeErr
}

func (w *CSVWriter) writeRecord(record []string) error {
	if w.writer == nil {
		return ErrClosed
	}
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ";")
}
