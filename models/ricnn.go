// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides convolutional networks for radar range-Doppler
// maps.
//
// RICNN processes complex-valued maps given as real and imaginary channels;
// MagCNN is the same network fed with a single magnitude channel. Both are
// fully convolutional regressors: the output has the input's feature-bin and
// ramp layout with the channel axis folded back into the ramps axis.
//
// Example:
//
//	backend := cpu.New()
//	model, err := models.NewRICNN(models.Config{}, backend)
//	if err != nil {
//	    return err
//	}
//	out := model.Forward(x) // x: [batch, 2, 1024, 128] -> out: [batch, 1024, 256]
package models

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/radarml/rdcnn/internal/nn"
	"github.com/radarml/rdcnn/internal/tensor"
	"github.com/radarml/rdcnn/summary"
)

// ErrUnexpectedTensor is returned when a state dict holds a key the model
// does not have.
var ErrUnexpectedTensor = errors.New("unexpected tensor in state dict")

// Option configures a model at construction time.
type Option func(*RICNN)

// WithSummaryWriter attaches the writer that receives per-stage histograms
// while logging is active.
func WithSummaryWriter(w summary.Writer) Option {
	return func(m *RICNN) {
		m.writer = w
	}
}

// RICNN is a stack of convolution stages over range-Doppler maps.
//
// Stage layout for L = NumConvLayers and F = NumFilters, C input channels:
//
//	stage 0:        Conv2D(C -> F), ReLU
//	stage 1..L-2:   Conv2D(F -> F), BatchNorm2D(F), ReLU
//	stage L-1:      Conv2D(F -> C)
//
// A RICNN is not safe for concurrent use: Forward mutates the call counter
// and, in training mode, the batch-norm running statistics.
type RICNN struct {
	name    string
	cfg     Config
	backend tensor.Backend
	rng     *rand.Rand
	stages  []*nn.Sequential

	writer        summary.Writer
	loggingActive bool
	forwardCalls  int
	training      bool
}

// NewRICNN builds a model from cfg after applying defaults.
//
// Returns an error wrapping ErrInvalidConfig if the configuration is
// rejected (fewer than 2 layers, non-positive filter size, unsupported
// channel count, ...).
func NewRICNN(cfg Config, backend tensor.Backend, opts ...Option) (*RICNN, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", ErrInvalidConfig)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &RICNN{
		name:     "RICNN",
		cfg:      cfg,
		backend:  backend,
		rng:      nn.NewRNG(cfg.Seed),
		training: true,
	}
	m.stages = m.buildStages()

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *RICNN) buildStages() []*nn.Sequential {
	cfg := m.cfg
	channels := cfg.Channels()
	filters := cfg.NumFilters
	kh, kw := cfg.FilterSize[0], cfg.FilterSize[1]
	padding := *cfg.Padding

	conv := func(in, out int) *nn.Conv2D {
		return nn.NewConv2D(in, out, kh, kw, 1, padding, true, m.backend, m.rng)
	}

	stages := make([]*nn.Sequential, 0, cfg.NumConvLayers)
	stages = append(stages, nn.NewSequential(conv(channels, filters), nn.NewReLU(m.backend)))

	for i := 0; i < cfg.NumConvLayers-2; i++ {
		stage := nn.NewSequential(conv(filters, filters))
		if cfg.BatchNorm() {
			stage.Add(nn.NewBatchNorm2D(filters, nn.DefaultBatchNormEps, nn.DefaultBatchNormMomentum, m.backend))
		}
		stage.Add(nn.NewReLU(m.backend))
		stages = append(stages, stage)
	}

	stages = append(stages, nn.NewSequential(conv(filters, channels)))
	return stages
}

// Forward runs the network.
//
// x may have any shape whose element count is a multiple of
// channels*bins*ramps; it is read as [batch, channels, bins, ramps] memory
// and viewed as [batch, 1, bins, channels*ramps]. With two channels the last
// axis is split into its real and imaginary halves, which are stacked as
// input channels. The result is [batch, bins, channels*ramps].
//
// While logging is active, the output of every stage is sent to the summary
// writer as tag "conv.<stage>" at step ForwardCalls(); writer errors are
// ignored.
//
// Panics if the input cannot be viewed in the configured layout.
func (m *RICNN) Forward(x *tensor.Tensor) *tensor.Tensor {
	channels, bins, ramps := m.cfg.InputSize[0], m.cfg.InputSize[1], m.cfg.InputSize[2]
	if x.NumElements()%(channels*bins*ramps) != 0 {
		panic(fmt.Sprintf("ricnn: input %v is not a whole number of (%d, %d, %d) samples",
			x.Shape(), channels, bins, ramps))
	}

	out := x.Reshape(-1, 1, bins, channels*ramps)
	if channels == 2 {
		out = tensor.Cat([]*tensor.Tensor{
			out.Narrow(3, 0, ramps),
			out.Narrow(3, ramps, ramps),
		}, 1)
	}

	for i, stage := range m.stages {
		out = stage.Forward(out)
		if m.loggingActive && m.writer != nil {
			_ = m.writer.AddHistogram(fmt.Sprintf("conv.%d", i), out.Clone().Data(), m.forwardCalls)
		}
	}

	if channels == 2 {
		out = tensor.Cat([]*tensor.Tensor{out.Select(1, 0), out.Select(1, 1)}, 2)
	} else {
		out = out.Select(1, 0)
	}

	m.forwardCalls++
	return out
}

// Reset re-initializes the learnable parameters of every stage.
//
// Modules without resettable parameters (activations) are skipped. The
// topology, the forward counter and the logging flag are left untouched.
func (m *RICNN) Reset() {
	for _, stage := range m.stages {
		stage.ResetParameters()
	}
}

// SetLoggingActive enables or disables per-stage histogram logging.
func (m *RICNN) SetLoggingActive(active bool) {
	m.loggingActive = active
}

// LoggingActive reports whether per-stage histogram logging is enabled.
func (m *RICNN) LoggingActive() bool {
	return m.loggingActive
}

// SetSummaryWriter replaces the histogram writer. nil disables emission.
func (m *RICNN) SetSummaryWriter(w summary.Writer) {
	m.writer = w
}

// ForwardCalls returns the number of completed Forward calls.
func (m *RICNN) ForwardCalls() int {
	return m.forwardCalls
}

// SetTraining switches batch normalization between batch statistics (true)
// and running statistics (false). New models start in training mode.
func (m *RICNN) SetTraining(training bool) {
	m.training = training
	for _, stage := range m.stages {
		stage.SetTraining(training)
	}
}

// Training reports whether the model is in training mode.
func (m *RICNN) Training() bool {
	return m.training
}

// Config returns a copy of the resolved configuration.
func (m *RICNN) Config() Config {
	return m.cfg.clone()
}

// Backend returns the compute backend.
func (m *RICNN) Backend() tensor.Backend {
	return m.backend
}

// Stages returns the convolution stages in order.
func (m *RICNN) Stages() []*nn.Sequential {
	return m.stages
}

// NumStages returns the number of stages, which equals NumConvLayers.
func (m *RICNN) NumStages() int {
	return len(m.stages)
}

// Parameters returns all learnable parameters in stage order.
func (m *RICNN) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, stage := range m.stages {
		params = append(params, stage.Parameters()...)
	}
	return params
}

// NumParameters returns the total number of learnable scalars.
func (m *RICNN) NumParameters() int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}

// String returns a description of the architecture.
func (m *RICNN) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(input_size=(%d, %d, %d), layers=%d, filters=%d, params=%d)\n",
		m.name, m.cfg.InputSize[0], m.cfg.InputSize[1], m.cfg.InputSize[2],
		m.cfg.NumConvLayers, m.cfg.NumFilters, m.NumParameters())
	for i, stage := range m.stages {
		fmt.Fprintf(&sb, "  conv.%d:", i)
		for _, module := range stage.Modules() {
			fmt.Fprintf(&sb, " %v", module)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
