package nn

import (
	"fmt"
	"math"

	"github.com/radarml/rdcnn/internal/tensor"
)

// Default BatchNorm2D hyper-parameters.
const (
	DefaultBatchNormEps      = 1e-5
	DefaultBatchNormMomentum = 0.1
)

// BatchNorm2D normalizes each channel of an [N, C, H, W] tensor.
//
//	y = (x - mean[c]) / sqrt(var[c] + eps) * gamma[c] + beta[c]
//
// In training mode mean and var are the batch statistics over N, H and W,
// and the running statistics are updated with
//
//	running = (1 - momentum) * running + momentum * batch
//
// using the unbiased variance. In evaluation mode the running statistics are
// used instead.
type BatchNorm2D struct {
	numFeatures int
	eps         float32
	momentum    float32
	training    bool

	gamma *Parameter // [C], "weight"
	beta  *Parameter // [C], "bias"

	runningMean *tensor.Tensor // [C]
	runningVar  *tensor.Tensor // [C]
	numBatches  int

	backend tensor.Backend
}

// NewBatchNorm2D creates a BatchNorm2D layer in training mode.
func NewBatchNorm2D(numFeatures int, eps, momentum float32, backend tensor.Backend) *BatchNorm2D {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid num_features %d", numFeatures))
	}
	if eps <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid eps %g", eps))
	}

	b := &BatchNorm2D{
		numFeatures: numFeatures,
		eps:         eps,
		momentum:    momentum,
		training:    true,
		gamma:       NewParameter("batchnorm2d.weight", tensor.Zeros(tensor.Shape{numFeatures})),
		beta:        NewParameter("batchnorm2d.bias", tensor.Zeros(tensor.Shape{numFeatures})),
		runningMean: tensor.Zeros(tensor.Shape{numFeatures}),
		runningVar:  tensor.Zeros(tensor.Shape{numFeatures}),
		backend:     backend,
	}
	b.ResetParameters()
	return b
}

// ResetRunningStats sets running mean to 0, running variance to 1 and clears
// the batch counter.
func (b *BatchNorm2D) ResetRunningStats() {
	b.runningMean.Fill(0)
	b.runningVar.Fill(1)
	b.numBatches = 0
}

// ResetParameters resets running statistics, gamma to 1 and beta to 0.
func (b *BatchNorm2D) ResetParameters() {
	b.ResetRunningStats()
	b.gamma.Tensor().Fill(1)
	b.beta.Tensor().Fill(0)
}

// SetTraining switches between batch statistics (true) and running
// statistics (false).
func (b *BatchNorm2D) SetTraining(training bool) {
	b.training = training
}

// Training reports whether the layer is in training mode.
func (b *BatchNorm2D) Training() bool {
	return b.training
}

// Forward normalizes the input per channel.
func (b *BatchNorm2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != b.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", shape[1], b.numFeatures))
	}

	var mean, variance []float32
	if b.training {
		mean, variance = b.backend.ChannelMoments(input)
		b.updateRunningStats(mean, variance, shape[0]*shape[2]*shape[3])
	} else {
		mean = b.runningMean.Data()
		variance = b.runningVar.Data()
	}

	gamma := b.gamma.Tensor().Data()
	beta := b.beta.Tensor().Data()
	scale := make([]float32, b.numFeatures)
	shift := make([]float32, b.numFeatures)
	for c := range scale {
		scale[c] = gamma[c] / float32(math.Sqrt(float64(variance[c]+b.eps)))
		shift[c] = beta[c] - mean[c]*scale[c]
	}

	return b.backend.ChannelAffine(input, scale, shift)
}

func (b *BatchNorm2D) updateRunningStats(mean, variance []float32, count int) {
	correction := float32(1)
	if count > 1 {
		correction = float32(count) / float32(count-1)
	}

	m := b.momentum
	rm := b.runningMean.Data()
	rv := b.runningVar.Data()
	for c := range rm {
		rm[c] = (1-m)*rm[c] + m*mean[c]
		rv[c] = (1-m)*rv[c] + m*variance[c]*correction
	}
	b.numBatches++
}

// Parameters returns gamma and beta.
func (b *BatchNorm2D) Parameters() []*Parameter {
	return []*Parameter{b.gamma, b.beta}
}

// StateDict returns gamma, beta and the running statistics.
func (b *BatchNorm2D) StateDict() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{
		"weight":       b.gamma.Tensor(),
		"bias":         b.beta.Tensor(),
		"running_mean": b.runningMean,
		"running_var":  b.runningVar,
	}
}

// LoadStateDict loads gamma, beta and the running statistics.
func (b *BatchNorm2D) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	for key, dst := range b.StateDict() {
		if err := loadInto(stateDict, key, dst); err != nil {
			return err
		}
	}
	return nil
}

// NumFeatures returns the number of normalized channels.
func (b *BatchNorm2D) NumFeatures() int {
	return b.numFeatures
}

// RunningMean returns the running mean tensor.
func (b *BatchNorm2D) RunningMean() *tensor.Tensor {
	return b.runningMean
}

// RunningVar returns the running variance tensor.
func (b *BatchNorm2D) RunningVar() *tensor.Tensor {
	return b.runningVar
}

// NumBatchesTracked returns how many training batches updated the running
// statistics since the last reset.
func (b *BatchNorm2D) NumBatchesTracked() int {
	return b.numBatches
}

// String returns a string representation of the layer.
func (b *BatchNorm2D) String() string {
	return fmt.Sprintf("BatchNorm2d(%d, eps=%g, momentum=%g)", b.numFeatures, b.eps, b.momentum)
}
