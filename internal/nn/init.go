package nn

import (
	"math"
	"math/rand"

	"github.com/radarml/rdcnn/internal/tensor"
)

// NewRNG returns a deterministic random source for parameter initialization.
func NewRNG(seed int64) *rand.Rand {
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return rand.New(rand.NewSource(seed))
}

// KaimingUniform fills t with values from U(-bound, bound), where
// bound = 1/sqrt(fan_in).
//
// This is Kaiming-uniform with a negative slope of sqrt(5), the default
// initialization for convolution weights in common frameworks.
func KaimingUniform(t *tensor.Tensor, fanIn int, rng *rand.Rand) {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	tensor.FillUniform(t, -bound, bound, rng)
}

// FanInUniform fills t with values from U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
//
// Used for bias terms of layers initialized with KaimingUniform.
func FanInUniform(t *tensor.Tensor, fanIn int, rng *rand.Rand) {
	if fanIn <= 0 {
		t.Fill(0)
		return
	}
	bound := 1.0 / math.Sqrt(float64(fanIn))
	tensor.FillUniform(t, -bound, bound, rng)
}
