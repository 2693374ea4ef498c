// Package sampling draws independent samples from the step distributions used
// by the delivery models.
//
// Every draw goes through an explicitly owned *rand.Rand. There is no
// package-level generator: callers create one with NewRand and thread it
// through every call, so draw order (and therefore output) is fully
// determined by the seed and the order of calls.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidParameters is returned when a distribution's parameters cannot be
// sampled from (negative or non-finite values, lo > hi, sd < 0).
var ErrInvalidParameters = errors.New("invalid distribution parameters")

// pcgStream is the fixed second PCG word. Only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// Kind identifies a distribution family.
type Kind string

const (
	// KindUniform is a continuous uniform distribution on [A, B).
	KindUniform Kind = "uniform"

	// KindNormal is a normal distribution with mean A and standard deviation B.
	KindNormal Kind = "normal"
)

// Valid returns true if the kind is a recognized value.
func (k Kind) Valid() bool {
	switch k {
	case KindUniform, KindNormal:
		return true
	}
	return false
}

// Distribution describes how one step duration is drawn.
// For KindUniform, A and B are the bounds; for KindNormal, A is the mean and B
// the standard deviation.
type Distribution struct {
	Kind Kind
	A    float64
	B    float64
}

// Uniform returns a uniform distribution on [lo, hi).
func Uniform(lo, hi float64) Distribution {
	return Distribution{Kind: KindUniform, A: lo, B: hi}
}

// Normal returns a normal distribution with the given mean and standard deviation.
func Normal(mean, sd float64) Distribution {
	return Distribution{Kind: KindNormal, A: mean, B: sd}
}

// Mean returns the expected value of the distribution.
func (d Distribution) Mean() float64 {
	if d.Kind == KindUniform {
		return (d.A + d.B) / 2
	}
	return d.A
}

// Variance returns the variance of the distribution.
func (d Distribution) Variance() float64 {
	if d.Kind == KindUniform {
		w := d.B - d.A
		return w * w / 12
	}
	return d.B * d.B
}

// String renders the distribution as Uniform(lo, hi) or Normal(mean, sd).
func (d Distribution) String() string {
	switch d.Kind {
	case KindUniform:
		return fmt.Sprintf("Uniform(%g, %g)", d.A, d.B)
	case KindNormal:
		return fmt.Sprintf("Normal(%g, %g)", d.A, d.B)
	default:
		return fmt.Sprintf("%s(%g, %g)", d.Kind, d.A, d.B)
	}
}

// Validate checks that the distribution can be sampled from.
// All parameters must be finite and non-negative. Errors wrap ErrInvalidParameters.
func (d Distribution) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidParameters, d.Kind)
	}
	if !finite(d.A) || !finite(d.B) {
		return fmt.Errorf("%w: %s has non-finite parameter", ErrInvalidParameters, d)
	}

	switch d.Kind {
	case KindUniform:
		if d.A < 0 || d.B < 0 {
			return fmt.Errorf("%w: %s has negative bound", ErrInvalidParameters, d)
		}
		if d.A > d.B {
			return fmt.Errorf("%w: %s has lo > hi", ErrInvalidParameters, d)
		}
	case KindNormal:
		if d.B < 0 {
			return fmt.Errorf("%w: %s has sd < 0", ErrInvalidParameters, d)
		}
		if d.A < 0 {
			return fmt.Errorf("%w: %s has negative mean", ErrInvalidParameters, d)
		}
	}
	return nil
}

// NewRand returns a generator seeded deterministically from seed.
// Two generators built from the same seed produce identical sequences.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}

// Sample returns n independent draws from d, advancing rng.
// Parameters are validated before any draw, so an invalid distribution
// leaves rng untouched.
func Sample(rng *rand.Rand, d Distribution, n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample count must be non-negative, got %d", n)
	}
	out := make([]float64, n)
	if err := SampleInto(rng, d, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleInto fills dst with len(dst) independent draws from d.
func SampleInto(rng *rand.Rand, d Distribution, dst []float64) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if rng == nil {
		return errors.New("sampling: nil generator")
	}

	switch d.Kind {
	case KindUniform:
		width := d.B - d.A
		for i := range dst {
			dst[i] = d.A + width*rng.Float64()
		}
	case KindNormal:
		for i := range dst {
			dst[i] = d.A + d.B*rng.NormFloat64()
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
