package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
)

// Run is one transport model simulated at one origin: N total trip times.
type Run struct {
	Station string
	Mode    string
	Samples []float64
}

// Compose draws n trials of a trip made of the given steps and returns the
// per-trial totals. Every step is validated before the first draw. Steps are
// drawn in order, n samples at a time, and added element-wise so sample i of
// every step contributes to total i.
func Compose(rng *rand.Rand, steps []sampling.Distribution, n int) ([]float64, error) {
	if len(steps) == 0 {
		return nil, models.ErrEmptyModel
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrials, n)
	}
	for i, d := range steps {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	totals := make([]float64, n)
	scratch := make([]float64, n)
	for i, d := range steps {
		if err := sampling.SampleInto(rng, d, scratch); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		for trial, v := range scratch {
			totals[trial] += v
		}
	}
	return totals, nil
}

// ComposeRun resolves model m at origin o and composes n trials.
func ComposeRun(rng *rand.Rand, m models.TransportModel, o models.Origin, n int) (Run, error) {
	steps, err := m.Resolve(o)
	if err != nil {
		return Run{}, err
	}
	samples, err := Compose(rng, steps, n)
	if err != nil {
		return Run{}, fmt.Errorf("%s at %s: %w", m.Mode, o.Name, err)
	}
	return Run{Station: o.Name, Mode: m.Mode, Samples: samples}, nil
}
