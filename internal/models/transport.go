package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/sampling"
)

// ErrEmptyModel is returned for a transport model with no steps.
var ErrEmptyModel = errors.New("transport model has no steps")

// TransportModel is an ordered list of steps whose durations sum to a trip time.
type TransportModel struct {
	Mode  string        `json:"mode" yaml:"mode"`
	Steps []ProcessStep `json:"steps" yaml:"steps"`
}

// TruckModel returns the traditional truck model: loading, road transit,
// unloading, and the final delivery leg, all uniform.
func TruckModel() TransportModel {
	return TransportModel{
		Mode: constants.ModeTruck,
		Steps: []ProcessStep{
			Fixed("loading", sampling.Uniform(15, 25)),
			Road("road_transit"),
			Fixed("unloading", sampling.Uniform(15, 25)),
			Fixed("last_mile", sampling.Uniform(10, 20)),
		},
	}
}

// RailDroneModel returns the rail plus drone model. Rail transit is normal
// around each origin's scheduled time with standard deviation railSD; every
// other step is uniform.
func RailDroneModel(railSD float64) TransportModel {
	return TransportModel{
		Mode: constants.ModeRailDrone,
		Steps: []ProcessStep{
			Fixed("first_mile", sampling.Uniform(5, 15)),
			Fixed("wait_time", sampling.Uniform(0, 6)),
			Rail("rail_transit", railSD),
			Fixed("transfer", sampling.Uniform(8, 12)),
			Fixed("drone_load", sampling.Uniform(3, 5)),
			Fixed("flight", sampling.Uniform(3, 5)),
		},
	}
}

// Validate checks the model structure and every origin-independent step.
func (m TransportModel) Validate() error {
	if m.Mode == "" {
		return fmt.Errorf("transport model mode is required")
	}
	if len(m.Steps) == 0 {
		return fmt.Errorf("%s: %w", m.Mode, ErrEmptyModel)
	}
	seen := make(map[string]bool, len(m.Steps))
	for _, s := range m.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s: %w", m.Mode, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("%s: duplicate step %q", m.Mode, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Resolve returns the ordered step distributions for origin o.
func (m TransportModel) Resolve(o Origin) ([]sampling.Distribution, error) {
	if len(m.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", m.Mode, ErrEmptyModel)
	}
	dists := make([]sampling.Distribution, len(m.Steps))
	for i, s := range m.Steps {
		d := s.Resolve(o)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s at %s, step %q: %w", m.Mode, o.Name, s.Name, err)
		}
		dists[i] = d
	}
	return dists, nil
}

// Expected returns the analytic mean and standard deviation of the trip time
// at origin o. Steps are independent, so means and variances add.
func (m TransportModel) Expected(o Origin) (mean, sd float64) {
	var variance float64
	for _, s := range m.Steps {
		d := s.Resolve(o)
		mean += d.Mean()
		variance += d.Variance()
	}
	return mean, math.Sqrt(variance)
}

// UniformBounds returns the sum of step minimums and maximums at origin o.
// ok is false when any step is not uniform, since the total is then unbounded.
func (m TransportModel) UniformBounds(o Origin) (lo, hi float64, ok bool) {
	for _, s := range m.Steps {
		d := s.Resolve(o)
		if d.Kind != sampling.KindUniform {
			return 0, 0, false
		}
		lo += d.A
		hi += d.B
	}
	return lo, hi, true
}
