package models

import (
	"fmt"

	"github.com/nvandessel/lastmile/internal/sampling"
)

// StepRole says where a step's distribution parameters come from.
type StepRole string

const (
	// StepFixed uses the step's own distribution for every origin.
	StepFixed StepRole = "fixed"

	// StepRoad draws Uniform(origin.TruckRange.Min, origin.TruckRange.Max).
	StepRoad StepRole = "road"

	// StepRail draws Normal(origin.MTRTime, sd) where sd is the step's own B parameter.
	StepRail StepRole = "rail"
)

// Valid returns true if the role is a recognized value.
func (r StepRole) Valid() bool {
	switch r {
	case StepFixed, StepRoad, StepRail:
		return true
	}
	return false
}

// ProcessStep is one timed leg of a delivery trip (loading, transit, transfer...).
type ProcessStep struct {
	Name string                `json:"name" yaml:"name"`
	Role StepRole              `json:"role" yaml:"role"`
	Dist sampling.Distribution `json:"dist" yaml:"dist"`
}

// Fixed returns a step whose distribution does not depend on the origin.
func Fixed(name string, d sampling.Distribution) ProcessStep {
	return ProcessStep{Name: name, Role: StepFixed, Dist: d}
}

// Road returns the road-transit step, parameterized by each origin's truck range.
func Road(name string) ProcessStep {
	return ProcessStep{Name: name, Role: StepRoad, Dist: sampling.Distribution{Kind: sampling.KindUniform}}
}

// Rail returns the rail-transit step centered on each origin's rail time.
func Rail(name string, sd float64) ProcessStep {
	return ProcessStep{Name: name, Role: StepRail, Dist: sampling.Normal(0, sd)}
}

// Resolve returns the distribution this step draws from at origin o.
func (s ProcessStep) Resolve(o Origin) sampling.Distribution {
	switch s.Role {
	case StepRoad:
		return sampling.Uniform(o.TruckRange.Min, o.TruckRange.Max)
	case StepRail:
		return sampling.Normal(o.MTRTime, s.Dist.B)
	default:
		return s.Dist
	}
}

// Validate checks the origin-independent parts of the step.
// Origin-dependent parameters are checked when the step is resolved.
func (s ProcessStep) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("step name is required")
	}
	if !s.Role.Valid() {
		return fmt.Errorf("step %q: invalid role %q (valid: fixed, road, rail)", s.Name, s.Role)
	}

	switch s.Role {
	case StepFixed:
		if err := s.Dist.Validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.Name, err)
		}
	case StepRoad:
		if s.Dist.Kind != "" && s.Dist.Kind != sampling.KindUniform {
			return fmt.Errorf("step %q: %w: road steps are uniform, got %s",
				s.Name, sampling.ErrInvalidParameters, s.Dist.Kind)
		}
	case StepRail:
		if s.Dist.Kind != sampling.KindNormal {
			return fmt.Errorf("step %q: %w: rail steps are normal, got %q",
				s.Name, sampling.ErrInvalidParameters, s.Dist.Kind)
		}
		if err := sampling.Normal(0, s.Dist.B).Validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.Name, err)
		}
	}
	return nil
}
