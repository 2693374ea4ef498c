package models

import (
	"fmt"
	"math"

	"github.com/nvandessel/lastmile/internal/sampling"
)

// Range is a closed interval of minutes.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Origin is a rail station that parcels leave from.
type Origin struct {
	// Name is the station name, unique within a run.
	Name string `json:"name" yaml:"name"`

	// MTRTime is the scheduled rail transit time in minutes.
	MTRTime float64 `json:"mtr_time" yaml:"mtr_time"`

	// TruckRange bounds the road transit time in minutes under typical traffic.
	TruckRange Range `json:"truck_range" yaml:"truck_range"`
}

// Validate checks the origin's parameters.
func (o Origin) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("origin name is required")
	}
	if math.IsNaN(o.MTRTime) || math.IsInf(o.MTRTime, 0) || o.MTRTime < 0 {
		return fmt.Errorf("origin %q: %w: mtr_time must be a non-negative number, got %v",
			o.Name, sampling.ErrInvalidParameters, o.MTRTime)
	}
	if err := sampling.Uniform(o.TruckRange.Min, o.TruckRange.Max).Validate(); err != nil {
		return fmt.Errorf("origin %q truck_range: %w", o.Name, err)
	}
	return nil
}

// DefaultOrigins returns the East Rail Line stations south of Tai Po Market,
// ordered from farthest to nearest.
func DefaultOrigins() []Origin {
	return []Origin{
		{Name: "Admiralty", MTRTime: 29, TruckRange: Range{35, 75}},
		{Name: "Exhibition Ctr", MTRTime: 27, TruckRange: Range{35, 70}},
		{Name: "Hung Hom", MTRTime: 22, TruckRange: Range{25, 55}},
		{Name: "Mong Kok East", MTRTime: 18, TruckRange: Range{20, 45}},
		{Name: "Kowloon Tong", MTRTime: 15, TruckRange: Range{20, 45}},
		{Name: "Tai Wai", MTRTime: 11, TruckRange: Range{15, 30}},
		{Name: "Sha Tin", MTRTime: 8, TruckRange: Range{12, 25}},
		{Name: "Fo Tan", MTRTime: 5, TruckRange: Range{10, 20}},
		{Name: "University", MTRTime: 3, TruckRange: Range{8, 15}},
	}
}

// FindOrigin returns the origin with the given name.
func FindOrigin(origins []Origin, name string) (Origin, bool) {
	for _, o := range origins {
		if o.Name == name {
			return o, true
		}
	}
	return Origin{}, false
}
