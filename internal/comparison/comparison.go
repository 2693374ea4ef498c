// Package comparison pivots per-mode summaries into a side-by-side table of
// truck and rail-drone delivery times per origin.
package comparison

import (
	"errors"
	"fmt"

	"github.com/nvandessel/lastmile/internal/simulation"
)

var (
	// ErrMissingModel is returned when a station lacks a summary for one of the modes.
	ErrMissingModel = errors.New("station is missing a model summary")

	// ErrZeroTruckMean is returned when the improvement percentage would divide by zero.
	ErrZeroTruckMean = errors.New("truck mean is zero, improvement is undefined")

	// ErrDuplicateSummary is returned when a (station, mode) pair appears twice.
	ErrDuplicateSummary = errors.New("duplicate summary")
)

// Row compares the two delivery models at one station.
type Row struct {
	Station        string  `json:"station"`
	TruckMean      float64 `json:"truck_mean"`
	DroneMean      float64 `json:"drone_mean"`
	TimeSaved      float64 `json:"time_saved"`
	ImprovementPct float64 `json:"improvement_pct"`
}

// Build groups summaries by station, in first-seen order, and derives the time
// saved (truck - drone) and improvement percentage (saved / truck * 100).
// Summaries for modes other than truckMode and droneMode are ignored.
func Build(summaries []simulation.Summary, truckMode, droneMode string) ([]Row, error) {
	type pair struct {
		truck, drone       float64
		hasTruck, hasDrone bool
	}

	order := make([]string, 0, len(summaries)/2)
	byStation := make(map[string]*pair)

	for _, s := range summaries {
		p, ok := byStation[s.Station]
		if !ok {
			p = &pair{}
			byStation[s.Station] = p
			order = append(order, s.Station)
		}

		switch s.Mode {
		case truckMode:
			if p.hasTruck {
				return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateSummary, s.Station, s.Mode)
			}
			p.truck, p.hasTruck = s.AverageTime, true
		case droneMode:
			if p.hasDrone {
				return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateSummary, s.Station, s.Mode)
			}
			p.drone, p.hasDrone = s.AverageTime, true
		}
	}

	rows := make([]Row, 0, len(order))
	for _, station := range order {
		p := byStation[station]
		if !p.hasTruck {
			return nil, fmt.Errorf("%w: %s has no %q summary", ErrMissingModel, station, truckMode)
		}
		if !p.hasDrone {
			return nil, fmt.Errorf("%w: %s has no %q summary", ErrMissingModel, station, droneMode)
		}
		row, err := NewRow(station, p.truck, p.drone)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NewRow derives a comparison row from the two mean times.
func NewRow(station string, truckMean, droneMean float64) (Row, error) {
	if truckMean == 0 {
		return Row{}, fmt.Errorf("%w: %s", ErrZeroTruckMean, station)
	}
	saved := truckMean - droneMean
	return Row{
		Station:        station,
		TruckMean:      truckMean,
		DroneMean:      droneMean,
		TimeSaved:      saved,
		ImprovementPct: saved / truckMean * 100,
	}, nil
}

// Best returns the row with the largest improvement percentage.
// ok is false for an empty table.
func Best(rows []Row) (best Row, ok bool) {
	for i, r := range rows {
		if i == 0 || r.ImprovementPct > best.ImprovementPct {
			best = r
		}
	}
	return best, len(rows) > 0
}
