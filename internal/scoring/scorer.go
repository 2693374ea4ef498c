// Package scoring ranks candidate launch areas with a weighted multi-criteria model.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nvandessel/lastmile/internal/constants"
)

var (
	// ErrTooFewAreas is returned when fewer than two areas are scored;
	// min-max normalization needs a spread.
	ErrTooFewAreas = errors.New("at least two areas are required")

	// ErrDegenerateMetric is returned when every area has the same value for a metric.
	ErrDegenerateMetric = errors.New("metric has no spread across areas")

	// ErrInvalidWeights is returned for negative, non-finite or all-zero weights.
	ErrInvalidWeights = errors.New("invalid scenario weights")
)

// Area holds the raw metrics for one candidate area.
type Area struct {
	Name string `json:"name" yaml:"name"`

	// PopulationDensity in persons per square kilometer.
	PopulationDensity float64 `json:"population_density" yaml:"population_density"`

	// DrivingDistance is the truck route length in kilometers.
	DrivingDistance float64 `json:"driving_distance" yaml:"driving_distance"`

	// LinearDistance is the straight-line (drone) distance in kilometers.
	LinearDistance float64 `json:"linear_distance" yaml:"linear_distance"`

	// CongestionIndex is peak-hour travel time over free-flow travel time.
	CongestionIndex float64 `json:"congestion_index" yaml:"congestion_index"`
}

// Tortuosity is driving distance over straight-line distance.
func (a Area) Tortuosity() float64 {
	return a.DrivingDistance / (a.LinearDistance + constants.LinearDistanceEpsilon)
}

// rawEfficiency is tortuosity, penalized when the flight exceeds drone range.
func (a Area) rawEfficiency() float64 {
	penalty := 1.0
	if a.LinearDistance > constants.DroneRangeLimitKm {
		penalty = constants.OutOfRangePenalty
	}
	return a.Tortuosity() * penalty
}

// DefaultAreas returns the four Hong Kong areas compared in the siting study.
func DefaultAreas() []Area {
	return []Area{
		{Name: "Tai Po (Baseline)", PopulationDensity: 2137, DrivingDistance: 2.5, LinearDistance: 1.8, CongestionIndex: 1.27},
		{Name: "Hung Hom (High Density)", PopulationDensity: 100779.9239, DrivingDistance: 0.4, LinearDistance: 0.3, CongestionIndex: 1.0},
		{Name: "Sai Kung (Remote)", PopulationDensity: 11115, DrivingDistance: 11.0, LinearDistance: 8.5, CongestionIndex: 1.33},
		{Name: "Mid-Levels (Hilly)", PopulationDensity: 18967, DrivingDistance: 2.5, LinearDistance: 0.6, CongestionIndex: 1.818},
	}
}

// Scenario weights the three component scores.
type Scenario struct {
	Name       string  `json:"name" yaml:"name"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
	Demand     float64 `json:"demand" yaml:"demand"`
	Necessity  float64 `json:"necessity" yaml:"necessity"`
}

// Validate checks that the weights are usable.
func (s Scenario) Validate() error {
	for _, w := range []float64{s.Efficiency, s.Demand, s.Necessity} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: %s has weight %v", ErrInvalidWeights, s.Name, w)
		}
	}
	if s.Efficiency+s.Demand+s.Necessity == 0 {
		return fmt.Errorf("%w: %s has all-zero weights", ErrInvalidWeights, s.Name)
	}
	return nil
}

// DefaultScenarios returns the decision scenarios presented to leadership.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "Cost Focus", Efficiency: 0.6, Demand: 0.2, Necessity: 0.2},
		{Name: "Market Scale", Efficiency: 0.2, Demand: 0.6, Necessity: 0.2},
		{Name: "Pain Point", Efficiency: 0.2, Demand: 0.2, Necessity: 0.6},
		{Name: "Balanced", Efficiency: 0.33, Demand: 0.33, Necessity: 0.33},
	}
}

// Components are the normalized 0-10 scores of one area.
type Components struct {
	Efficiency float64 `json:"efficiency"`
	Demand     float64 `json:"demand"`
	Necessity  float64 `json:"necessity"`
}

// ScoredArea is an area with its scenario score.
type ScoredArea struct {
	Area       Area       `json:"area"`
	Score      float64    `json:"score"`
	Components Components `json:"components"`
}

// Scorer holds the normalized component scores for a fixed set of areas.
type Scorer struct {
	areas      []Area
	components []Components
}

// NewScorer normalizes the areas' metrics into component scores.
func NewScorer(areas []Area) (*Scorer, error) {
	if len(areas) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewAreas, len(areas))
	}

	density := make([]float64, len(areas))
	congestion := make([]float64, len(areas))
	efficiency := make([]float64, len(areas))
	for i, a := range areas {
		density[i] = a.PopulationDensity
		congestion[i] = a.CongestionIndex
		efficiency[i] = a.rawEfficiency()
	}

	demand, err := normalize("population_density", density)
	if err != nil {
		return nil, err
	}
	necessity, err := normalize("congestion_index", congestion)
	if err != nil {
		return nil, err
	}
	eff, err := normalize("efficiency", efficiency)
	if err != nil {
		return nil, err
	}

	comps := make([]Components, len(areas))
	for i := range areas {
		comps[i] = Components{Efficiency: eff[i], Demand: demand[i], Necessity: necessity[i]}
	}
	return &Scorer{areas: append([]Area(nil), areas...), components: comps}, nil
}

// Areas returns the scored areas in input order.
func (s *Scorer) Areas() []Area {
	return append([]Area(nil), s.areas...)
}

// Score applies scenario weights to every area, in input order.
func (s *Scorer) Score(sc Scenario) ([]ScoredArea, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	out := make([]ScoredArea, len(s.areas))
	for i, a := range s.areas {
		c := s.components[i]
		out[i] = ScoredArea{
			Area:       a,
			Components: c,
			Score:      c.Efficiency*sc.Efficiency + c.Demand*sc.Demand + c.Necessity*sc.Necessity,
		}
	}
	return out, nil
}

// Rank returns the areas ordered by descending score under sc.
// Ties keep input order.
func (s *Scorer) Rank(sc Scenario) ([]ScoredArea, error) {
	scored, err := s.Score(sc)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// Matrix scores every area under every scenario. Scores[i][j] is area i
// under scenario j.
type Matrix struct {
	Areas     []string    `json:"areas"`
	Scenarios []string    `json:"scenarios"`
	Scores    [][]float64 `json:"scores"`
}

// ScoreAll builds the area × scenario score matrix.
func (s *Scorer) ScoreAll(scenarios []Scenario) (Matrix, error) {
	m := Matrix{
		Areas:     make([]string, len(s.areas)),
		Scenarios: make([]string, len(scenarios)),
		Scores:    make([][]float64, len(s.areas)),
	}
	for i, a := range s.areas {
		m.Areas[i] = a.Name
		m.Scores[i] = make([]float64, len(scenarios))
	}
	for j, sc := range scenarios {
		scored, err := s.Score(sc)
		if err != nil {
			return Matrix{}, err
		}
		m.Scenarios[j] = sc.Name
		for i, r := range scored {
			m.Scores[i][j] = r.Score
		}
	}
	return m, nil
}

// normalize min-max scales values onto [0, ScoreScale].
func normalize(metric string, values []float64) ([]float64, error) {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s: non-finite value %v", metric, v)
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return nil, fmt.Errorf("%w: %s", ErrDegenerateMetric, metric)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo) * constants.ScoreScale
	}
	return out, nil
}

// FindScenario returns the scenario with the given name.
func FindScenario(scenarios []Scenario, name string) (Scenario, bool) {
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}
