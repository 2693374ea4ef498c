package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/lastmile/internal/models"
)

// AssertIdentical asserts that two summary tables are bit-identical, row by row.
func AssertIdentical(t *testing.T, got, want []Summary) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("AssertIdentical: %d rows, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("AssertIdentical: row %d: %+v != %+v", i, got[i], want[i])
		}
	}
}

// AssertTrialCount asserts that every summary reduced exactly n samples.
func AssertTrialCount(t *testing.T, summaries []Summary, n int) {
	t.Helper()
	for _, s := range summaries {
		if s.Trials != n {
			t.Errorf("AssertTrialCount: %s/%s reduced %d samples, want %d", s.Station, s.Mode, s.Trials, n)
		}
	}
}

// AssertPercentileOrdering asserts min <= median <= P95 <= max for every summary.
func AssertPercentileOrdering(t *testing.T, summaries []Summary) {
	t.Helper()
	for _, s := range summaries {
		if s.Min > s.Median || s.Median > s.P95Time || s.P95Time > s.Max {
			t.Errorf("AssertPercentileOrdering: %s/%s: min %.3f median %.3f p95 %.3f max %.3f",
				s.Station, s.Mode, s.Min, s.Median, s.P95Time, s.Max)
		}
	}
}

// AssertMeanPlausible asserts that each summary mean is consistent with its
// model at that origin: inside the step min/max sums for all-uniform models,
// otherwise within sigmas standard errors of the analytic mean.
func AssertMeanPlausible(t *testing.T, cfg Config, summaries []Summary, sigmas float64) {
	t.Helper()
	byMode := make(map[string]models.TransportModel, 2)
	for _, m := range cfg.Models() {
		byMode[m.Mode] = m
	}

	for _, s := range summaries {
		m, ok := byMode[s.Mode]
		if !ok {
			t.Errorf("AssertMeanPlausible: unknown mode %q", s.Mode)
			continue
		}
		o, ok := models.FindOrigin(cfg.Origins, s.Station)
		if !ok {
			t.Errorf("AssertMeanPlausible: unknown station %q", s.Station)
			continue
		}

		if lo, hi, ok := m.UniformBounds(o); ok {
			if s.AverageTime < lo || s.AverageTime > hi {
				t.Errorf("AssertMeanPlausible: %s/%s mean %.3f outside [%.1f, %.1f]",
					s.Station, s.Mode, s.AverageTime, lo, hi)
			}
		}

		mean, sd := m.Expected(o)
		stderr := sd / math.Sqrt(float64(s.Trials))
		if math.Abs(s.AverageTime-mean) > sigmas*stderr {
			t.Errorf("AssertMeanPlausible: %s/%s mean %.3f, expected %.3f ± %.3f",
				s.Station, s.Mode, s.AverageTime, mean, sigmas*stderr)
		}
	}
}
