// Package apperr maps domain errors to stable kind strings and process exit codes.
package apperr

import (
	"context"
	"errors"

	"github.com/nvandessel/lastmile/internal/comparison"
	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/simulation"
	"github.com/nvandessel/lastmile/internal/stats"
)

// ErrInvalidInput marks bad command-line input such as an unknown origin
// or output format.
var ErrInvalidInput = errors.New("invalid input")

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitCanceled = 130
)

// Kind returns a stable snake_case name for the sentinel err wraps,
// "" for nil and "internal" for anything unrecognized.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"

	case errors.Is(err, sampling.ErrInvalidParameters):
		return "invalid_parameters"

	case errors.Is(err, models.ErrEmptyModel):
		return "empty_model"

	case errors.Is(err, simulation.ErrInvalidTrials):
		return "invalid_trials"

	case errors.Is(err, simulation.ErrNoOrigins):
		return "no_origins"

	case errors.Is(err, simulation.ErrDuplicateOrigin):
		return "duplicate_origin"

	case errors.Is(err, stats.ErrEmptyRun):
		return "empty_run"

	case errors.Is(err, stats.ErrNonFinite):
		return "non_finite"

	case errors.Is(err, comparison.ErrMissingModel):
		return "missing_model"

	case errors.Is(err, comparison.ErrZeroTruckMean):
		return "zero_truck_mean"

	case errors.Is(err, comparison.ErrDuplicateSummary):
		return "duplicate_summary"

	case errors.Is(err, scoring.ErrTooFewAreas):
		return "too_few_areas"

	case errors.Is(err, scoring.ErrDegenerateMetric):
		return "degenerate_metric"

	case errors.Is(err, scoring.ErrInvalidWeights):
		return "invalid_weights"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

// ExitCode returns the process exit status for err. Configuration and input
// problems exit with ExitUsage; an interrupted run with ExitCanceled.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK

	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, sampling.ErrInvalidParameters),
		errors.Is(err, models.ErrEmptyModel),
		errors.Is(err, simulation.ErrInvalidTrials),
		errors.Is(err, simulation.ErrNoOrigins),
		errors.Is(err, simulation.ErrDuplicateOrigin),
		errors.Is(err, scoring.ErrTooFewAreas),
		errors.Is(err, scoring.ErrDegenerateMetric),
		errors.Is(err, scoring.ErrInvalidWeights):
		return ExitUsage

	case errors.Is(err, context.Canceled):
		return ExitCanceled

	default:
		return ExitFailure
	}
}
