// Package constants provides named constants used throughout the lastmile codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Simulation run defaults
const (
	// DefaultTrials is the number of Monte Carlo trials per (origin, mode) pair.
	DefaultTrials = 10000

	// DefaultSeed seeds the run generator so repeated runs are reproducible.
	DefaultSeed = 42

	// DefaultWorkers is the number of origins simulated concurrently.
	// A value of 1 keeps the single-generator sequential draw order.
	DefaultWorkers = 1

	// DefaultPercentile is the tail percentile reported as P95_Time.
	DefaultPercentile = 0.95
)

// Rail transit noise
const (
	// DefaultRailStdDev is the standard deviation (minutes) applied around the
	// scheduled rail transit time. Rail is treated as authoritative with small noise.
	DefaultRailStdDev = 0.5
)

// Mode labels appear verbatim in output tables.
const (
	// ModeTruck labels the traditional truck delivery model.
	ModeTruck = "Traditional Truck"

	// ModeRailDrone labels the rail plus drone delivery model.
	ModeRailDrone = "MTR + Drone"
)

// Scoring constants used by the area scorer.
const (
	// ScoreScale is the upper bound of a normalized component score.
	ScoreScale = 10.0

	// LinearDistanceEpsilon keeps tortuosity finite for zero straight-line distance.
	LinearDistanceEpsilon = 0.01

	// DroneRangeLimitKm is the straight-line distance above which drone
	// efficiency is penalized.
	DroneRangeLimitKm = 5.0

	// OutOfRangePenalty multiplies raw efficiency for areas beyond DroneRangeLimitKm.
	OutOfRangePenalty = 0.2
)
