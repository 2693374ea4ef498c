package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/models"
)

var (
	// ErrInvalidTrials is returned when the trial count is not positive.
	ErrInvalidTrials = errors.New("trial count must be positive")

	// ErrNoOrigins is returned when no origins are configured.
	ErrNoOrigins = errors.New("no origins configured")

	// ErrDuplicateOrigin is returned when two origins share a name.
	ErrDuplicateOrigin = errors.New("duplicate origin")
)

// Config defines a complete simulation experiment.
type Config struct {
	Truck     models.TransportModel
	RailDrone models.TransportModel
	Origins   []models.Origin
	Trials    int
	Seed      int64

	// Workers > 1 simulates that many origins concurrently, each with its own
	// generator seeded Seed+originIndex.
	Workers int
}

// DefaultConfig returns the reference experiment: nine origins, 10,000
// trials, seed 42, sequential.
func DefaultConfig() Config {
	return Config{
		Truck:     models.TruckModel(),
		RailDrone: models.RailDroneModel(constants.DefaultRailStdDev),
		Origins:   models.DefaultOrigins(),
		Trials:    constants.DefaultTrials,
		Seed:      constants.DefaultSeed,
		Workers:   constants.DefaultWorkers,
	}
}

// Models returns the transport models in the order they are simulated.
func (c Config) Models() []models.TransportModel {
	return []models.TransportModel{c.Truck, c.RailDrone}
}

// Validate checks the whole experiment before anything is sampled: trial
// count, model structure, origin parameters, and every resolved step at
// every origin.
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTrials, c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if len(c.Origins) == 0 {
		return ErrNoOrigins
	}
	if c.Truck.Mode == c.RailDrone.Mode {
		return fmt.Errorf("transport models must have distinct modes, both are %q", c.Truck.Mode)
	}

	for _, m := range c.Models() {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(c.Origins))
	for _, o := range c.Origins {
		if seen[o.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateOrigin, o.Name)
		}
		seen[o.Name] = true

		if err := o.Validate(); err != nil {
			return err
		}
		for _, m := range c.Models() {
			if _, err := m.Resolve(o); err != nil {
				return err
			}
		}
	}
	return nil
}
