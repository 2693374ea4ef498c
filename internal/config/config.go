// Package config provides unified configuration loading for lastmile.
// It supports loading from YAML files, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/logging"
	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/simulation"
)

// Config contains all lastmile configuration settings.
type Config struct {
	// Trials is the number of Monte Carlo draws per (origin, mode).
	Trials int `json:"trials" yaml:"trials"`

	// Seed initializes the random generator.
	Seed int64 `json:"seed" yaml:"seed"`

	// Workers > 1 simulates origins concurrently with per-origin seeds.
	Workers int `json:"workers" yaml:"workers"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	Truck     ModelConfig    `json:"truck" yaml:"truck"`
	RailDrone ModelConfig    `json:"rail_drone" yaml:"rail_drone"`
	Origins   []OriginConfig `json:"origins" yaml:"origins"`

	// Scoring holds the areas and weighting scenarios for the siting model.
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
}

// LoggingConfig configures lastmile's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run tracing to <dir>/runs.jsonl.
	Level string `json:"level" yaml:"level"`

	// Dir is where the run trace file is written. Defaults to ~/.lastmile.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// ModelConfig describes one transport mode as an ordered list of steps.
type ModelConfig struct {
	Mode  string       `json:"mode" yaml:"mode"`
	Steps []StepConfig `json:"steps" yaml:"steps"`
}

// StepConfig is the file form of a process step.
//
// role "fixed" uses kind with min/max (uniform) or mean/sd (normal).
// role "road" draws from the origin's truck range and takes no parameters.
// role "rail" draws Normal(origin mtr_time, sd).
// Parameters that do not belong to the step's role and kind are rejected.
type StepConfig struct {
	Name   string  `json:"name" yaml:"name"`
	Role   string  `json:"role,omitempty" yaml:"role,omitempty"`
	Kind   string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Min    *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev *float64 `json:"sd,omitempty" yaml:"sd,omitempty"`
}

// OriginConfig is the file form of an origin station.
type OriginConfig struct {
	Name     string  `json:"name" yaml:"name"`
	MTRTime  float64 `json:"mtr_time" yaml:"mtr_time"`
	TruckMin float64 `json:"truck_min" yaml:"truck_min"`
	TruckMax float64 `json:"truck_max" yaml:"truck_max"`
}

// ScoringConfig configures the area siting model.
type ScoringConfig struct {
	Areas     []scoring.Area     `json:"areas" yaml:"areas"`
	Scenarios []scoring.Scenario `json:"scenarios" yaml:"scenarios"`
}

// Default returns a Config describing the reference experiment.
func Default() *Config {
	origins := models.DefaultOrigins()
	oc := make([]OriginConfig, len(origins))
	for i, o := range origins {
		oc[i] = originConfig(o)
	}

	return &Config{
		Trials:    constants.DefaultTrials,
		Seed:      constants.DefaultSeed,
		Workers:   constants.DefaultWorkers,
		Logging:   LoggingConfig{Level: "info"},
		Truck:     modelConfig(models.TruckModel()),
		RailDrone: modelConfig(models.RailDroneModel(constants.DefaultRailStdDev)),
		Origins:   oc,
		Scoring: ScoringConfig{
			Areas:     scoring.DefaultAreas(),
			Scenarios: scoring.DefaultScenarios(),
		},
	}
}

// DefaultPath returns ~/.lastmile/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lastmile", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> .env -> ~/.lastmile/config.yaml -> environment variables
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadPath loads an explicit config file, then applies .env and environment
// overrides the same way Load does.
func LoadPath(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys that are
// absent keep their defaults; a list that is present replaces the default list.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// loadDotEnv populates unset environment variables from path. A missing
// file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Validate checks that the configuration is valid, including every
// distribution at every origin.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	sim, err := c.ToEngineConfig()
	if err != nil {
		return err
	}
	if err := sim.Validate(); err != nil {
		return err
	}

	if len(c.Scoring.Areas) > 0 {
		if _, err := scoring.NewScorer(c.Scoring.Areas); err != nil {
			return fmt.Errorf("scoring areas: %w", err)
		}
	}
	for _, sc := range c.Scoring.Scenarios {
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToEngineConfig converts the file form into a simulation config.
func (c *Config) ToEngineConfig() (simulation.Config, error) {
	truck, err := c.Truck.toModel()
	if err != nil {
		return simulation.Config{}, fmt.Errorf("truck: %w", err)
	}
	rail, err := c.RailDrone.toModel()
	if err != nil {
		return simulation.Config{}, fmt.Errorf("rail_drone: %w", err)
	}

	origins := make([]models.Origin, len(c.Origins))
	for i, o := range c.Origins {
		origins[i] = models.Origin{
			Name:       o.Name,
			MTRTime:    o.MTRTime,
			TruckRange: models.Range{Min: o.TruckMin, Max: o.TruckMax},
		}
	}

	return simulation.Config{
		Truck:     truck,
		RailDrone: rail,
		Origins:   origins,
		Trials:    c.Trials,
		Seed:      c.Seed,
		Workers:   c.Workers,
	}, nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// TraceDir returns the directory for the run trace file.
func (c *Config) TraceDir() (string, error) {
	if c.Logging.Dir != "" {
		return c.Logging.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lastmile"), nil
}

func (m ModelConfig) toModel() (models.TransportModel, error) {
	steps := make([]models.ProcessStep, len(m.Steps))
	for i, s := range m.Steps {
		step, err := s.toStep()
		if err != nil {
			return models.TransportModel{}, err
		}
		steps[i] = step
	}
	return models.TransportModel{Mode: m.Mode, Steps: steps}, nil
}

func (s StepConfig) toStep() (models.ProcessStep, error) {
	role := models.StepRole(s.Role)
	if role == "" {
		role = models.StepFixed
	}

	switch role {
	case models.StepRoad:
		if s.Kind != "" && sampling.Kind(s.Kind) != sampling.KindUniform {
			return models.ProcessStep{}, s.paramError("road steps are uniform, got kind %q", s.Kind)
		}
		if err := s.allowOnly("road"); err != nil {
			return models.ProcessStep{}, err
		}
		return models.Road(s.Name), nil

	case models.StepRail:
		if s.Kind != "" && sampling.Kind(s.Kind) != sampling.KindNormal {
			return models.ProcessStep{}, s.paramError("rail steps are normal, got kind %q", s.Kind)
		}
		if err := s.allowOnly("rail", "sd"); err != nil {
			return models.ProcessStep{}, err
		}
		if s.StdDev == nil {
			return models.ProcessStep{}, s.paramError("rail steps require sd")
		}
		return models.Rail(s.Name, *s.StdDev), nil

	case models.StepFixed:
		switch sampling.Kind(s.Kind) {
		case sampling.KindUniform:
			if err := s.allowOnly("uniform", "min", "max"); err != nil {
				return models.ProcessStep{}, err
			}
			if s.Min == nil || s.Max == nil {
				return models.ProcessStep{}, s.paramError("uniform steps require min and max")
			}
			return models.Fixed(s.Name, sampling.Uniform(*s.Min, *s.Max)), nil
		case sampling.KindNormal:
			if err := s.allowOnly("normal", "mean", "sd"); err != nil {
				return models.ProcessStep{}, err
			}
			if s.Mean == nil || s.StdDev == nil {
				return models.ProcessStep{}, s.paramError("normal steps require mean and sd")
			}
			return models.Fixed(s.Name, sampling.Normal(*s.Mean, *s.StdDev)), nil
		default:
			return models.ProcessStep{}, s.paramError("unknown kind %q (valid: uniform, normal)", s.Kind)
		}

	default:
		return models.ProcessStep{}, fmt.Errorf("step %q: invalid role %q (valid: fixed, road, rail)", s.Name, s.Role)
	}
}

func (s StepConfig) paramError(format string, args ...any) error {
	return fmt.Errorf("step %q: %w: %s", s.Name, sampling.ErrInvalidParameters, fmt.Sprintf(format, args...))
}

// allowOnly fails if the step sets a numeric parameter outside allowed.
func (s StepConfig) allowOnly(what string, allowed ...string) error {
	params := []struct {
		key string
		v   *float64
	}{
		{"min", s.Min},
		{"max", s.Max},
		{"mean", s.Mean},
		{"sd", s.StdDev},
	}
	for _, p := range params {
		if p.v != nil && !slices.Contains(allowed, p.key) {
			return s.paramError("%s steps do not take %s", what, p.key)
		}
	}
	return nil
}

func modelConfig(m models.TransportModel) ModelConfig {
	steps := make([]StepConfig, len(m.Steps))
	for i, s := range m.Steps {
		sc := StepConfig{Name: s.Name, Role: string(s.Role)}
		switch s.Role {
		case models.StepRail:
			sc.StdDev = float64Ptr(s.Dist.B)
		case models.StepFixed:
			sc.Kind = string(s.Dist.Kind)
			if s.Dist.Kind == sampling.KindNormal {
				sc.Mean, sc.StdDev = float64Ptr(s.Dist.A), float64Ptr(s.Dist.B)
			} else {
				sc.Min, sc.Max = float64Ptr(s.Dist.A), float64Ptr(s.Dist.B)
			}
		}
		steps[i] = sc
	}
	return ModelConfig{Mode: m.Mode, Steps: steps}
}

func float64Ptr(v float64) *float64 {
	return &v
}

func originConfig(o models.Origin) OriginConfig {
	return OriginConfig{
		Name:     o.Name,
		MTRTime:  o.MTRTime,
		TruckMin: o.TruckRange.Min,
		TruckMax: o.TruckRange.Max,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numeric values are rejected rather than silently ignored.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("LASTMILE_TRIALS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LASTMILE_TRIALS: %w", err)
		}
		config.Trials = n
	}

	if v := os.Getenv("LASTMILE_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LASTMILE_SEED: %w", err)
		}
		config.Seed = n
	}

	if v := os.Getenv("LASTMILE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LASTMILE_WORKERS: %w", err)
		}
		config.Workers = n
	}

	if v := os.Getenv("LASTMILE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("LASTMILE_LOG_DIR"); v != "" {
		config.Logging.Dir = v
	}
	return nil
}
