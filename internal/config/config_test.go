package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/logging"
	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/simulation"
)

// isolate points HOME and the working directory at empty temp dirs and
// clears the LASTMILE_* variables for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, k := range []string{"LASTMILE_TRIALS", "LASTMILE_SEED", "LASTMILE_WORKERS", "LASTMILE_LOG_LEVEL", "LASTMILE_LOG_DIR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	config := Default()

	if config.Trials != constants.DefaultTrials {
		t.Errorf("expected Trials %d, got %d", constants.DefaultTrials, config.Trials)
	}
	if config.Seed != constants.DefaultSeed {
		t.Errorf("expected Seed %d, got %d", constants.DefaultSeed, config.Seed)
	}
	if config.Workers != constants.DefaultWorkers {
		t.Errorf("expected Workers %d, got %d", constants.DefaultWorkers, config.Workers)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if len(config.Origins) != 9 {
		t.Errorf("expected 9 origins, got %d", len(config.Origins))
	}
	if len(config.Scoring.Areas) != 4 || len(config.Scoring.Scenarios) != 4 {
		t.Errorf("expected 4 areas and 4 scenarios, got %d and %d",
			len(config.Scoring.Areas), len(config.Scoring.Scenarios))
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault_RoundTripsToEngineConfig(t *testing.T) {
	got, err := Default().ToEngineConfig()
	if err != nil {
		t.Fatalf("ToEngineConfig() error = %v", err)
	}
	want := simulation.DefaultConfig()

	if got.Trials != want.Trials || got.Seed != want.Seed || got.Workers != want.Workers {
		t.Errorf("run params = (%d, %d, %d), want (%d, %d, %d)",
			got.Trials, got.Seed, got.Workers, want.Trials, want.Seed, want.Workers)
	}

	pairs := []struct{ got, want models.TransportModel }{
		{got.Truck, want.Truck},
		{got.RailDrone, want.RailDrone},
	}
	for _, p := range pairs {
		if p.got.Mode != p.want.Mode {
			t.Errorf("Mode = %q, want %q", p.got.Mode, p.want.Mode)
		}
		if len(p.got.Steps) != len(p.want.Steps) {
			t.Fatalf("%s: %d steps, want %d", p.want.Mode, len(p.got.Steps), len(p.want.Steps))
		}
		for i := range p.want.Steps {
			if p.got.Steps[i] != p.want.Steps[i] {
				t.Errorf("%s step %d = %+v, want %+v", p.want.Mode, i, p.got.Steps[i], p.want.Steps[i])
			}
		}
	}

	for i := range want.Origins {
		if got.Origins[i] != want.Origins[i] {
			t.Errorf("origin %d = %+v, want %+v", i, got.Origins[i], want.Origins[i])
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	writeFile(t, configPath, `
trials: 500
seed: 7
workers: 3
logging:
  level: debug
origins:
  - name: Sha Tin
    mtr_time: 8
    truck_min: 12
    truck_max: 25
`)

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Trials != 500 {
		t.Errorf("expected Trials 500, got %d", config.Trials)
	}
	if config.Seed != 7 {
		t.Errorf("expected Seed 7, got %d", config.Seed)
	}
	if config.Workers != 3 {
		t.Errorf("expected Workers 3, got %d", config.Workers)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
	if len(config.Origins) != 1 || config.Origins[0].Name != "Sha Tin" {
		t.Errorf("origins list should be replaced, got %+v", config.Origins)
	}
	// Absent keys keep defaults.
	if config.Truck.Mode != constants.ModeTruck || len(config.Truck.Steps) != 4 {
		t.Errorf("truck model should keep defaults, got %+v", config.Truck)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_Steps(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, `
truck:
  mode: Van
  steps:
    - name: loading
      kind: uniform
      min: 5
      max: 10
    - name: road
      role: road
    - name: handover
      kind: normal
      mean: 4
      sd: 1
rail_drone:
  mode: Rail
  steps:
    - name: rail
      role: rail
      sd: 0.25
`)

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	sim, err := config.ToEngineConfig()
	if err != nil {
		t.Fatalf("ToEngineConfig() error = %v", err)
	}

	want := []models.ProcessStep{
		models.Fixed("loading", sampling.Uniform(5, 10)),
		models.Road("road"),
		models.Fixed("handover", sampling.Normal(4, 1)),
	}
	if sim.Truck.Mode != "Van" || len(sim.Truck.Steps) != len(want) {
		t.Fatalf("truck = %+v", sim.Truck)
	}
	for i := range want {
		if sim.Truck.Steps[i] != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, sim.Truck.Steps[i], want[i])
		}
	}
	if sim.RailDrone.Steps[0] != models.Rail("rail", 0.25) {
		t.Errorf("rail step = %+v", sim.RailDrone.Steps[0])
	}
	if err := sim.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, "trials: [not, a, number]\n")
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromFile_MismatchedStepParams(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "normal kind with min and max",
			yaml: `
rail_drone:
  mode: MTR + Drone
  steps:
    - {name: first_mile, kind: normal, min: 5, max: 15}
    - {name: rail_transit, role: rail, sd: 0.5}
`,
		},
		{
			name: "rail role with uniform kind",
			yaml: `
rail_drone:
  mode: MTR + Drone
  steps:
    - {name: first_mile, kind: uniform, min: 5, max: 15}
    - {name: rail_transit, role: rail, kind: uniform, sd: 0.5}
`,
		},
		{
			name: "uniform kind with mean",
			yaml: `
truck:
  mode: Traditional Truck
  steps:
    - {name: loading, kind: uniform, min: 15, max: 25, mean: 20}
    - {name: road_transit, role: road}
`,
		},
		{
			name: "normal kind without sd",
			yaml: `
truck:
  mode: Traditional Truck
  steps:
    - {name: loading, kind: normal, mean: 20}
    - {name: road_transit, role: road}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, configPath, tt.yaml)

			config, err := LoadFromFile(configPath)
			if err != nil {
				t.Fatalf("LoadFromFile failed: %v", err)
			}
			if err := config.Validate(); !errors.Is(err, sampling.ErrInvalidParameters) {
				t.Errorf("Validate() error = %v, want %v", err, sampling.ErrInvalidParameters)
			}
			if _, err := config.ToEngineConfig(); !errors.Is(err, sampling.ErrInvalidParameters) {
				t.Errorf("ToEngineConfig() error = %v, want %v", err, sampling.ErrInvalidParameters)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
		errText string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:   "empty log level",
			modify: func(c *Config) { c.Logging.Level = "" },
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			errText: "invalid log level",
		},
		{
			name:    "zero trials",
			modify:  func(c *Config) { c.Trials = 0 },
			wantErr: simulation.ErrInvalidTrials,
		},
		{
			name:    "no origins",
			modify:  func(c *Config) { c.Origins = nil },
			wantErr: simulation.ErrNoOrigins,
		},
		{
			name:    "inverted uniform step",
			modify:  func(c *Config) { c.Truck.Steps[0].Min, c.Truck.Steps[0].Max = float64Ptr(10), float64Ptr(5) },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "unknown kind",
			modify:  func(c *Config) { c.Truck.Steps[0].Kind = "gamma" },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "normal step with bounds",
			modify:  func(c *Config) { c.Truck.Steps[0].Kind = "normal" },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name: "uniform step with sd",
			modify: func(c *Config) {
				c.Truck.Steps[0].StdDev = float64Ptr(1)
			},
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name: "uniform step missing max",
			modify: func(c *Config) {
				c.Truck.Steps[0].Max = nil
			},
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "rail step without sd",
			modify:  func(c *Config) { c.RailDrone.Steps[2].StdDev = nil },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "road step with bounds",
			modify:  func(c *Config) { c.Truck.Steps[1].Min = float64Ptr(3) },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "invalid role",
			modify:  func(c *Config) { c.Truck.Steps[0].Role = "ferry" },
			errText: "invalid role",
		},
		{
			name:    "empty model",
			modify:  func(c *Config) { c.RailDrone.Steps = nil },
			wantErr: models.ErrEmptyModel,
		},
		{
			name:    "inverted truck range",
			modify:  func(c *Config) { c.Origins[0].TruckMin, c.Origins[0].TruckMax = 75, 35 },
			wantErr: sampling.ErrInvalidParameters,
		},
		{
			name:    "one scoring area",
			modify:  func(c *Config) { c.Scoring.Areas = c.Scoring.Areas[:1] },
			wantErr: scoring.ErrTooFewAreas,
		},
		{
			name:    "negative scenario weight",
			modify:  func(c *Config) { c.Scoring.Scenarios[0].Demand = -1 },
			wantErr: scoring.ErrInvalidWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)

			err := config.Validate()
			switch {
			case tt.wantErr == nil && tt.errText == "":
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil || !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("Validate() error = %v, want containing %q", err, tt.errText)
				}
			}
		})
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Trials != constants.DefaultTrials {
		t.Errorf("expected default Trials, got %d", config.Trials)
	}
}

func TestLoad_HomeFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".lastmile", "config.yaml"), "trials: 250\n")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Trials != 250 {
		t.Errorf("expected Trials 250 from home config, got %d", config.Trials)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".lastmile", "config.yaml"), "trials: 250\nseed: 1\n")

	t.Setenv("LASTMILE_TRIALS", "1000")
	t.Setenv("LASTMILE_SEED", "99")
	t.Setenv("LASTMILE_WORKERS", "4")
	t.Setenv("LASTMILE_LOG_LEVEL", "trace")
	t.Setenv("LASTMILE_LOG_DIR", "/tmp/lastmile-logs")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Trials != 1000 {
		t.Errorf("expected Trials 1000, got %d", config.Trials)
	}
	if config.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Seed)
	}
	if config.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Workers)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
	if dir, _ := config.TraceDir(); dir != "/tmp/lastmile-logs" {
		t.Errorf("expected TraceDir /tmp/lastmile-logs, got %s", dir)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LASTMILE_TRIALS", "many"},
		{"LASTMILE_SEED", "1.5"},
		{"LASTMILE_WORKERS", "four"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want error naming %s", err, tt.key)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", "LASTMILE_TRIALS=321\nLASTMILE_SEED=5\n")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Trials != 321 {
		t.Errorf("expected Trials 321 from .env, got %d", config.Trials)
	}
	if config.Seed != 5 {
		t.Errorf("expected Seed 5 from .env, got %d", config.Seed)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", "LASTMILE_TRIALS=321\n")
	t.Setenv("LASTMILE_TRIALS", "777")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Trials != 777 {
		t.Errorf("expected Trials 777 from environment, got %d", config.Trials)
	}
}

func TestLoadPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "trials: 42\n")
	t.Setenv("LASTMILE_SEED", "8")

	config, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if config.Trials != 42 || config.Seed != 8 {
		t.Errorf("got Trials %d Seed %d, want 42 and 8", config.Trials, config.Seed)
	}

	if _, err := LoadPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"trace", logging.LevelTrace},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			c := Default()
			c.Logging.Level = tt.level
			if got := c.LogLevel(); got != tt.want {
				t.Errorf("LogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTraceDir_DefaultsUnderHome(t *testing.T) {
	home := isolate(t)
	dir, err := Default().TraceDir()
	if err != nil {
		t.Fatalf("TraceDir() error = %v", err)
	}
	if dir != filepath.Join(home, ".lastmile") {
		t.Errorf("TraceDir() = %s, want %s", dir, filepath.Join(home, ".lastmile"))
	}
}
