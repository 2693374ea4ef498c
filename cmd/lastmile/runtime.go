package main

import (
	"fmt"
	"log/slog"

	"github.com/nvandessel/lastmile/internal/apperr"
	"github.com/nvandessel/lastmile/internal/comparison"
	"github.com/nvandessel/lastmile/internal/config"
	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/logging"
	"github.com/nvandessel/lastmile/internal/metrics"
	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/simulation"
	"github.com/spf13/cobra"
)

// appRuntime bundles the collaborators shared by every command.
type appRuntime struct {
	cfg     *config.Config
	logger  *slog.Logger
	trace   *logging.TraceLogger
	metrics *metrics.Recorder
}

// loadConfig loads --config when given, otherwise the default locations,
// then applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newRuntime(cmd *cobra.Command) (*appRuntime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := &appRuntime{
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		metrics: metrics.New(),
	}
	if dir, err := cfg.TraceDir(); err == nil {
		rt.trace = logging.OpenTraceFile(dir, cfg.Logging.Level)
	}
	return rt, nil
}

// Close flushes metrics to the debug log and closes the trace file.
func (rt *appRuntime) Close() {
	if snap, err := rt.metrics.Snapshot(); err == nil && len(snap) > 0 {
		rt.logger.Debug("run metrics", "metrics", snap)
	}
	rt.trace.Close()
}

// addRunFlags registers the flags shared by simulate and compare.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("trials", 0, "Monte Carlo trials per origin and mode (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().Int("workers", 0, "Origins simulated concurrently; >1 uses per-origin seeds (default from config)")
	cmd.Flags().StringSlice("origin", nil, "Only simulate these origins (repeatable)")
	addFormatFlag(cmd)
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", string(constants.FormatText), "Output format: text, csv, json")
}

// outputFormat resolves --format, defaulting to json when --json is set.
func outputFormat(cmd *cobra.Command) (constants.Format, error) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut && !cmd.Flags().Changed("format") {
		return constants.FormatJSON, nil
	}

	f, _ := cmd.Flags().GetString("format")
	format := constants.Format(f)
	if !format.Valid() {
		return "", fmt.Errorf("%w: format %q (valid: text, csv, json)", apperr.ErrInvalidInput, f)
	}
	return format, nil
}

// engineConfig builds the simulation config from the loaded config and the
// command's run flags.
func engineConfig(cmd *cobra.Command, cfg *config.Config) (simulation.Config, error) {
	sim, err := cfg.ToEngineConfig()
	if err != nil {
		return simulation.Config{}, err
	}

	if cmd.Flags().Changed("trials") {
		sim.Trials, _ = cmd.Flags().GetInt("trials")
	}
	if cmd.Flags().Changed("seed") {
		sim.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("workers") {
		sim.Workers, _ = cmd.Flags().GetInt("workers")
	}

	names, _ := cmd.Flags().GetStringSlice("origin")
	if len(names) > 0 {
		selected := make([]models.Origin, 0, len(names))
		for _, name := range names {
			o, ok := models.FindOrigin(sim.Origins, name)
			if !ok {
				return simulation.Config{}, fmt.Errorf("%w: unknown origin %q", apperr.ErrInvalidInput, name)
			}
			selected = append(selected, o)
		}
		sim.Origins = selected
	}
	return sim, nil
}

// simulate runs the engine for cmd and records failures by kind.
func (rt *appRuntime) simulate(cmd *cobra.Command) ([]simulation.Summary, simulation.Config, error) {
	sim, err := engineConfig(cmd, rt.cfg)
	if err != nil {
		return nil, sim, err
	}

	engine, err := simulation.NewEngine(sim,
		simulation.WithLogger(rt.logger),
		simulation.WithTrace(rt.trace),
		simulation.WithMetrics(rt.metrics))
	if err != nil {
		rt.metrics.ObserveFailure(apperr.Kind(err))
		return nil, sim, err
	}

	summaries, err := engine.Run(cmd.Context())
	if err != nil {
		rt.metrics.ObserveFailure(apperr.Kind(err))
		return nil, sim, err
	}
	return summaries, engine.Config(), nil
}

// compare runs the engine and pairs the two modes per origin.
func (rt *appRuntime) compare(cmd *cobra.Command) ([]comparison.Row, error) {
	summaries, sim, err := rt.simulate(cmd)
	if err != nil {
		return nil, err
	}
	rows, err := comparison.Build(summaries, sim.Truck.Mode, sim.RailDrone.Mode)
	if err != nil {
		rt.metrics.ObserveFailure(apperr.Kind(err))
		return nil, err
	}
	return rows, nil
}
