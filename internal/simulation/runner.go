package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/lastmile/internal/logging"
	"github.com/nvandessel/lastmile/internal/metrics"
	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
	"github.com/nvandessel/lastmile/internal/stats"
)

// Summary is the reduction of one (origin, mode) run.
type Summary struct {
	Station     string  `json:"station"`
	Mode        string  `json:"mode"`
	Trials      int     `json:"trials"`
	AverageTime float64 `json:"average_time"`
	P95Time     float64 `json:"p95_time"`
	StdDev      float64 `json:"std_dev"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTrace sets the JSONL run trace.
func WithTrace(tl *logging.TraceLogger) Option {
	return func(e *Engine) { e.trace = tl }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// Engine drives the simulation across all origins and models.
type Engine struct {
	cfg     Config
	logger  *slog.Logger
	trace   *logging.TraceLogger
	metrics *metrics.Recorder
}

// NewEngine validates cfg and returns an engine ready to run.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	e := &Engine{cfg: cfg, logger: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run simulates every origin against both models and returns one Summary per
// (origin, mode) pair, ordered by origin registration order and then model
// order (truck first). Calling Run twice yields identical results.
// The first error aborts the run; no partial results are returned.
func (e *Engine) Run(ctx context.Context) ([]Summary, error) {
	runID := uuid.NewString()
	start := time.Now()

	e.logger.Info("simulation started",
		"run_id", runID,
		"origins", len(e.cfg.Origins),
		"trials", e.cfg.Trials,
		"seed", e.cfg.Seed,
		"workers", e.cfg.Workers)
	e.trace.Log(runID, "run_started", map[string]any{
		"origins": len(e.cfg.Origins),
		"trials":  e.cfg.Trials,
		"seed":    e.cfg.Seed,
		"workers": e.cfg.Workers,
	})

	var (
		summaries []Summary
		err       error
	)
	if e.cfg.Workers > 1 {
		summaries, err = e.runParallel(ctx, runID)
	} else {
		summaries, err = e.runSequential(ctx, runID)
	}
	if err != nil {
		e.logger.Error("simulation aborted", "run_id", runID, "error", err)
		e.trace.Log(runID, "run_aborted", map[string]any{"error": err.Error()})
		return nil, err
	}

	e.logger.Info("simulation finished",
		"run_id", runID,
		"summaries", len(summaries),
		"elapsed", time.Since(start))
	e.trace.Log(runID, "run_finished", map[string]any{
		"summaries":  len(summaries),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return summaries, nil
}

// runSequential draws everything from one generator in a fixed order.
func (e *Engine) runSequential(ctx context.Context, runID string) ([]Summary, error) {
	rng := sampling.NewRand(e.cfg.Seed)
	out := make([]Summary, 0, len(e.cfg.Origins)*2)
	for _, o := range e.cfg.Origins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := e.runOrigin(runID, rng, o)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return out, nil
}

// runParallel gives each origin its own generator seeded Seed+index, so the
// result does not depend on goroutine scheduling.
func (e *Engine) runParallel(ctx context.Context, runID string) ([]Summary, error) {
	perOrigin := make([][]Summary, len(e.cfg.Origins))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, o := range e.cfg.Origins {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := sampling.NewRand(e.cfg.Seed + int64(i))
			s, err := e.runOrigin(runID, rng, o)
			if err != nil {
				return err
			}
			perOrigin[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(e.cfg.Origins)*2)
	for _, s := range perOrigin {
		out = append(out, s...)
	}
	return out, nil
}

// runOrigin composes and reduces both models at one origin. Samples are
// released as soon as each run is reduced.
func (e *Engine) runOrigin(runID string, rng *rand.Rand, o models.Origin) ([]Summary, error) {
	out := make([]Summary, 0, 2)
	for _, m := range e.cfg.Models() {
		started := time.Now()

		if e.logger.Enabled(context.Background(), logging.LevelTrace) {
			for _, step := range m.Steps {
				e.logger.Log(context.Background(), logging.LevelTrace, "step resolved",
					"run_id", runID, "station", o.Name, "mode", m.Mode,
					"step", step.Name, "dist", step.Resolve(o).String())
			}
		}

		run, err := ComposeRun(rng, m, o, e.cfg.Trials)
		if err != nil {
			return nil, err
		}
		st, err := stats.Summarize(run.Samples)
		if err != nil {
			return nil, fmt.Errorf("%s at %s: %w", m.Mode, o.Name, err)
		}
		elapsed := time.Since(started)

		s := Summary{
			Station:     o.Name,
			Mode:        m.Mode,
			Trials:      st.N,
			AverageTime: st.Mean,
			P95Time:     st.P95,
			StdDev:      st.StdDev,
			Median:      st.Median,
			Min:         st.Min,
			Max:         st.Max,
		}
		out = append(out, s)

		e.metrics.ObserveRun(m.Mode, len(run.Samples), elapsed)
		e.logger.Debug("run reduced",
			"run_id", runID, "station", o.Name, "mode", m.Mode,
			"mean", s.AverageTime, "p95", s.P95Time, "std_dev", s.StdDev)
		e.trace.Log(runID, "run_reduced", map[string]any{
			"station":  o.Name,
			"mode":     m.Mode,
			"trials":   s.Trials,
			"mean":     s.AverageTime,
			"p95":      s.P95Time,
			"std_dev":  s.StdDev,
			"duration": elapsed.String(),
		})
	}
	return out, nil
}
