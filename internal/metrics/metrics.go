// Package metrics records simulation counters and timings on a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Recorder holds the simulation metrics. A nil Recorder is safe to use;
// all methods are no-ops on nil receiver.
type Recorder struct {
	registry *prometheus.Registry

	// RunsTotal counts completed (origin, mode) runs.
	RunsTotal *prometheus.CounterVec

	// SamplesTotal counts trip-time samples drawn.
	SamplesTotal *prometheus.CounterVec

	// RunDuration observes compose+reduce wall time per run.
	RunDuration *prometheus.HistogramVec

	// FailuresTotal counts runs aborted by an error, by error kind.
	FailuresTotal *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lastmile_runs_total",
				Help: "Total number of simulation runs reduced to a summary",
			},
			[]string{"mode"},
		),
		SamplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lastmile_samples_total",
				Help: "Total number of trip-time samples drawn",
			},
			[]string{"mode"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lastmile_run_duration_seconds",
				Help:    "Wall time to compose and reduce one run",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"mode"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lastmile_run_failures_total",
				Help: "Total number of runs aborted by an error",
			},
			[]string{"kind"},
		),
	}
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records one reduced run.
func (r *Recorder) ObserveRun(mode string, samples int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(mode).Inc()
	r.SamplesTotal.WithLabelValues(mode).Add(float64(samples))
	r.RunDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveFailure records an aborted run.
func (r *Recorder) ObserveFailure(kind string) {
	if r == nil {
		return
	}
	r.FailuresTotal.WithLabelValues(kind).Inc()
}

// Snapshot gathers the registry into a flat map keyed by
// `name{label="value",...}`. Histograms contribute `_count` and `_sum` entries.
func (r *Recorder) Snapshot() (map[string]float64, error) {
	if r == nil {
		return map[string]float64{}, nil
	}

	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[mf.GetName()+labels] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[mf.GetName()+labels] = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[mf.GetName()+"_count"+labels] = float64(m.GetHistogram().GetSampleCount())
				out[mf.GetName()+"_sum"+labels] = m.GetHistogram().GetSampleSum()
			}
		}
	}
	return out, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
