package simulation

import (
	"errors"
	"testing"

	"github.com/nvandessel/lastmile/internal/models"
	"github.com/nvandessel/lastmile/internal/sampling"
)

func TestCompose_Length(t *testing.T) {
	for _, n := range []int{1, 7, 1000} {
		totals, err := Compose(sampling.NewRand(42), []sampling.Distribution{
			sampling.Uniform(1, 2),
			sampling.Normal(3, 0.5),
		}, n)
		if err != nil {
			t.Fatalf("Compose(n=%d): %v", n, err)
		}
		if len(totals) != n {
			t.Errorf("len(totals) = %d, want %d", len(totals), n)
		}
	}
}

func TestCompose_PerTrialSum(t *testing.T) {
	steps := []sampling.Distribution{
		sampling.Uniform(15, 25),
		sampling.Uniform(12, 25),
		sampling.Normal(8, 0.5),
	}
	const n = 500

	totals, err := Compose(sampling.NewRand(42), steps, n)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// Replaying the same draw order step by step must reproduce every trial.
	rng := sampling.NewRand(42)
	want := make([]float64, n)
	for _, d := range steps {
		draws, err := sampling.Sample(rng, d, n)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		for i := range draws {
			want[i] += draws[i]
		}
	}

	for i := range totals {
		if totals[i] != want[i] {
			t.Fatalf("trial %d: total %v, want %v", i, totals[i], want[i])
		}
	}
}

func TestCompose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		steps   []sampling.Distribution
		n       int
		wantErr error
	}{
		{"no steps", nil, 10, models.ErrEmptyModel},
		{"zero trials", []sampling.Distribution{sampling.Uniform(0, 1)}, 0, ErrInvalidTrials},
		{"negative trials", []sampling.Distribution{sampling.Uniform(0, 1)}, -5, ErrInvalidTrials},
		{"inverted uniform", []sampling.Distribution{sampling.Uniform(0, 1), sampling.Uniform(10, 5)}, 10, sampling.ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compose(sampling.NewRand(1), tt.steps, tt.n); !errors.Is(err, tt.wantErr) {
				t.Errorf("Compose() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompose_InvalidStepDrawsNothing(t *testing.T) {
	rng := sampling.NewRand(42)
	// The bad step comes last: validation must still happen before the first draw.
	_, err := Compose(rng, []sampling.Distribution{
		sampling.Uniform(0, 1),
		sampling.Uniform(10, 5),
	}, 100)
	if !errors.Is(err, sampling.ErrInvalidParameters) {
		t.Fatalf("Compose() error = %v, want ErrInvalidParameters", err)
	}
	if got, want := rng.Float64(), sampling.NewRand(42).Float64(); got != want {
		t.Errorf("generator advanced before validation: next = %v, want %v", got, want)
	}
}

func TestComposeRun(t *testing.T) {
	uni, _ := models.FindOrigin(models.DefaultOrigins(), "University")

	run, err := ComposeRun(sampling.NewRand(42), models.TruckModel(), uni, 200)
	if err != nil {
		t.Fatalf("ComposeRun: %v", err)
	}
	if run.Station != "University" || run.Mode != models.TruckModel().Mode {
		t.Errorf("run labels = %s/%s", run.Station, run.Mode)
	}
	lo, hi, _ := models.TruckModel().UniformBounds(uni)
	for i, s := range run.Samples {
		if s < lo || s > hi {
			t.Fatalf("sample %d = %v outside [%v, %v]", i, s, lo, hi)
		}
	}
}
