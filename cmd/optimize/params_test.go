package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/telemetry"
)

func TestParamVector_DefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	if len(fields(cfg)) != pv.Dim() {
		t.Fatalf("fields() has %d entries, specs have %d", len(fields(cfg)), pv.Dim())
	}

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %g, spec default %g", spec.Name, got[i], spec.Default)
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s: default %g outside [%g,%g]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %g -> %g", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_ApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		if i%2 == 0 {
			values[i] = spec.Max * 10
		} else {
			values[i] = spec.Min - 1
		}
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		want := spec.Min
		if i%2 == 0 {
			want = spec.Max
		}
		if got[i] != want {
			t.Errorf("%s = %g, want %g", spec.Name, got[i], want)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config is invalid: %v", err)
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		days    int
		quality float64
		want    float64
	}{
		{0, 1, 0},
		{100, 0, -100},
		{100, 1, -120},
		{50, 0.5, -55},
	}
	for _, tt := range tests {
		if got := computeFitness(tt.days, tt.quality); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("computeFitness(%d, %g) = %g, want %g", tt.days, tt.quality, got, tt.want)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	steady := func(n int) []telemetry.WindowStats {
		out := make([]telemetry.WindowStats, n)
		for i := range out {
			out[i] = telemetry.WindowStats{Erbasts: 100, Carvizes: 10, HuntsAttempted: 10, HuntRate: 0.3}
		}
		return out
	}

	if q := computeQuality(steady(qualityWarmupWindows)); q != 0 {
		t.Errorf("warmup-only quality = %g, want 0", q)
	}
	if q := computeQuality(steady(10)); math.Abs(q-1) > 1e-9 {
		t.Errorf("ideal quality = %g, want 1", q)
	}

	collapsed := steady(10)
	for i := range collapsed {
		collapsed[i].Carvizes = 1
	}
	if q := computeQuality(collapsed); q != 0 {
		t.Errorf("collapsed quality = %g, want 0", q)
	}
}
