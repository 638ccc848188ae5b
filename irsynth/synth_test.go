package irsynth

import (
	"math"
	"testing"
)

func energy(x []float32, from, to int) float64 {
	e := 0.0
	for _, v := range x[from:to] {
		e += float64(v) * float64(v)
	}
	return e
}

func TestGenerateBasic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationS = 0.5
	cfg.Seed = 42
	cfg.NormalizePeak = 0.8

	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(l) != int(0.5*48000) || len(r) != len(l) {
		t.Fatalf("unexpected output lengths: L=%d R=%d", len(l), len(r))
	}

	peak := 0.0
	for i := range l {
		if math.IsNaN(float64(l[i])) || math.IsInf(float64(l[i]), 0) || math.IsNaN(float64(r[i])) || math.IsInf(float64(r[i]), 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
		peak = max(peak, math.Abs(float64(l[i])), math.Abs(float64(r[i])))
	}
	if math.Abs(peak-0.8) > 1e-5 {
		t.Fatalf("peak = %.6f, want 0.8", peak)
	}
}

func TestGenerateTailDecays(t *testing.T) {
	cfg := DefaultConfig()
	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	win := cfg.SampleRate / 10
	n := len(l)
	head := energy(l, 0, win) + energy(r, 0, win)
	tail := energy(l, n-win, n) + energy(r, n-win, n)
	if tail <= 0 || tail*10 > head {
		t.Fatalf("tail energy %.3g not well below head %.3g", tail, head)
	}
	if last := math.Abs(float64(l[n-1])); last > 1e-6 {
		t.Fatalf("fade-out should end at zero, got %g", last)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 32000
	cfg.DurationS = 0.2
	cfg.Seed = 99

	l1, r1, err := Generate(cfg)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	l2, r2, err := Generate(cfg)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] || r1[i] != r2[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}

	cfg.Seed = 100
	l3, _, err := Generate(cfg)
	if err != nil {
		t.Fatalf("third Generate: %v", err)
	}
	same := true
	for i := range l1 {
		if l1[i] != l3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical IRs")
	}
}

func TestMonoWidthMatchesChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StereoWidth = 0
	cfg.DurationS = 0.3
	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := range l {
		if math.Abs(float64(l[i]-r[i])) > 1e-6 {
			t.Fatalf("zero width should give identical channels, differ at %d", i)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	for name, mut := range map[string]func(*Config){
		"rate":     func(c *Config) { c.SampleRate = 4000 },
		"duration": func(c *Config) { c.DurationS = 0 },
		"predelay": func(c *Config) { c.PreDelayS = 2 },
		"width":    func(c *Config) { c.StereoWidth = 1.5 },
		"decay":    func(c *Config) { c.DecayS = 0 },
		"cutoff":   func(c *Config) { c.TailCutoff = -1 },
		"peak":     func(c *Config) { c.NormalizePeak = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mut(&cfg)
			if _, _, err := Generate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
