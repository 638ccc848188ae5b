package fitcommon

import (
	"math"
	"math/rand"
	"testing"
)

var testKnobs = []Knob{
	{Name: "decay", Min: 0.1, Max: 2.0},
	{Name: "early", Min: 0, Max: 40, IsInt: true},
	{Name: "cutoff", Min: 1000, Max: 9000},
}

func TestDenormalize(t *testing.T) {
	got := Denormalize([]float64{0.5, 0.51, 2}, testKnobs)
	if math.Abs(got[0]-1.05) > 1e-12 {
		t.Fatalf("decay = %f", got[0])
	}
	if got[1] != 20 {
		t.Fatalf("integer knob = %f, want 20", got[1])
	}
	if got[2] != 9000 {
		t.Fatalf("out-of-range position should clamp, got %f", got[2])
	}
	short := Denormalize([]float64{1}, testKnobs)
	if short[1] != 0 || short[2] != 1000 {
		t.Fatalf("missing coordinates should take minimum, got %v", short)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	vals := []float64{0.7, 12, 4200}
	back := Denormalize(Normalize(vals, testKnobs), testKnobs)
	for i := range vals {
		if math.Abs(back[i]-vals[i]) > 1e-9 {
			t.Fatalf("knob %s: %f -> %f", testKnobs[i].Name, vals[i], back[i])
		}
	}
	if p := Normalize([]float64{-5, 100, 0}, testKnobs); p[0] != 0 || p[1] != 1 || p[2] != 0 {
		t.Fatalf("normalize should clamp, got %v", p)
	}
}

func TestNamed(t *testing.T) {
	m := Named([]float64{1, 2, 3}, testKnobs)
	if len(m) != 3 || m["early"] != 2 {
		t.Fatalf("named = %v", m)
	}
}

func TestNewMayflyConfig(t *testing.T) {
	for _, v := range Variants {
		cfg, err := NewMayflyConfig(v, 6, 3, 10)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if cfg.ProblemSize != 3 || cfg.NPop != 6 || cfg.NC != 12 || cfg.NM != 1 {
			t.Fatalf("%s: unexpected config %+v", v, cfg)
		}
		if cfg.LowerBound != 0 || cfg.UpperBound != 1 {
			t.Fatalf("%s: bounds [%f,%f]", v, cfg.LowerBound, cfg.UpperBound)
		}
	}
	if _, err := NewMayflyConfig("bogus", 6, 3, 10); err == nil {
		t.Fatal("expected error for unknown variant")
	}
	if _, err := NewMayflyConfig("ma", 6, 0, 10); err == nil {
		t.Fatal("expected error for zero dims")
	}
}

func TestRunMayflyFindsMinimum(t *testing.T) {
	cfg, err := NewMayflyConfig("ma", 10, 2, 60)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Rand = rand.New(rand.NewSource(3))
	best := math.Inf(1)
	calls := 0
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		calls++
		dx, dy := pos[0]-0.3, pos[1]-0.7
		f := dx*dx + dy*dy
		best = math.Min(best, f)
		return f
	}
	if _, err := RunMayfly(cfg); err != nil {
		t.Fatalf("RunMayfly: %v", err)
	}
	if calls == 0 {
		t.Fatal("objective never evaluated")
	}
	if best > 0.01 {
		t.Fatalf("best = %f, want near 0", best)
	}
}
