// Package irsynth generates synthetic stereo room impulse responses for the
// mix-bus convolver.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-chime/dsp"
)

// Config controls room IR generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Seed       int64

	PreDelayS   float64 // gap between the direct path and the first reflection
	DirectLevel float64
	EarlyCount  int
	LateLevel   float64
	StereoWidth float64

	DecayS     float64 // RT-style time constant of the diffuse tail
	TailCutoff float64 // lowpass on the tail, Hz
	FadeOutS   float64 // cosine fade at the end; 0 = none

	NormalizePeak float64
}

// DefaultConfig returns a short, bright room that keeps the notes distinct.
func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		DurationS:     0.9,
		Seed:          1,
		PreDelayS:     0.004,
		DirectLevel:   0.8,
		EarlyCount:    20,
		LateLevel:     0.08,
		StereoWidth:   0.6,
		DecayS:        0.45,
		TailCutoff:    4500,
		FadeOutS:      0.02,
		NormalizePeak: 0.9,
	}
}

// Validate checks cfg for usable values.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.PreDelayS < 0 || c.PreDelayS >= c.DurationS {
		return fmt.Errorf("pre-delay must be in [0, duration)")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.StereoWidth < 0 || c.StereoWidth > 1 {
		return fmt.Errorf("stereo width must be in [0,1]")
	}
	if c.DecayS <= 0 {
		return fmt.Errorf("decay must be > 0")
	}
	if c.TailCutoff <= 0 {
		return fmt.Errorf("tail cutoff must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Generate synthesizes a stereo room IR: a direct impulse, sparse early
// reflections after the pre-delay, and a lowpassed exponential noise tail.
func Generate(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := max(int(math.Round(cfg.DurationS*float64(cfg.SampleRate))), 1)
	left := make([]float64, n)
	right := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	left[0] = cfg.DirectLevel
	right[0] = cfg.DirectLevel

	pre := cfg.PreDelayS
	for i := 0; i < cfg.EarlyCount; i++ {
		t := pre + 0.045*rng.Float64()
		idx := int(t * float64(cfg.SampleRate))
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.1 + 0.3*rng.Float64()) * math.Exp(-(t-pre)*24)
		pan := (rng.Float64()*2 - 1) * cfg.StereoWidth
		left[idx] += amp * (1 - 0.5*pan)
		right[idx] += amp * (1 + 0.5*pan)
	}

	if cfg.LateLevel > 0 {
		lpL := dsp.NewLowpass(float32(cfg.TailCutoff), float32(cfg.SampleRate), 0.7071)
		lpR := dsp.NewLowpass(float32(cfg.TailCutoff), float32(cfg.SampleRate), 0.7071)
		start := int(pre * float64(cfg.SampleRate))
		for i := start; i < n; i++ {
			t := float64(i-start) / float64(cfg.SampleRate)
			env := math.Exp(-t / cfg.DecayS)
			// Tail builds up over the first few milliseconds.
			env *= 1 - math.Exp(-t/0.005)
			nl := float32(rng.NormFloat64())
			nr := float32(rng.NormFloat64())
			wl := float64(lpL.Process(nl))
			wr := float64(lpR.Process(nr))
			mid := 0.5 * (wl + wr)
			left[i] += cfg.LateLevel * env * (mid + cfg.StereoWidth*(wl-mid))
			right[i] += cfg.LateLevel * env * (mid + cfg.StereoWidth*(wr-mid))
		}
	}

	removeDC(left, 0.995)
	removeDC(right, 0.995)
	fadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	fadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak := max(maxAbs(left), maxAbs(right), 1e-12)
	s := cfg.NormalizePeak / peak
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := range n {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

func removeDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = max(m, math.Abs(v))
	}
	return m
}

func fadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	k := min(int(math.Round(fadeS*float64(sampleRate))), len(buf))
	start := len(buf) - k
	for i := range k {
		buf[start+i] *= 0.5 * (1 + math.Cos(float64(i)/float64(k)*math.Pi))
	}
}
