package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-chime/internal/wavio"
	"github.com/cwbudde/algo-chime/irsynth"
)

func main() {
	cfg := irsynth.DefaultConfig()

	output := flag.String("output", "assets/ir/room_48k.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.PreDelayS, "pre-delay", cfg.PreDelayS, "Gap before the first reflection (s)")
	flag.Float64Var(&cfg.DirectLevel, "direct", cfg.DirectLevel, "Direct impulse level")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.StereoWidth, "stereo-width", cfg.StereoWidth, "Stereo decorrelation width [0,1]")
	flag.Float64Var(&cfg.DecayS, "decay", cfg.DecayS, "Tail decay time constant (s)")
	flag.Float64Var(&cfg.TailCutoff, "cutoff", cfg.TailCutoff, "Tail lowpass cutoff (Hz)")
	flag.Float64Var(&cfg.FadeOutS, "fade", cfg.FadeOutS, "Fade-out length (s)")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	left, right, err := irsynth.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chime-ir error: %v\n", err)
		os.Exit(1)
	}

	if err := wavio.WriteStereoLR(*output, left, right, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := stats(left, right)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func stats(left []float32, right []float32) (peak float64, rms float64) {
	if len(left) == 0 || len(right) == 0 {
		return 0, 0
	}
	var sum float64
	for i := range left {
		lv := float64(left[i])
		rv := float64(right[i])
		peak = max(peak, math.Abs(lv), math.Abs(rv))
		sum += lv*lv + rv*rv
	}
	return peak, math.Sqrt(sum / float64(len(left)*2))
}
