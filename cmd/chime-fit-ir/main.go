package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-chime/analysis"
	"github.com/cwbudde/algo-chime/internal/fitcommon"
	"github.com/cwbudde/algo-chime/internal/wavio"
	"github.com/cwbudde/algo-chime/irsynth"
	"github.com/cwbudde/algo-chime/notemap"
	"github.com/cwbudde/algo-chime/synth"
)

var knobs = []fitcommon.Knob{
	{Name: "decay_s", Min: 0.05, Max: 2.5},
	{Name: "tail_cutoff", Min: 800, Max: 12000},
	{Name: "late_level", Min: 0.005, Max: 0.4},
	{Name: "early_count", Min: 0, Max: 48, IsInt: true},
	{Name: "pre_delay_s", Min: 0, Max: 0.03},
	{Name: "direct_level", Min: 0.1, Max: 1.0},
	{Name: "wet_mix", Min: 0.0, Max: 1.0},
}

type runReport struct {
	ReferencePath string             `json:"reference_path"`
	OutputIR      string             `json:"output_ir"`
	SampleRate    int                `json:"sample_rate"`
	Freq          float64            `json:"freq"`
	HoldSec       float64            `json:"hold_seconds"`
	DurationSec   float64            `json:"elapsed_seconds"`
	Evaluations   int                `json:"evaluations"`
	MayflyVariant string             `json:"mayfly_variant"`
	BestScore     float64            `json:"best_score_db"`
	BestMetrics   analysis.Metrics   `json:"best_metrics"`
	BestKnobs     map[string]float64 `json:"best_knobs"`
}

type evalResult struct {
	score   float64
	metrics analysis.Metrics
	irL     []float32
	irR     []float32
}

func main() {
	referencePath := flag.String("reference", "reference/chime.wav", "Reference recording of one held note")
	outputIR := flag.String("output-ir", "assets/ir/fitted.wav", "Path to write the best synthesized IR")
	reportPath := flag.String("report", "", "Report JSON path (default: <output-ir>.report.json)")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	freq := flag.Float64("freq", notemap.NoteFor(0, 0), "Note frequency in Hz")
	hold := flag.Float64("hold", 0.5, "Seconds before the held note is released")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputIR == "" {
		die("output-ir must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	*reportEvery = max(*reportEvery, 1)
	*hold = max(*hold, 0.05)
	if *reportPath == "" {
		*reportPath = *outputIR + ".report.json"
	}

	refL, refR, refRate, err := wavio.ReadStereo(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	if refRate != *sampleRate {
		if refL, err = wavio.Resample(refL, refRate, *sampleRate); err == nil {
			refR, err = wavio.Resample(refR, refRate, *sampleRate)
		}
		if err != nil {
			die("failed to resample reference: %v", err)
		}
	}
	n := min(len(refL), len(refR))
	ref := make([]float64, n)
	for i := range n {
		ref[i] = 0.5 * (float64(refL[i]) + float64(refR[i]))
	}

	evaluate := func(vals []float64) (evalResult, error) {
		irCfg := irsynth.DefaultConfig()
		irCfg.SampleRate = *sampleRate
		irCfg.Seed = *seed
		irCfg.DecayS = vals[0]
		irCfg.TailCutoff = vals[1]
		irCfg.LateLevel = vals[2]
		irCfg.EarlyCount = int(vals[3])
		irCfg.PreDelayS = vals[4]
		irCfg.DirectLevel = vals[5]
		irCfg.DurationS = math.Max(irCfg.DurationS, 3*irCfg.DecayS)
		left, right, err := irsynth.Generate(irCfg)
		if err != nil {
			return evalResult{}, err
		}

		params := synth.NewDefaultParams()
		params.RoomWetMix = float32(vals[6])
		out, err := renderNote(*sampleRate, params, left, right, *freq, *hold, len(ref))
		if err != nil {
			return evalResult{}, err
		}
		score := analysis.EnvelopeDistance(ref, out)
		if math.IsNaN(score) {
			return evalResult{}, fmt.Errorf("reference is silent")
		}
		return evalResult{
			score:   score,
			metrics: analysis.Measure(out, *sampleRate),
			irL:     left,
			irR:     right,
		}, nil
	}

	fmt.Printf("Fitting room IR to %s (%d frames at %d Hz, %.2f Hz held %.2fs)\n", *referencePath, len(ref), *sampleRate, *freq, *hold)

	start := time.Now()
	deadline := start.Add(time.Duration(*timeBudget * float64(time.Second)))

	defaults := irsynth.DefaultConfig()
	bestVals := []float64{
		defaults.DecayS, defaults.TailCutoff, defaults.LateLevel, float64(defaults.EarlyCount),
		defaults.PreDelayS, defaults.DirectLevel, float64(synth.NewDefaultParams().RoomWetMix),
	}
	best, err := evaluate(bestVals)
	if err != nil {
		die("initial evaluation failed: %v", err)
	}
	evals := 1
	fmt.Printf("Initial score=%.3f dB\n", best.score)

	round := 0
	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		budget := min(*mayflyRoundEvals, *maxEvals-evals)
		iters := max(1, budget/(2*(*mayflyPop)))

		cfg, err := fitcommon.NewMayflyConfig(*mayflyVariant, *mayflyPop, len(knobs), iters)
		if err != nil {
			die("invalid mayfly config: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))
		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return best.score + 1.0
			}
			vals := fitcommon.Denormalize(pos, knobs)
			res, err := evaluate(vals)
			evals++
			if err != nil {
				return best.score + 0.8
			}
			if res.score < best.score {
				best = res
				bestVals = vals
				fmt.Printf("Improved eval=%d score=%.3f dB\n", evals, best.score)
			}
			if evals%*reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.3f\n", round, evals, time.Since(start).Seconds(), best.score)
			}
			return res.score
		}

		if _, err := fitcommon.RunMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			continue
		}
	}

	if err := wavio.WriteStereoLR(*outputIR, best.irL, best.irR, *sampleRate); err != nil {
		die("failed to write IR: %v", err)
	}
	metrics := best.metrics
	if math.IsNaN(metrics.DecayDBPerS) {
		metrics.DecayDBPerS = 0
	}
	report := runReport{
		ReferencePath: *referencePath,
		OutputIR:      *outputIR,
		SampleRate:    *sampleRate,
		Freq:          *freq,
		HoldSec:       *hold,
		DurationSec:   time.Since(start).Seconds(),
		Evaluations:   evals,
		MayflyVariant: *mayflyVariant,
		BestScore:     best.score,
		BestMetrics:   metrics,
		BestKnobs:     fitcommon.Named(bestVals, knobs),
	}
	if err := writeJSON(*reportPath, report); err != nil {
		die("failed to write report: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.3f dB variant=%s\n", evals, report.DurationSec, best.score, *mayflyVariant)
	fmt.Printf("Wrote %s and %s\n", *outputIR, *reportPath)
}

// renderNote plays one held note through a room with the given IR and
// returns frames samples of the mono downmix.
func renderNote(sampleRate int, params *synth.Params, irL, irR []float32, freq, hold float64, frames int) ([]float64, error) {
	eng := synth.NewEngine(sampleRate, params)
	if err := eng.SetRoomIR(irL, irR); err != nil {
		return nil, err
	}
	eng.SetRoomEnabled(true)
	if _, ok := eng.Trigger(freq, true); !ok {
		return nil, fmt.Errorf("note %.2f Hz not started", freq)
	}

	const blockSize = 128
	releaseAt := int(hold * float64(sampleRate))
	released := false
	st := make([]float32, 0, frames*2)
	for rendered := 0; rendered < frames; {
		if !released && rendered >= releaseAt {
			eng.StopSustained()
			released = true
		}
		n := min(blockSize, frames-rendered)
		st = append(st, eng.Process(n)...)
		rendered += n
	}
	return analysis.Downmix(st), nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
