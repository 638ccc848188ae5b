package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-chime/analysis"
	"github.com/cwbudde/algo-chime/dsp"
	"github.com/cwbudde/algo-chime/hittest"
	"github.com/cwbudde/algo-chime/internal/wavio"
	"github.com/cwbudde/algo-chime/irsynth"
	"github.com/cwbudde/algo-chime/preset"
	"github.com/cwbudde/algo-chime/scene"
)

// Renders a scripted pointer session offline: the pointer sweeps across
// the sculpture while the scene ticks at a fixed frame rate, and the audio
// the session produces is written to a WAV file.
func main() {
	duration := flag.Float64("duration", 4.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	outRate := flag.Int("out-rate", 0, "Resample the output to this rate (0 keeps the render rate)")
	fps := flag.Int("fps", 60, "Scene frame rate")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	waveform := flag.String("waveform", "", "Oscillator waveform override (sine, square, sawtooth, triangle)")
	seed := flag.Int64("seed", 0, "Layout seed override (0 keeps the preset's)")
	sweeps := flag.Float64("sweeps", 2, "Horizontal pointer sweeps across the view over the render")
	presses := flag.String("press", "0.5", "Comma-separated times in seconds of primary presses at the pointer")
	releaseAt := flag.Float64("release-at", -1, "Disable sound at this time, stopping the held note (negative: never)")
	explodeAt := flag.Float64("explode-at", -1, "Toggle explode at this time (negative: never)")
	irPath := flag.String("ir", "", "Room IR WAV path (enables the room)")
	room := flag.Bool("room", false, "Enable the room with a synthesized IR when -ir is not set")
	width := flag.Int("width", 1280, "View width in pixels")
	height := flag.Int("height", 720, "View height in pixels")
	metricsPath := flag.String("metrics", "", "Write analysis metrics JSON to this path (optional)")
	output := flag.String("output", "chime.wav", "Output WAV file path")
	flag.Parse()

	cfg := scene.DefaultConfig()
	if *presetPath != "" {
		var err error
		cfg, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	cfg.SampleRate = *sampleRate
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *waveform != "" {
		wf, err := dsp.ParseWaveform(*waveform)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Waveform = wf
	}

	pressTimes, err := parseTimes(*presses)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -press: %v\n", err)
		os.Exit(1)
	}
	if *fps < 1 {
		*fps = 1
	}

	s := scene.NewSession(cfg)
	vp := hittest.Viewport{Width: float32(*width), Height: float32(*height)}
	s.SetViewport(vp)

	eng := s.Engine()
	switch {
	case *irPath != "":
		if err := eng.SetRoomIRFromWAV(*irPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading IR %q: %v\n", *irPath, err)
			os.Exit(1)
		}
		eng.SetRoomEnabled(true)
	case *room:
		irCfg := irsynth.DefaultConfig()
		irCfg.SampleRate = *sampleRate
		l, r, err := irsynth.Generate(irCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error synthesizing IR: %v\n", err)
			os.Exit(1)
		}
		if err := eng.SetRoomIR(l, r); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting IR: %v\n", err)
			os.Exit(1)
		}
		eng.SetRoomEnabled(true)
	}

	fmt.Printf("Rendering %.2f seconds at %d Hz, %d fps, %d elements (waveform: %s)...\n",
		*duration, *sampleRate, *fps, s.Len(), cfg.Waveform)

	totalFrames := max(int(float64(*sampleRate)*(*duration)), 1)
	frameDur := time.Second / time.Duration(*fps)
	samples := make([]float32, 0, totalFrames*2)

	notes, held := 0, 0
	explodeDone, releaseDone := false, false
	nextPress := 0
	rendered := 0
	for rendered < totalFrames {
		t := float64(rendered) / float64(*sampleRate)

		s.Tick(frameDur)
		s.MarkRendered()

		// Triangle-wave sweep left to right and back at mid height,
		// dipping with the sine of the phase so facets change along the way.
		phase := math.Mod(t / *duration * *sweeps, 1)
		u := 1 - math.Abs(2*phase-1)
		x := float32(0.2+0.6*u) * vp.Width
		y := float32(0.5+0.1*math.Sin(2*math.Pi*phase)) * vp.Height
		if _, ok := s.PointerMove(x, y); ok {
			notes++
		}

		for nextPress < len(pressTimes) && t >= pressTimes[nextPress] {
			px, py := x, y
			if i := s.Nearest(); i >= 0 {
				if ex, ey, ok := s.ScreenPosition(i); ok {
					px, py = ex, ey
				}
			}
			if _, ok := s.PointerDown(px, py, scene.PrimaryButton); ok {
				held++
			}
			nextPress++
		}
		if !explodeDone && *explodeAt >= 0 && t >= *explodeAt {
			mode := s.ToggleExplode()
			fmt.Printf("  %.3fs: %s\n", t, mode)
			explodeDone = true
		}
		if !releaseDone && *releaseAt >= 0 && t >= *releaseAt {
			s.SetSoundEnabled(false)
			releaseDone = true
		}

		n := min(*sampleRate / *fps, totalFrames-rendered)
		samples = append(samples, eng.Process(n)...)
		rendered += n
	}

	st := eng.Stats()
	fmt.Printf("Played %d hover notes, %d held notes; %d pooled voices at end, held=%v\n", notes, held, st.Pooled, st.Sustained)

	m := analysis.MeasureStereo(samples, *sampleRate)
	fmt.Printf("Peak: %.6f, RMS: %.6f, Active: %.3fs, MaxStep: %.4f, Clicks: %d\n", m.Peak, m.RMS, m.ActiveS, m.MaxStep, m.Clicks)
	if spec, err := analysis.AnalyzeSpectrum(analysis.Downmix(samples), *sampleRate, 4096); err == nil {
		fmt.Printf("Spectral peak: %.1f Hz, centroid: %.1f Hz\n", spec.PeakHz, spec.CentroidHz)
	}
	if *metricsPath != "" {
		if err := writeMetrics(*metricsPath, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
			os.Exit(1)
		}
	}

	rate := *sampleRate
	if *outRate > 0 && *outRate != rate {
		l, r := wavio.Deinterleave(samples)
		if l, err = wavio.Resample(l, rate, *outRate); err == nil {
			r, err = wavio.Resample(r, rate, *outRate)
		}
		if err == nil {
			n := min(len(l), len(r))
			samples, err = wavio.Interleave(l[:n], r[:n])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		rate = *outRate
	}

	if err := wavio.WriteStereo(*output, samples, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames at %d Hz)\n", *output, len(samples)/2, rate)
}

func parseTimes(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative time %v", v)
		}
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			return nil, fmt.Errorf("times must be ascending")
		}
	}
	return out, nil
}

func writeMetrics(path string, m analysis.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	// NaN is not valid JSON.
	if math.IsNaN(m.DecayDBPerS) {
		m.DecayDBPerS = 0
	}
	return enc.Encode(m)
}
