// Package analysis measures rendered audio: level, activity span, release
// decay and discontinuities that would be heard as clicks.
package analysis

import (
	"math"
)

// Metrics summarizes a rendered signal.
type Metrics struct {
	SampleRate int `json:"sample_rate"`
	Frames     int `json:"frames"`

	Peak    float64 `json:"peak"`
	RMS     float64 `json:"rms"`
	Clipped int     `json:"clipped"`

	ActiveStart int     `json:"active_start"`
	ActiveEnd   int     `json:"active_end"`
	ActiveS     float64 `json:"active_s"`

	MaxStep     float64 `json:"max_step"`
	Clicks      int     `json:"clicks"`
	DecayDBPerS float64 `json:"decay_db_per_s"`
}

// Thresholds used by Measure.
const (
	SilenceThreshold = 1e-4
	ClickThreshold   = 0.1
)

// Measure computes Metrics for a mono signal.
func Measure(x []float64, sampleRate int) Metrics {
	m := Metrics{SampleRate: sampleRate, Frames: len(x), DecayDBPerS: math.NaN()}
	if len(x) == 0 || sampleRate <= 0 {
		return m
	}
	for _, v := range x {
		a := math.Abs(v)
		m.Peak = max(m.Peak, a)
		if a >= 1 {
			m.Clipped++
		}
	}
	m.RMS = rms(x)
	if s, e, ok := ActiveSpan(x, SilenceThreshold); ok {
		m.ActiveStart, m.ActiveEnd = s, e
		m.ActiveS = float64(e-s) / float64(sampleRate)
	}
	m.MaxStep = MaxStep(x)
	m.Clicks = len(Clicks(x, ClickThreshold))

	if m.Peak <= SilenceThreshold {
		return m
	}
	const frame, hop = 256, 128
	m.DecayDBPerS = decaySlopeDBPerS(rmsEnvelope(x, frame, hop), float64(hop)/float64(sampleRate))
	return m
}

// MeasureStereo downmixes interleaved stereo and measures it.
func MeasureStereo(interleaved []float32, sampleRate int) Metrics {
	return Measure(Downmix(interleaved), sampleRate)
}

// Downmix averages interleaved stereo to mono.
func Downmix(interleaved []float32) []float64 {
	n := len(interleaved) / 2
	out := make([]float64, n)
	for i := range n {
		out[i] = 0.5 * (float64(interleaved[i*2]) + float64(interleaved[i*2+1]))
	}
	return out
}

// ActiveSpan returns the half-open range [start, end) from the first to the
// last sample whose magnitude exceeds threshold.
func ActiveSpan(x []float64, threshold float64) (start, end int, ok bool) {
	start = -1
	for i, v := range x {
		if math.Abs(v) > threshold {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// MaxStep returns the largest absolute difference between neighboring
// samples, counting the step in from silence.
func MaxStep(x []float64) float64 {
	prev, m := 0.0, 0.0
	for _, v := range x {
		m = max(m, math.Abs(v-prev))
		prev = v
	}
	return m
}

// Clicks returns the indices where the signal jumps by more than threshold
// from the previous sample.
func Clicks(x []float64, threshold float64) []int {
	var out []int
	prev := 0.0
	for i, v := range x {
		if math.Abs(v-prev) > threshold {
			out = append(out, i)
		}
		prev = v
	}
	return out
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range n {
		out[i] = rms(x[i*hop : i*hop+frame])
	}
	return out
}

func linToDB(x float64) float64 {
	return 20 * math.Log10(max(x, 1e-12))
}

// decaySlopeDBPerS fits a line to the envelope in dB from its peak down to
// 60 dB below it.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak, peakIdx := math.Inf(-1), 0
	for i, v := range env {
		if db := linToDB(v); db > peak {
			peak, peakIdx = db, i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < peak-60 {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}
