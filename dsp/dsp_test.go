package dsp

import (
	"errors"
	"fmt"
	"math"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowRMS(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestOscillatorPitch(t *testing.T) {
	const sampleRate = 48000
	for _, w := range []Waveform{Sine, Triangle, Square, Sawtooth} {
		t.Run(w.String(), func(t *testing.T) {
			osc := NewOscillator(sampleRate, w)
			samples := make([]float32, sampleRate)
			for i := range samples {
				samples[i] = osc.Next(220)
			}
			got := measureFundamentalFreq(samples, sampleRate)
			if math.Abs(float64(got-220)) > 2.0 {
				t.Fatalf("expected ~220 Hz, got %.2f Hz", got)
			}
			for i, s := range samples {
				if s > 1.2 || s < -1.2 {
					t.Fatalf("sample %d out of range: %f", i, s)
				}
			}
		})
	}
}

func TestOscillatorStartsAtZeroForSineAndTriangle(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle} {
		osc := NewOscillator(48000, w)
		if got := osc.Next(440); got != 0 {
			t.Fatalf("%s: expected first sample 0, got %f", w, got)
		}
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		in   string
		want Waveform
	}{
		{"sine", Sine},
		{"Triangle", Triangle},
		{" square ", Square},
		{"sawtooth", Sawtooth},
		{"", Triangle},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseWaveform(tt.in)
			if err != nil {
				t.Fatalf("ParseWaveform: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
	if _, err := ParseWaveform("noise"); !errors.Is(err, ErrUnknownWaveform) {
		t.Fatalf("expected ErrUnknownWaveform, got %v", err)
	}
}

func TestLowpassAttenuatesAboveCutoff(t *testing.T) {
	const sampleRate = 48000
	render := func(freq float64) float64 {
		lp := NewLowpass(1000, sampleRate, 1.2)
		buf := make([]float32, sampleRate/2)
		for i := range buf {
			buf[i] = float32(math.Sin(2.0 * math.Pi * freq * float64(i) / sampleRate))
		}
		lp.ProcessBlock(buf)
		return windowRMS(buf[len(buf)/2:])
	}
	low := render(200)
	high := render(8000)
	if low < 0.6 {
		t.Fatalf("expected passband near unity, got rms=%f", low)
	}
	if high > low*0.05 {
		t.Fatalf("expected strong attenuation at 8 kHz: low=%f high=%f", low, high)
	}
}

func TestLowpassResponse(t *testing.T) {
	const sampleRate = 48000
	c := NewLowpass(2000, sampleRate, 0.70710678).Coefficients()
	if db := c.MagnitudeDB(2000, sampleRate); math.Abs(db+3.01) > 0.05 {
		t.Fatalf("butterworth gain at cutoff = %.3f dB, want -3.01", db)
	}
	if db := c.MagnitudeDB(20, sampleRate); math.Abs(db) > 0.01 {
		t.Fatalf("passband gain = %.3f dB", db)
	}

	// Above Nyquist the cutoff is pulled down instead of silencing the filter.
	over := NewLowpass(30000, sampleRate, 0.70710678)
	buf := make([]float32, 4800)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate))
	}
	over.ProcessBlock(buf)
	if rms := windowRMS(buf[len(buf)/2:]); rms < 0.6 {
		t.Fatalf("cutoff above nyquist muted the signal: rms=%f", rms)
	}
}

func TestLowpassMatchesImpulseResponseConvolution(t *testing.T) {
	const sampleRate = 48000
	const irLen = 2048

	lp := NewLowpass(1000, sampleRate, 1.2)
	ir := make([]float32, irLen)
	ir[0] = 1
	lp.ProcessBlock(ir)

	input := make([]float32, 256)
	for i := range input {
		input[i] = float32(math.Sin(float64(i)*0.37) * math.Exp(-float64(i)/80.0))
	}

	want := make([]float32, len(input)+len(ir)-1)
	if err := algofft.ConvolveReal(want, input, ir); err != nil {
		t.Fatalf("ConvolveReal error: %v", err)
	}

	lp.Reset()
	got := make([]float32, len(input))
	copy(got, input)
	lp.ProcessBlock(got)

	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-3 {
			t.Fatalf("sample %d: filter=%f convolution=%f", i, got[i], want[i])
		}
	}
}

func TestMeterFollowsAndReleases(t *testing.T) {
	m := NewMeter(48000, 1, 50)
	for i := 0; i < 4800; i++ {
		m.Process(0.5)
	}
	if lvl := m.Level(); math.Abs(float64(lvl-0.5)) > 0.01 {
		t.Fatalf("expected level to settle near 0.5, got %f", lvl)
	}
	peak := m.Level()
	for i := 0; i < 4800; i++ {
		m.Process(0)
	}
	if m.Level() >= peak*0.5 {
		t.Fatalf("expected release after 100ms: peak=%f now=%f", peak, m.Level())
	}
	m.Reset()
	if m.Level() != 0 {
		t.Fatalf("expected reset level 0")
	}
}
