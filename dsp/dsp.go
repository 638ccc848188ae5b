package dsp

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// Biquad runs float32 audio through a second-order section. Process does
// not allocate.
type Biquad struct {
	sec *biquad.Section
}

// NewBiquad wraps a section with the given coefficients and zero state.
func NewBiquad(c biquad.Coefficients) *Biquad {
	return &Biquad{sec: biquad.NewSection(c)}
}

// Process filters one sample.
func (b *Biquad) Process(input float32) float32 {
	return float32(dspcore.FlushDenormals(b.sec.ProcessSample(float64(input))))
}

// ProcessBlock filters buf in place.
func (b *Biquad) ProcessBlock(buf []float32) {
	for i, x := range buf {
		buf[i] = b.Process(x)
	}
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.sec.Reset()
}

// Coefficients returns the section's normalized coefficients.
func (b *Biquad) Coefficients() biquad.Coefficients {
	return b.sec.Coefficients
}

// NewLowpass creates an RBJ lowpass biquad. q is the resonance
// (0.7071 for a Butterworth response). Cutoffs at or above Nyquist are
// pulled just below it.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	if q <= 0 {
		q = 0.70710678
	}
	nyquist := 0.5 * sampleRate
	if cutoff >= nyquist {
		cutoff = nyquist * 0.99
	}
	return NewBiquad(design.Lowpass(float64(cutoff), float64(q), float64(sampleRate)))
}
