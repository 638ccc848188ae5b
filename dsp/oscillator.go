package dsp

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

// ErrUnknownWaveform is returned by ParseWaveform for unsupported names.
var ErrUnknownWaveform = errors.New("unknown waveform")

var waveformNames = [...]string{
	Sine:     "sine",
	Triangle: "triangle",
	Square:   "square",
	Sawtooth: "sawtooth",
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform maps a waveform name to its Waveform. The empty string
// selects Triangle.
func ParseWaveform(name string) (Waveform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Triangle, nil
	}
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return Sine, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
}

// Oscillator is a phase-accumulating oscillator. Square and sawtooth are
// band-limited with PolyBLEP corrections.
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	phase      float64 // [0,1)
}

// NewOscillator creates an oscillator starting at phase zero.
func NewOscillator(sampleRate int, waveform Waveform) *Oscillator {
	return &Oscillator{
		sampleRate: float64(sampleRate),
		waveform:   waveform,
	}
}

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() Waveform {
	return o.waveform
}

// Next renders one sample at the given instantaneous frequency and advances the phase.
func (o *Oscillator) Next(freq float32) float32 {
	dt := float64(freq) / o.sampleRate
	if dt < 0 {
		dt = -dt
	}
	t := o.phase

	var y float64
	switch o.waveform {
	case Sine:
		y = math.Sin(2.0 * math.Pi * t)
	case Triangle:
		y = 4.0*math.Abs(wrap(t+0.75)-0.5) - 1.0
	case Square:
		if t < 0.5 {
			y = 1.0
		} else {
			y = -1.0
		}
		y += polyBLEP(t, dt)
		y -= polyBLEP(wrap(t+0.5), dt)
	case Sawtooth:
		y = 2.0*t - 1.0
		y -= polyBLEP(t, dt)
	}

	o.phase = wrap(t + dt)
	return float32(y)
}

// Reset rewinds the phase to zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

func wrap(t float64) float64 {
	_, frac := math.Modf(t)
	if frac < 0 {
		frac += 1.0
	}
	return frac
}

func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1.0
	case t > 1.0-dt:
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0
}
