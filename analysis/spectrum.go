package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Spectrum is the Hann-windowed STFT magnitude spectrum of a signal,
// averaged over frames.
type Spectrum struct {
	SampleRate int       `json:"sample_rate"`
	BinHz      float64   `json:"bin_hz"`
	Mag        []float64 `json:"-"`
	PeakHz     float64   `json:"peak_hz"`
	CentroidHz float64   `json:"centroid_hz"`
}

// AnalyzeSpectrum averages fftSize-point frames of x with 50% overlap. A
// signal shorter than one frame is zero-padded.
func AnalyzeSpectrum(x []float64, sampleRate int, fftSize int) (Spectrum, error) {
	if sampleRate <= 0 {
		return Spectrum{}, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if fftSize < 8 || fftSize&(fftSize-1) != 0 {
		return Spectrum{}, fmt.Errorf("fft size must be a power of two >= 8, got %d", fftSize)
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("fft plan: %w", err)
	}

	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}
	buf := make([]float64, fftSize)
	spec := make([]complex128, fftSize/2+1)
	nBins := fftSize / 2
	mag := make([]float64, nBins)

	hop := fftSize / 2
	frames := 0
	for pos := 0; pos == 0 || pos+fftSize <= len(x); pos += hop {
		for i := range buf {
			buf[i] = 0
			if pos+i < len(x) {
				buf[i] = x[pos+i] * hann[i]
			}
		}
		plan.Forward(spec, buf)
		for k := 1; k < nBins; k++ {
			mag[k] += cmplx.Abs(spec[k])
		}
		frames++
	}

	s := Spectrum{SampleRate: sampleRate, BinHz: float64(sampleRate) / float64(fftSize), Mag: mag}
	var sum, weighted, peak float64
	for k := range mag {
		mag[k] /= float64(frames)
		f := float64(k) * s.BinHz
		sum += mag[k]
		weighted += mag[k] * f
		if mag[k] > peak {
			peak = mag[k]
			s.PeakHz = f
		}
	}
	if sum > 0 {
		s.CentroidHz = weighted / sum
	}
	return s, nil
}

// BandEnergy returns the mean magnitude between loHz and hiHz.
func (s Spectrum) BandEnergy(loHz, hiHz float64) float64 {
	if s.BinHz <= 0 {
		return 0
	}
	lo := max(int(math.Ceil(loHz/s.BinHz)), 1)
	hi := min(int(hiHz/s.BinHz), len(s.Mag)-1)
	if hi < lo {
		return 0
	}
	var sum float64
	for k := lo; k <= hi; k++ {
		sum += s.Mag[k]
	}
	return sum / float64(hi-lo+1)
}
