// Package wavio reads and writes the WAV files used for rendered sessions
// and room impulse responses.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadStereo decodes a mono or stereo WAV file into left and right
// channels. Mono files are duplicated; channels past the second are ignored.
func ReadStereo(path string) (left, right []float32, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, nil, 0, fmt.Errorf("empty wav data: %s", path)
	}
	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := range frames {
		left[i] = buf.Data[i*ch]
		if ch > 1 {
			right[i] = buf.Data[i*ch+1]
		} else {
			right[i] = left[i]
		}
	}
	return left, right, buf.Format.SampleRate, nil
}

// Resample converts in from one rate to another. Equal rates return in.
func Resample(in []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, fmt.Errorf("resample %d->%d: %w", fromRate, toRate, err)
	}
	x := make([]float64, len(in))
	for i, v := range in {
		x[i] = float64(v)
	}
	y := r.Process(x)
	out := make([]float32, len(y))
	for i, v := range y {
		out[i] = float32(v)
	}
	return out, nil
}

// Interleave merges equal-length channels into one stereo buffer.
func Interleave(left, right []float32) ([]float32, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("left/right length mismatch: %d != %d", len(left), len(right))
	}
	out := make([]float32, len(left)*2)
	for i := range left {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return out, nil
}

// Deinterleave splits a stereo buffer into its channels.
func Deinterleave(interleaved []float32) (left, right []float32) {
	n := len(interleaved) / 2
	left = make([]float32, n)
	right = make([]float32, n)
	for i := range n {
		left[i] = interleaved[i*2]
		right[i] = interleaved[i*2+1]
	}
	return left, right
}

// WriteStereo writes interleaved stereo samples as 16-bit PCM, creating
// parent directories as needed.
func WriteStereo(path string, interleaved []float32, sampleRate int) error {
	return write(path, interleaved, sampleRate, 2)
}

// WriteStereoLR writes separate left and right channels.
func WriteStereoLR(path string, left, right []float32, sampleRate int) error {
	data, err := Interleave(left, right)
	if err != nil {
		return err
	}
	return write(path, data, sampleRate, 2)
}

func write(path string, data []float32, sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return enc.Close()
}
