package synth

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func directConvolve(x []float32, h []float32) []float32 {
	y := make([]float32, len(x)+len(h)-1)
	for i := 0; i < len(x); i++ {
		for j := 0; j < len(h); j++ {
			y[i+j] += x[i] * h[j]
		}
	}
	return y
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := min(len(a), len(b))
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

func stereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}

func maxAbs(x []float32) float32 {
	var m float32
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// renderFrames pulls n frames from e in 128-frame blocks.
func renderFrames(e *Engine, n int) []float32 {
	out := make([]float32, 0, n*2)
	for n > 0 {
		block := min(128, n)
		out = append(out, e.Process(block)...)
		n -= block
	}
	return out
}

func testManager(capacity int) *VoiceManager {
	var id VoiceID
	return NewVoiceManager(capacity, func(spec VoiceSpec) *Voice {
		id++
		return NewVoice(48000, id, spec, NewDefaultParams(), 0)
	})
}

type fakeContext struct {
	state     ContextState
	resumes   int
	resumeErr error
}

func (c *fakeContext) State() ContextState { return c.state }

func (c *fakeContext) Resume() error {
	c.resumes++
	if c.resumeErr != nil {
		return c.resumeErr
	}
	c.state = ContextRunning
	return nil
}

var errNoDevice = errors.New("no audio device")

func writeTempIRWav(t *testing.T, left []float32, right []float32, sampleRate int) string {
	t.Helper()
	f, err := os.CreateTemp("", "ir-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	numCh := 1
	data := make([]float32, len(left))
	copy(data, left)
	if right != nil {
		numCh = 2
		if len(right) != len(left) {
			t.Fatalf("left/right length mismatch")
		}
		data = make([]float32, len(left)*2)
		for i := range left {
			data[i*2] = left[i]
			data[i*2+1] = right[i]
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, numCh, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numCh,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("wav write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("wav close: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(f.Name()) })
	return f.Name()
}
