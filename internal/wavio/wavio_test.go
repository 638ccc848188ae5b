package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func TestWriteReadStereoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	left := []float32{0, 0.25, -0.5, 0.75}
	right := []float32{0.5, -0.25, 0, -0.75}
	if err := WriteStereoLR(path, left, right, 44100); err != nil {
		t.Fatalf("WriteStereoLR: %v", err)
	}

	gotL, gotR, rate, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("ReadStereo: %v", err)
	}
	if rate != 44100 {
		t.Fatalf("rate = %d", rate)
	}
	if len(gotL) != len(left) || len(gotR) != len(right) {
		t.Fatalf("lengths %d/%d", len(gotL), len(gotR))
	}
	const tol = 1e-3 // 16-bit quantization
	for i := range left {
		if math.Abs(float64(gotL[i]-left[i])) > tol || math.Abs(float64(gotR[i]-right[i])) > tol {
			t.Fatalf("frame %d: got (%f,%f) want (%f,%f)", i, gotL[i], gotR[i], left[i], right[i])
		}
	}
}

func TestReadMonoDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	err = enc.Write(&audio.Float32Buffer{
		Format:         &audio.Format{SampleRate: 22050, NumChannels: 1},
		Data:           []float32{0.5, -0.5, 0.25},
		SourceBitDepth: 16,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	f.Close()

	l, r, rate, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("ReadStereo: %v", err)
	}
	if rate != 22050 || len(l) != 3 {
		t.Fatalf("rate=%d frames=%d", rate, len(l))
	}
	for i := range l {
		if l[i] != r[i] {
			t.Fatalf("mono channels differ at %d", i)
		}
	}
}

func TestReadStereoErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, _, err := ReadStereo(filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not a wav"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := ReadStereo(bogus); err == nil {
		t.Fatal("expected error for invalid file")
	}
}

func TestResample(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
	}
	same, err := Resample(in, 48000, 48000)
	if err != nil || &same[0] != &in[0] {
		t.Fatalf("equal rates should return the input (err=%v)", err)
	}
	out, err := Resample(in, 48000, 24000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if d := len(out) - len(in)/2; d < -256 || d > 256 {
		t.Fatalf("resampled length %d, want about %d", len(out), len(in)/2)
	}
}

func TestInterleave(t *testing.T) {
	st, err := Interleave([]float32{1, 2}, []float32{3, 4})
	if err != nil {
		t.Fatalf("Interleave: %v", err)
	}
	want := []float32{1, 3, 2, 4}
	for i := range want {
		if st[i] != want[i] {
			t.Fatalf("interleaved = %v", st)
		}
	}
	l, r := Deinterleave(st)
	if l[1] != 2 || r[0] != 3 {
		t.Fatalf("deinterleave = %v %v", l, r)
	}
	if _, err := Interleave([]float32{1}, nil); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
