package notemap

import (
	"math"
	"testing"
)

func TestNoteForKnownValues(t *testing.T) {
	tests := []struct {
		element, facet int
		want           float64
	}{
		{0, 0, 220.0},
		{1, 0, 261.6256},
		{0, 12, 440.0},
		{4, 0, 440.0},
		{0, 35, 220.0 * math.Pow(2, 35.0/12.0)},
		{12, 0, 220.0},
	}
	for _, tt := range tests {
		got := NoteFor(tt.element, tt.facet)
		if math.Abs(got-tt.want) > 1e-3 {
			t.Fatalf("NoteFor(%d,%d): got %.4f want %.4f", tt.element, tt.facet, got, tt.want)
		}
	}
	if NoteFor(0, 0) != 220.0 {
		t.Fatalf("expected exactly 220 Hz at origin, got %v", NoteFor(0, 0))
	}
}

func TestNoteForIsDeterministicAndBounded(t *testing.T) {
	lo, hi := BaseFreq, MaxFreq()
	for e := 0; e < 100; e++ {
		for f := 0; f < 24; f++ {
			a := NoteFor(e, f)
			b := NoteFor(e, f)
			if math.Float64bits(a) != math.Float64bits(b) {
				t.Fatalf("non-deterministic at (%d,%d): %v vs %v", e, f, a, b)
			}
			if a < lo || a > hi {
				t.Fatalf("out of range at (%d,%d): %v", e, f, a)
			}
		}
	}
}

func TestNoteForPeriodicInLadderIndex(t *testing.T) {
	for e := 0; e < 40; e++ {
		for f := 0; f < 3; f++ {
			k := e*FacetStride + f
			// element+12 shifts the ladder index by exactly 36.
			if NoteFor(e, f) != NoteFor(e+12, f) {
				t.Fatalf("period mismatch at k=%d", k)
			}
			if NoteFor(0, k) != NoteFor(0, k+Steps) {
				t.Fatalf("facet period mismatch at k=%d", k)
			}
		}
	}
}
