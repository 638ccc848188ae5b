// Package notemap maps sculpture hits to pitches on a fixed chromatic ladder.
package notemap

import "math"

const (
	// BaseFreq is the lowest pitch on the ladder (A3).
	BaseFreq = 220.0
	// Steps is the ladder length: three octaves of semitones.
	Steps = 36
	// FacetStride spreads consecutive elements three semitones apart.
	FacetStride = 3
)

// Step returns the ladder index for an element and facet.
func Step(element, facet int) int {
	s := (element*FacetStride + facet) % Steps
	if s < 0 {
		s += Steps
	}
	return s
}

// NoteFor returns the frequency in Hz for an element and facet.
func NoteFor(element, facet int) float64 {
	return BaseFreq * math.Pow(2, float64(Step(element, facet))/12.0)
}

// MaxFreq is the highest pitch NoteFor can return.
func MaxFreq() float64 {
	return BaseFreq * math.Pow(2, float64(Steps-1)/12.0)
}
