// Package fitcommon holds the pieces shared by the parameter-fitting tools:
// knob spaces normalized to the unit cube and the Mayfly optimizer setup.
package fitcommon

import "math"

// Knob is one fitted parameter.
type Knob struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Denormalize maps a position in [0,1]^n onto the knob ranges. Missing
// coordinates take the knob minimum; integer knobs are rounded.
func Denormalize(pos []float64, knobs []Knob) []float64 {
	vals := make([]float64, len(knobs))
	for i, k := range knobs {
		x := 0.0
		if i < len(pos) {
			x = Clamp(pos[i], 0, 1)
		}
		v := k.Min + x*(k.Max-k.Min)
		if k.IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return vals
}

// Normalize is the inverse of Denormalize, clamping out-of-range values.
func Normalize(vals []float64, knobs []Knob) []float64 {
	pos := make([]float64, len(knobs))
	for i, k := range knobs {
		if i >= len(vals) || k.Max <= k.Min {
			continue
		}
		pos[i] = Clamp((vals[i]-k.Min)/(k.Max-k.Min), 0, 1)
	}
	return pos
}

// Named pairs knob names with values, for reports.
func Named(vals []float64, knobs []Knob) map[string]float64 {
	out := make(map[string]float64, len(knobs))
	for i, k := range knobs {
		if i < len(vals) {
			out[k.Name] = vals[i]
		}
	}
	return out
}
