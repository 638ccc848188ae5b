package analysis

import "math"

// Envelope analysis framing for EnvelopeDistance.
const (
	EnvelopeFrame = 1024
	EnvelopeHop   = 512
	EnvelopeFloor = -80.0 // dB relative to the reference peak
)

// EnvelopeDB returns the RMS envelope of x in dB relative to ref, floored at
// EnvelopeFloor.
func EnvelopeDB(x []float64, ref float64) []float64 {
	env := rmsEnvelope(x, EnvelopeFrame, EnvelopeHop)
	refDB := linToDB(ref)
	for i, v := range env {
		env[i] = max(linToDB(v)-refDB, EnvelopeFloor)
	}
	return env
}

// EnvelopeDistance is the mean absolute difference in dB between the RMS
// envelopes of ref and cand, both measured against ref's envelope peak. The
// shorter envelope is padded with the floor, so a tail that rings too long
// or dies too early both cost.
func EnvelopeDistance(ref, cand []float64) float64 {
	refEnv := rmsEnvelope(ref, EnvelopeFrame, EnvelopeHop)
	peak := 0.0
	for _, v := range refEnv {
		peak = max(peak, v)
	}
	if peak <= SilenceThreshold {
		return math.NaN()
	}
	a := EnvelopeDB(ref, peak)
	b := EnvelopeDB(cand, peak)
	n := max(len(a), len(b))
	if n == 0 {
		return math.NaN()
	}
	at := func(e []float64, i int) float64 {
		if i < len(e) {
			return e[i]
		}
		return EnvelopeFloor
	}
	var sum float64
	for i := range n {
		sum += math.Abs(at(a, i) - at(b, i))
	}
	return sum / float64(n)
}
