package synth

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func secondsToSamples(sampleRate int, s float32) int {
	n := int(s*float32(sampleRate) + 0.5)
	if n < 0 {
		return 0
	}
	return n
}
