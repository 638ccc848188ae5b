package dsp

import "github.com/cwbudde/algo-approx"

// Meter is a peak follower with separate attack and release ballistics.
type Meter struct {
	attack  float32
	release float32
	level   float32
}

// NewMeter creates a meter with the given attack/release times in milliseconds.
func NewMeter(sampleRate int, attackMS, releaseMS float32) *Meter {
	return &Meter{
		attack:  timeConstant(sampleRate, attackMS),
		release: timeConstant(sampleRate, releaseMS),
	}
}

func timeConstant(sampleRate int, ms float32) float32 {
	if sampleRate <= 0 || ms <= 0 {
		return 0
	}
	return approx.FastExp(-1.0 / (ms * 0.001 * float32(sampleRate)))
}

// Process feeds one sample and returns the updated level.
func (m *Meter) Process(x float32) float32 {
	if x < 0 {
		x = -x
	}
	coef := m.release
	if x > m.level {
		coef = m.attack
	}
	m.level = x + coef*(m.level-x)
	return m.level
}

// Level returns the current follower level.
func (m *Meter) Level() float32 {
	return m.level
}

// Reset drops the level to zero.
func (m *Meter) Reset() {
	m.level = 0
}
