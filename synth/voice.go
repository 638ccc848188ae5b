package synth

import "github.com/cwbudde/algo-chime/dsp"

// VoiceID identifies a voice for completion events.
type VoiceID uint64

// VoiceSpec describes the voice to build.
type VoiceSpec struct {
	Freq      float32
	Waveform  dsp.Waveform
	Sustained bool
	Volume    float32
}

// Voice is one note: oscillator with vibrato, lowpass filter and a
// fixed attack/release gain envelope.
type Voice struct {
	id         VoiceID
	sampleRate int
	freq       float32
	sustained  bool
	created    int64 // engine clock at note on, in frames

	osc          *dsp.Oscillator
	lfo          *dsp.Oscillator
	vibratoRate  float32
	vibratoDepth float32
	filter       *dsp.Biquad

	peak          float32
	attackSamples int
	releaseEnd    int // gain reaches zero
	stopAt        int // oscillators stop

	age     int
	ended   bool
	stopped bool
}

// NewVoice builds a voice's signal chain.
func NewVoice(sampleRate int, id VoiceID, spec VoiceSpec, params *Params, now int64) *Voice {
	if params == nil {
		params = NewDefaultParams()
	}
	peak := clamp01(spec.Volume)
	if spec.Sustained {
		peak *= params.SustainBoost
	}
	attack := secondsToSamples(sampleRate, params.AttackS)
	releaseEnd := attack + secondsToSamples(sampleRate, params.ReleaseS)
	stopAt := releaseEnd + secondsToSamples(sampleRate, params.TailS)

	return &Voice{
		id:            id,
		sampleRate:    sampleRate,
		freq:          spec.Freq,
		sustained:     spec.Sustained,
		created:       now,
		osc:           dsp.NewOscillator(sampleRate, spec.Waveform),
		lfo:           dsp.NewOscillator(sampleRate, dsp.Sine),
		vibratoRate:   params.VibratoRate,
		vibratoDepth:  params.VibratoDepth,
		filter:        dsp.NewLowpass(params.FilterCutoff, float32(sampleRate), params.FilterQ),
		peak:          peak,
		attackSamples: attack,
		releaseEnd:    releaseEnd,
		stopAt:        stopAt,
	}
}

// ID returns the voice identifier.
func (v *Voice) ID() VoiceID { return v.id }

// Frequency returns the base oscillator frequency.
func (v *Voice) Frequency() float32 { return v.freq }

// Sustained reports whether the voice occupies the sustain slot.
func (v *Voice) Sustained() bool { return v.sustained }

// Created returns the engine clock at note on.
func (v *Voice) Created() int64 { return v.created }

// Peak returns the envelope target level.
func (v *Voice) Peak() float32 { return v.peak }

// Active reports whether the voice still produces sound.
func (v *Voice) Active() bool { return !v.stopped && !v.ended }

// Ended reports whether the envelope ran to completion.
func (v *Voice) Ended() bool { return v.ended }

// Stopped reports whether the voice's nodes have been released.
func (v *Voice) Stopped() bool { return v.stopped }

// Lifetime returns the scheduled voice length in frames.
func (v *Voice) Lifetime() int { return v.stopAt }

// Gain returns the envelope value age frames after note on.
func (v *Voice) Gain(age int) float32 {
	switch {
	case age < 0:
		return 0
	case age < v.attackSamples:
		return v.peak * float32(age) / float32(v.attackSamples)
	case age < v.releaseEnd:
		span := v.releaseEnd - v.attackSamples
		return v.peak * (1.0 - float32(age-v.attackSamples)/float32(span))
	}
	return 0
}

// Stop tears the voice down immediately. It reports whether this call
// performed the teardown; stopping twice is a no-op.
func (v *Voice) Stop() bool {
	if v.stopped {
		return false
	}
	v.stopped = true
	v.disconnect()
	return true
}

func (v *Voice) disconnect() {
	v.osc = nil
	v.lfo = nil
	v.filter = nil
}

// Process renders one block of mono samples from this voice. Once the
// scheduled stop is reached the voice marks itself ended and renders silence.
func (v *Voice) Process(numFrames int) []float32 {
	output := make([]float32, numFrames)
	if !v.Active() {
		return output
	}

	for i := 0; i < numFrames; i++ {
		if v.age >= v.stopAt {
			v.ended = true
			break
		}
		f := v.freq + v.vibratoDepth*v.lfo.Next(v.vibratoRate)
		x := v.filter.Process(v.osc.Next(f))
		output[i] = x * v.Gain(v.age)
		v.age++
	}
	if v.age >= v.stopAt {
		v.ended = true
	}
	return output
}
