package synth

// MaxPolyphony caps simultaneous non-sustained voices.
const MaxPolyphony = 3

// Params holds synthesizer parameters.
type Params struct {
	Volume       float32 // Envelope peak for non-sustained voices, [0,1]
	SustainBoost float32 // Peak multiplier for sustained voices
	MixGain      float32 // Shared mix-bus headroom scalar

	FilterCutoff float32 // Lowpass cutoff in Hz
	FilterQ      float32

	VibratoRate  float32 // LFO frequency in Hz
	VibratoDepth float32 // LFO depth in Hz, added to the oscillator frequency

	AttackS  float32
	ReleaseS float32
	TailS    float32 // Silence after the release before the oscillators stop

	MaxPolyphony int

	// Optional room reverb on the mix bus.
	RoomEnabled   bool
	RoomIRWavPath string
	RoomDryMix    float32
	RoomWetMix    float32
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Volume:       0.7,
		SustainBoost: 1.1,
		MixGain:      0.3,
		FilterCutoff: 1000,
		FilterQ:      1.2,
		VibratoRate:  5.2,
		VibratoDepth: 1.2,
		AttackS:      0.14,
		ReleaseS:     0.24,
		TailS:        0.01,
		MaxPolyphony: MaxPolyphony,
		RoomEnabled:  false,
		RoomDryMix:   1.0,
		RoomWetMix:   0.25,
	}
}
