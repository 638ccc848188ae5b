package synth

import (
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-chime/dsp"
)

// ContextState is the run state of a host audio output.
type ContextState int

const (
	ContextSuspended ContextState = iota
	ContextRunning
	ContextClosed
)

// Context is the host audio output the engine renders into.
type Context interface {
	State() ContextState
	Resume() error
}

// ContextFactory opens the host audio output for an engine. It is called
// at most once per successful activation, with the engine lock held, so it
// must not call back into the engine synchronously.
type ContextFactory func(e *Engine) (Context, error)

// OfflineContext is an always-running context for pull-based rendering.
type OfflineContext struct{}

func (OfflineContext) State() ContextState { return ContextRunning }
func (OfflineContext) Resume() error       { return nil }

// Engine is the synthesizer: it builds voices on demand, owns the shared
// mix bus, and delivers voice completion events to its VoiceManager.
// All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	sampleRate int
	params     *Params
	manager    *VoiceManager

	volume   float32
	waveform dsp.Waveform

	ctx        Context
	newContext ContextFactory

	clock  int64 // frames rendered
	nextID VoiceID

	room        *RoomConvolver
	roomEnabled bool
	meter       *dsp.Meter
}

// NewEngine creates a synthesizer. The audio context is not opened until
// the first Activate or Trigger.
func NewEngine(sampleRate int, params *Params) *Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	e := &Engine{
		sampleRate: sampleRate,
		params:     params,
		volume:     clamp01(params.Volume),
		waveform:   dsp.Triangle,
		newContext: func(*Engine) (Context, error) { return OfflineContext{}, nil },
		room:       NewRoomConvolver(sampleRate),
		meter:      dsp.NewMeter(sampleRate, 5, 300),
	}
	e.manager = NewVoiceManager(params.MaxPolyphony, e.buildVoice)

	if params.RoomEnabled {
		e.roomEnabled = true
		if params.RoomIRWavPath != "" {
			if err := e.room.SetIRFromWAV(params.RoomIRWavPath); err != nil {
				slog.Warn("room ir not loaded", "path", params.RoomIRWavPath, "err", err)
			}
		}
	}
	return e
}

// buildVoice is the VoiceManager's BuildFunc; called with e.mu held.
func (e *Engine) buildVoice(spec VoiceSpec) *Voice {
	e.nextID++
	return NewVoice(e.sampleRate, e.nextID, spec, e.params, e.clock)
}

// SampleRate returns the render rate in Hz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// SetContextFactory replaces how the audio context is opened.
func (e *Engine) SetContextFactory(f ContextFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.newContext = f
}

// Activate opens the audio context on first use and resumes it if it is
// not running. It is idempotent and never fails the caller: errors are
// logged and retried on the next call. It reports whether audio is running.
func (e *Engine) Activate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activateLocked()
}

func (e *Engine) activateLocked() bool {
	if e.ctx == nil {
		if e.newContext == nil {
			return false
		}
		ctx, err := e.newContext(e)
		if err != nil {
			slog.Warn("audio context unavailable", "err", err)
			return false
		}
		e.ctx = ctx
	}
	if e.ctx.State() != ContextRunning {
		if err := e.ctx.Resume(); err != nil {
			slog.Warn("audio context resume failed", "err", err)
			return false
		}
	}
	return e.ctx.State() == ContextRunning
}

// Active reports whether an audio context has been opened.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx != nil
}

// Trigger starts a note at freq using the current waveform and volume.
// A sustained note replaces the held note; a non-sustained note may steal
// the oldest pooled voice.
func (e *Engine) Trigger(freq float64, sustained bool) (VoiceID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if freq <= 0 {
		return 0, false
	}
	e.activateLocked()
	v := e.manager.Allocate(VoiceSpec{
		Freq:      float32(freq),
		Waveform:  e.waveform,
		Sustained: sustained,
		Volume:    e.volume,
	})
	if v == nil {
		return 0, false
	}
	return v.id, true
}

// StopSustained stops the held note, if any.
func (e *Engine) StopSustained() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.StopSustained()
}

// StopAll stops every voice.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.StopAll()
}

// SetVolume sets the envelope peak for new voices, clamped to [0,1].
func (e *Engine) SetVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = clamp01(v)
}

// Volume returns the envelope peak for new voices.
func (e *Engine) Volume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetWaveform selects the oscillator shape for new voices.
func (e *Engine) SetWaveform(w dsp.Waveform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waveform = w
}

// Waveform returns the oscillator shape for new voices.
func (e *Engine) Waveform() dsp.Waveform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waveform
}

// SetRoomEnabled routes the mix bus through the room convolver.
func (e *Engine) SetRoomEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if on && !e.roomEnabled {
		e.room.Reset()
	}
	e.roomEnabled = on
}

// SetRoomIR sets the stereo room impulse response.
func (e *Engine) SetRoomIR(left, right []float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.SetIR(left, right)
}

// SetRoomIRFromWAV loads the room impulse response from a WAV file.
func (e *Engine) SetRoomIRFromWAV(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.SetIRFromWAV(path)
}

// Stats is a snapshot of the voice allocation state.
type Stats struct {
	Pooled    int
	Sustained bool
	Clock     int64
	Level     float32
}

// Stats returns the current voice allocation state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Pooled:    e.manager.ActiveCount(),
		Sustained: e.manager.Sustained() != nil,
		Clock:     e.clock,
		Level:     e.meter.Level(),
	}
}

// Process renders a block of audio samples (stereo interleaved). Voices
// whose envelope completed during the block are reported to the
// VoiceManager before Process returns.
func (e *Engine) Process(numFrames int) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	monoMix := make([]float32, numFrames)
	var completed []VoiceID
	for _, v := range e.manager.Voices() {
		out := v.Process(numFrames)
		for i := range out {
			monoMix[i] += out[i]
		}
		if v.Ended() {
			completed = append(completed, v.id)
		}
	}
	for _, id := range completed {
		e.manager.Complete(id)
	}

	gain := e.params.MixGain
	for i := range monoMix {
		monoMix[i] *= gain
		e.meter.Process(monoMix[i])
	}

	var stereoOutput []float32
	if e.roomEnabled {
		stereoOutput = e.room.ProcessMix(monoMix, e.params.RoomDryMix, e.params.RoomWetMix)
	} else {
		stereoOutput = make([]float32, numFrames*2)
		for i, x := range monoMix {
			stereoOutput[i*2] = x
			stereoOutput[i*2+1] = x
		}
	}

	e.clock += int64(numFrames)
	return stereoOutput
}
