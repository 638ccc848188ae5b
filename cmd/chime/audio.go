package main

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-chime/synth"
)

// otoOutput plays an engine through the system audio device.
type otoOutput struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// newOtoFactory returns a ContextFactory that opens the device on first
// use. oto allows one context per process, so the factory must only be
// installed on one engine.
func newOtoFactory() synth.ContextFactory {
	return func(e *synth.Engine) (synth.Context, error) {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   e.SampleRate(),
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			return nil, err
		}
		<-ready
		// Play starts pulling from the reader on oto's goroutine, which
		// waits on the engine lock until the caller releases it.
		return &otoOutput{
			ctx:    ctx,
			player: ctx.NewPlayer(&engineReader{engine: e}),
		}, nil
	}
}

func (o *otoOutput) State() synth.ContextState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return synth.ContextRunning
	}
	return synth.ContextSuspended
}

func (o *otoOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}
	if err := o.ctx.Resume(); err != nil {
		return err
	}
	o.player.Play()
	o.started = true
	return nil
}

// engineReader renders stereo float32 little-endian frames on demand.
type engineReader struct {
	engine *synth.Engine
}

func (r *engineReader) Read(p []byte) (int, error) {
	const frameBytes = 8
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	block := r.engine.Process(frames)
	for i, v := range block {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * frameBytes, nil
}
