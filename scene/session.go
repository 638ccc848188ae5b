// Package scene wires pointer input, the hit tester, the synthesizer and the
// physics driver into one interactive session, and exposes the per-frame
// transforms a renderer draws.
package scene

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"cogentcore.org/core/math32"

	"github.com/cwbudde/algo-chime/dsp"
	"github.com/cwbudde/algo-chime/geom"
	"github.com/cwbudde/algo-chime/hittest"
	"github.com/cwbudde/algo-chime/notemap"
	"github.com/cwbudde/algo-chime/physics"
	"github.com/cwbudde/algo-chime/synth"
)

// PrimaryButton is the only button that plays a held note.
const PrimaryButton = 0

var groupSpin = geom.Euler{X: 0.003, Y: 0.008}

// Config configures a session.
type Config struct {
	SampleRate   int
	Seed         int64
	Aspect       float32
	SoundEnabled bool
	SpinEnabled  bool
	Volume       float32
	Waveform     dsp.Waveform
	Synth        *synth.Params
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	p := synth.NewDefaultParams()
	return Config{
		SampleRate:   48000,
		Seed:         1,
		Aspect:       16.0 / 9,
		SoundEnabled: true,
		SpinEnabled:  true,
		Volume:       p.Volume,
		Waveform:     dsp.Triangle,
		Synth:        p,
	}
}

// State is the user-facing session state. Components read it through the
// session; nothing else holds a copy.
type State struct {
	SoundEnabled bool
	SpinEnabled  bool
	Volume       float32
	Waveform     dsp.Waveform
	Activated    bool // a pointer-down has opened audio
	Mode         physics.Mode
}

// Note is a note the session started.
type Note struct {
	Element   int
	Facet     int
	Freq      float64
	Sustained bool
	Voice     synth.VoiceID
}

// Frame is what a renderer needs for one frame.
type Frame struct {
	Group       geom.Euler
	Transforms  []geom.Transform
	NeedsUpdate bool
}

// Session is one interactive run of the sculpture. All methods are safe for
// concurrent use; a host typically calls input and Tick from its UI loop
// while the audio device pulls from Engine.
type Session struct {
	mu sync.Mutex

	state State

	engine   *synth.Engine
	driver   *physics.Driver
	camera   *hittest.Camera
	viewport hittest.Viewport
	target   *hittest.Instanced
	tracker  hittest.Tracker
	hud      *HUD
	inHUD    bool

	group       geom.Euler
	transforms  []geom.Transform
	needsUpdate bool
	colors      [][3]float32
}

// NewSession builds the sculpture and a synthesizer for cfg.
func NewSession(cfg Config) *Session {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Synth == nil {
		cfg.Synth = synth.NewDefaultParams()
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = 1
	}

	rest := geom.SculptureVertices()
	driver := physics.NewDriver(rest, rand.New(rand.NewSource(cfg.Seed)))
	driver.SetSpinEnabled(cfg.SpinEnabled)

	engine := synth.NewEngine(cfg.SampleRate, cfg.Synth)
	engine.SetVolume(cfg.Volume)
	engine.SetWaveform(cfg.Waveform)

	s := &Session{
		state: State{
			SoundEnabled: cfg.SoundEnabled,
			SpinEnabled:  cfg.SpinEnabled,
			Volume:       engine.Volume(),
			Waveform:     cfg.Waveform,
		},
		engine: engine,
		driver: driver,
		camera: hittest.NewSceneCamera(cfg.Aspect),
		hud:    NewHUD(),
		colors: geom.InstanceColors(len(rest)),
	}
	s.transforms = driver.Transforms(nil)
	s.needsUpdate = true
	s.target = hittest.NewInstanced(geom.Box(0.5, 0.5, 0.5), s.transforms)
	return s
}

// Engine returns the session's synthesizer for the audio host to pull from.
func (s *Session) Engine() *synth.Engine { return s.engine }

// Len returns the element count.
func (s *Session) Len() int { return s.driver.Len() }

// Colors returns the per-element RGB palette.
func (s *Session) Colors() [][3]float32 { return s.colors }

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Mode = s.driver.Mode()
	return st
}

// SetViewport sets the client rectangle of the sculpture view and updates
// the camera aspect.
func (s *Session) SetViewport(vp hittest.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
	if vp.Height > 0 {
		s.camera.Aspect = vp.Width / vp.Height
	}
}

// SetHUDViewport sets the client rectangle of the HUD button.
func (s *Session) SetHUDViewport(vp hittest.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hud.SetViewport(vp)
}

// Camera returns a copy of the sculpture camera.
func (s *Session) Camera() hittest.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.camera
}

// Orbit swings the sculpture camera around the origin.
func (s *Session) Orbit(azimuth, elevation float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Orbit(azimuth, elevation)
}

// Zoom scales the camera distance, kept within [4, 30].
func (s *Session) Zoom(factor float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Zoom(factor, 4, 30)
}

func (s *Session) pick(x, y float32) (hittest.Hit, bool) {
	return hittest.TestHit(s.viewport.NDC(x, y), s.camera, s.target)
}

// PointerMove handles a pointer move in client coordinates. Moving onto a
// new (element, facet) pair plays a short note; staying on one does not.
func (s *Session) PointerMove(x, y float32) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hud.Contains(x, y) {
		if !s.inHUD {
			s.inHUD = true
			s.tracker.Leave()
		}
		s.hud.PointerMove(x, y)
		return Note{}, false
	}
	if s.inHUD {
		s.inHUD = false
		s.hud.PointerLeave()
	}

	if !s.state.SoundEnabled {
		return Note{}, false
	}
	hit, ok := s.pick(x, y)
	if !s.tracker.Move(hit, ok) {
		return Note{}, false
	}
	return s.play(hit, false)
}

// PointerDown handles a button press. Any press on the sculpture view opens
// audio; a primary press on an element plays a held note.
func (s *Session) PointerDown(x, y float32, button int) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hud.Contains(x, y) {
		if s.hud.PointerDown(x, y) {
			slog.Debug("settings overlay opened")
		}
		return Note{}, false
	}

	if !s.state.Activated {
		s.state.Activated = true
		if !s.engine.Activate() {
			slog.Debug("audio not running after activation")
		}
	}
	if !s.state.SoundEnabled || button != PrimaryButton {
		return Note{}, false
	}
	hit, ok := s.pick(x, y)
	if !ok {
		return Note{}, false
	}
	return s.play(hit, true)
}

// PointerLeave handles the pointer leaving the sculpture view. The next
// hit always plays.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Leave()
}

func (s *Session) play(hit hittest.Hit, sustained bool) (Note, bool) {
	freq := notemap.NoteFor(hit.Instance, hit.Facet)
	id, ok := s.engine.Trigger(freq, sustained)
	if !ok {
		return Note{}, false
	}
	return Note{
		Element:   hit.Instance,
		Facet:     hit.Facet,
		Freq:      freq,
		Sustained: sustained,
		Voice:     id,
	}, true
}

// ToggleExplode flips between the resting sphere and the exploded scatter.
func (s *Session) ToggleExplode() physics.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.driver.Toggle()
	slog.Debug("explode toggled", "mode", m)
	return m
}

// CloseOverlay hides the settings overlay opened from the HUD button.
func (s *Session) CloseOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hud.Close()
}

// HUD returns the HUD button's appearance.
func (s *Session) HUD() HUDLook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hud.Look()
}

// SetVolume sets the note volume, clamped to [0,1].
func (s *Session) SetVolume(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetVolume(v)
	s.state.Volume = s.engine.Volume()
}

// SetWaveform selects the oscillator shape for new notes.
func (s *Session) SetWaveform(w dsp.Waveform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetWaveform(w)
	s.state.Waveform = w
}

// SetSoundEnabled turns note playback on or off. Turning it off stops the
// held note; short notes finish their envelopes.
func (s *Session) SetSoundEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SoundEnabled = on
	if !on {
		s.engine.StopSustained()
	}
}

// SetSpinEnabled freezes or resumes element motion.
func (s *Session) SetSpinEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SpinEnabled = on
	s.driver.SetSpinEnabled(on)
}

// Tick advances one frame of dt: the whole sculpture turns, the elements
// spin and move, and the HUD button animates. It reports whether the
// element transforms changed.
func (s *Session) Tick(dt time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.group = s.group.Add(groupSpin)
	s.target.Group = s.group
	s.hud.Tick(dt)

	if !s.driver.Tick() {
		return false
	}
	s.transforms = s.driver.Transforms(s.transforms)
	s.target.Instances = s.transforms
	s.needsUpdate = true
	return true
}

// Frame returns a copy of the current render state.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geom.Transform, len(s.transforms))
	copy(out, s.transforms)
	return Frame{Group: s.group, Transforms: out, NeedsUpdate: s.needsUpdate}
}

// MarkRendered clears NeedsUpdate once the host has uploaded the transforms.
func (s *Session) MarkRendered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsUpdate = false
}

// ScreenPosition returns the client coordinates of element i's center, or
// false when it is behind the camera or the viewport is empty.
func (s *Session) ScreenPosition(i int) (x, y float32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.transforms) || s.viewport.Width <= 0 || s.viewport.Height <= 0 {
		return 0, 0, false
	}
	world := s.group.Apply(s.transforms[i].Position)
	ndc, ok := s.camera.Project(world)
	if !ok {
		return 0, 0, false
	}
	x = s.viewport.X + (ndc.X+1)/2*s.viewport.Width
	y = s.viewport.Y + (1-ndc.Y)/2*s.viewport.Height
	return x, y, true
}

// Nearest returns the element closest to the camera.
func (s *Session) Nearest() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.group.Quat()
	best, bestD := -1, math32.Infinity
	for i, tr := range s.transforms {
		if d := tr.Position.MulQuat(q).Sub(s.camera.Position).LengthSquared(); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
