package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/cwbudde/algo-chime/dsp"
	"github.com/cwbudde/algo-chime/hittest"
	"github.com/cwbudde/algo-chime/preset"
	"github.com/cwbudde/algo-chime/scene"
)

const (
	hudSize   = 96
	hudMargin = 24

	explodeButton = ebiten.MouseButton3
	volumeStep    = 0.05
)

var waveforms = []dsp.Waveform{dsp.Triangle, dsp.Sine, dsp.Square, dsp.Sawtooth}

type game struct {
	session *scene.Session

	width, height int
	cursorX       int
	cursorY       int
	inside        bool

	drawOrder []int
}

func newGame(s *scene.Session) *game {
	return &game{session: s, cursorX: -1, cursorY: -1}
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.session.Engine().StopAll()
		return ebiten.Termination
	}

	g.updatePointer()
	g.updateKeys()

	g.session.Tick(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *game) updatePointer() {
	s := g.session
	x, y := ebiten.CursorPosition()
	inside := x >= 0 && y >= 0 && x < g.width && y < g.height
	if !inside {
		if g.inside {
			s.PointerLeave()
		}
		g.inside = false
		return
	}
	g.inside = true

	fx, fy := float32(x), float32(y)
	if x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		if n, ok := s.PointerMove(fx, fy); ok {
			slog.Debug("note", "element", n.Element, "facet", n.Facet, "freq", n.Freq)
		}
	}

	for b := ebiten.MouseButton0; b <= ebiten.MouseButtonMax; b++ {
		if !inpututil.IsMouseButtonJustPressed(b) {
			continue
		}
		if n, ok := s.PointerDown(fx, fy, int(b)); ok {
			slog.Debug("held note", "element", n.Element, "facet", n.Facet, "freq", n.Freq)
		}
		if b == explodeButton {
			s.ToggleExplode()
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		if dy > 0 {
			s.Zoom(0.9)
		} else {
			s.Zoom(1 / 0.9)
		}
	}
}

func (g *game) updateKeys() {
	s := g.session
	st := s.State()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.CloseOverlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		s.SetSoundEnabled(!st.SoundEnabled)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		s.SetSpinEnabled(!st.SpinEnabled)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		s.ToggleExplode()
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		s.SetWaveform(nextWaveform(st.Waveform))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		s.SetVolume(st.Volume + volumeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		s.SetVolume(st.Volume - volumeStep)
	}

	const orbitStep = 0.02
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		s.Orbit(-orbitStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		s.Orbit(orbitStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyPageUp) {
		s.Orbit(0, orbitStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyPageDown) {
		s.Orbit(0, -orbitStep)
	}
}

func nextWaveform(w dsp.Waveform) dsp.Waveform {
	for i, v := range waveforms {
		if v == w {
			return waveforms[(i+1)%len(waveforms)]
		}
	}
	return waveforms[0]
}

func (g *game) Draw(screen *ebiten.Image) {
	s := g.session
	screen.Fill(color.RGBA{0x0b, 0x0d, 0x14, 0xff})

	frame := s.Frame()
	colors := s.Colors()
	cam := s.Camera()

	// Painter's order: farthest first.
	if len(g.drawOrder) != len(frame.Transforms) {
		g.drawOrder = make([]int, len(frame.Transforms))
		for i := range g.drawOrder {
			g.drawOrder[i] = i
		}
	}
	rot := frame.Group.Quat()
	depth := make([]float32, len(frame.Transforms))
	for i, tr := range frame.Transforms {
		depth[i] = tr.Position.MulQuat(rot).Sub(cam.Position).LengthSquared()
	}
	sort.Slice(g.drawOrder, func(a, b int) bool { return depth[g.drawOrder[a]] > depth[g.drawOrder[b]] })

	for _, i := range g.drawOrder {
		x, y, ok := s.ScreenPosition(i)
		if !ok {
			continue
		}
		c := colors[i]
		clr := color.RGBA{uint8(c[0] * 255), uint8(c[1] * 255), uint8(c[2] * 255), 0xff}
		vector.DrawFilledCircle(screen, x, y, 7, clr, true)
	}
	s.MarkRendered()

	g.drawHUD(screen)
	g.drawStatus(screen)
}

func (g *game) drawHUD(screen *ebiten.Image) {
	look := g.session.HUD()
	cx := float32(g.width - hudMargin - hudSize/2)
	cy := float32(g.height - hudMargin - hudSize/2)
	alpha := uint8(look.Opacity * 255)

	glow := uint8(min(look.Glow*16, 255))
	vector.DrawFilledCircle(screen, cx, cy, hudSize/2*0.9, color.RGBA{glow / 4, glow / 3, glow / 2, alpha / 3}, true)
	vector.StrokeCircle(screen, cx, cy, hudSize/2*0.8, 2, color.RGBA{0xa0, 0xc8, 0xff, alpha}, true)
	vector.DrawFilledCircle(screen, cx, cy, 6*look.CoreScale, color.RGBA{0xff, 0xf0, 0xc0, alpha}, true)

	if !look.Open {
		return
	}
	st := g.session.State()
	vector.DrawFilledRect(screen, 24, 24, 320, 140, color.RGBA{0, 0, 0, 200}, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"Settings\n\nsound   %v  [M]\nspin    %v  [Space]\nwave    %s  [W]\nvolume  %.2f  [Up/Down]\n\n[Esc] close",
		st.SoundEnabled, st.SpinEnabled, st.Waveform, st.Volume), 36, 36)
}

func (g *game) drawStatus(screen *ebiten.Image) {
	st := g.session.State()
	es := g.session.Engine().Stats()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  voices %d  held %v  level %.3f  TPS %.0f",
		st.Mode, es.Pooled, es.Sustained, es.Level, ebiten.ActualTPS()), 8, g.height-20)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.session.SetViewport(hittest.Viewport{Width: float32(g.width), Height: float32(g.height)})
		g.session.SetHUDViewport(hittest.Viewport{
			X:      float32(g.width - hudMargin - hudSize),
			Y:      float32(g.height - hudMargin - hudSize),
			Width:  hudSize,
			Height: hudSize,
		})
	}
	return g.width, g.height
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	irPath := flag.String("ir", "", "Room IR WAV path (enables the room)")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	verbose := flag.Bool("v", false, "Log every note")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := scene.DefaultConfig()
	if *presetPath != "" {
		var err error
		cfg, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}

	s := scene.NewSession(cfg)
	eng := s.Engine()
	// The device opens on the first press, not at startup.
	eng.SetContextFactory(newOtoFactory())
	if *irPath != "" {
		if err := eng.SetRoomIRFromWAV(*irPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading IR %q: %v\n", *irPath, err)
			os.Exit(1)
		}
		eng.SetRoomEnabled(true)
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("chime")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(newGame(s)); err != nil {
		fmt.Fprintf(os.Stderr, "chime: %v\n", err)
		os.Exit(1)
	}
}
