//go:build js && wasm

package main

import (
	"os"
	"syscall/js"
	"time"
	"unsafe"

	"github.com/cwbudde/algo-chime/dsp"
	"github.com/cwbudde/algo-chime/hittest"
	"github.com/cwbudde/algo-chime/scene"
)

const maxBlock = 128

var (
	session      *scene.Session
	outputBuffer []float32
	xformBuffer  []float32 // per element: px py pz rx ry rz
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetViewport", js.FuncOf(wasmSetViewport))
	js.Global().Set("wasmSetHUDViewport", js.FuncOf(wasmSetHUDViewport))
	js.Global().Set("wasmPointerMove", js.FuncOf(wasmPointerMove))
	js.Global().Set("wasmPointerDown", js.FuncOf(wasmPointerDown))
	js.Global().Set("wasmPointerLeave", js.FuncOf(wasmPointerLeave))
	js.Global().Set("wasmToggleExplode", js.FuncOf(wasmToggleExplode))
	js.Global().Set("wasmCloseOverlay", js.FuncOf(wasmCloseOverlay))
	js.Global().Set("wasmSetSound", js.FuncOf(wasmSetSound))
	js.Global().Set("wasmSetSpin", js.FuncOf(wasmSetSpin))
	js.Global().Set("wasmSetVolume", js.FuncOf(wasmSetVolume))
	js.Global().Set("wasmSetWaveform", js.FuncOf(wasmSetWaveform))
	js.Global().Set("wasmLoadIR", js.FuncOf(wasmLoadIR))
	js.Global().Set("wasmTick", js.FuncOf(wasmTick))
	js.Global().Set("wasmTransforms", js.FuncOf(wasmTransforms))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM chime module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	cfg := scene.DefaultConfig()
	cfg.SampleRate = args[0].Int()
	if len(args) > 1 {
		cfg.Seed = int64(args[1].Int())
	}
	session = scene.NewSession(cfg)

	outputBuffer = make([]float32, maxBlock*2)
	xformBuffer = make([]float32, session.Len()*6)

	println("Chime initialized at", cfg.SampleRate, "Hz with", session.Len(), "elements")
	return session.Len()
}

func viewportArg(args []js.Value) (hittest.Viewport, bool) {
	if len(args) < 4 {
		return hittest.Viewport{}, false
	}
	return hittest.Viewport{
		X:      float32(args[0].Float()),
		Y:      float32(args[1].Float()),
		Width:  float32(args[2].Float()),
		Height: float32(args[3].Float()),
	}, true
}

func wasmSetViewport(this js.Value, args []js.Value) interface{} {
	if vp, ok := viewportArg(args); ok && session != nil {
		session.SetViewport(vp)
	}
	return nil
}

func wasmSetHUDViewport(this js.Value, args []js.Value) interface{} {
	if vp, ok := viewportArg(args); ok && session != nil {
		session.SetHUDViewport(vp)
	}
	return nil
}

func wasmPointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || session == nil {
		return nil
	}
	n, ok := session.PointerMove(float32(args[0].Float()), float32(args[1].Float()))
	if !ok {
		return nil
	}
	return n.Freq
}

func wasmPointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 || session == nil {
		return nil
	}
	n, ok := session.PointerDown(float32(args[0].Float()), float32(args[1].Float()), args[2].Int())
	if !ok {
		return nil
	}
	return n.Freq
}

func wasmPointerLeave(this js.Value, args []js.Value) interface{} {
	if session != nil {
		session.PointerLeave()
	}
	return nil
}

func wasmToggleExplode(this js.Value, args []js.Value) interface{} {
	if session == nil {
		return nil
	}
	return session.ToggleExplode().String()
}

func wasmCloseOverlay(this js.Value, args []js.Value) interface{} {
	if session != nil {
		session.CloseOverlay()
	}
	return nil
}

func wasmSetSound(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return nil
	}
	session.SetSoundEnabled(args[0].Bool())
	return nil
}

func wasmSetSpin(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return nil
	}
	session.SetSpinEnabled(args[0].Bool())
	return nil
}

func wasmSetVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return nil
	}
	session.SetVolume(float32(args[0].Float()))
	return nil
}

func wasmSetWaveform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return nil
	}
	w, err := dsp.ParseWaveform(args[0].String())
	if err != nil {
		println("Waveform rejected:", err.Error())
		return false
	}
	session.SetWaveform(w)
	return true
}

func wasmLoadIR(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return nil
	}

	arrayBuffer := args[0]
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		println("IR data is empty")
		return nil
	}

	irData := make([]byte, length)
	js.CopyBytesToGo(irData, js.Global().Get("Uint8Array").New(arrayBuffer))

	tmpFile := "/tmp/ir.wav"
	if err := os.WriteFile(tmpFile, irData, 0644); err != nil {
		println("Failed to write IR file:", err.Error())
		return nil
	}
	eng := session.Engine()
	if err := eng.SetRoomIRFromWAV(tmpFile); err != nil {
		println("Failed to load IR:", err.Error())
		return nil
	}
	eng.SetRoomEnabled(true)

	println("IR loaded successfully:", length, "bytes")
	return true
}

// wasmTick advances one frame of dtMs milliseconds and reports whether the
// transforms need re-uploading.
func wasmTick(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return false
	}
	session.Tick(time.Duration(args[0].Float() * float64(time.Millisecond)))
	return session.Frame().NeedsUpdate
}

func wasmTransforms(this js.Value, args []js.Value) interface{} {
	if session == nil {
		return 0
	}
	frame := session.Frame()
	for i, tr := range frame.Transforms {
		b := xformBuffer[i*6 : i*6+6]
		b[0], b[1], b[2] = tr.Position.X, tr.Position.Y, tr.Position.Z
		b[3], b[4], b[5] = tr.Rotation.X, tr.Rotation.Y, tr.Rotation.Z
	}
	session.MarkRendered()

	ptr := &xformBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || session == nil {
		return 0
	}

	numFrames := min(args[0].Int(), maxBlock)
	output := session.Engine().Process(numFrames)
	copy(outputBuffer, output)

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
