package synth

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-chime/internal/wavio"
)

// RoomConvolver convolves the mono mix bus with a stereo room impulse
// response. Input is gathered into partSize blocks, so output lags input by
// Latency() frames whatever block sizes the caller uses.
type RoomConvolver struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	inBuf  []float32 // block being gathered
	prevIn []float32 // last full block, the delayed dry signal
	fill   int

	leftOut  []float32
	rightOut []float32
}

// NewRoomConvolver creates a convolver with an identity IR.
func NewRoomConvolver(sampleRate int) *RoomConvolver {
	c := &RoomConvolver{
		sampleRate: sampleRate,
		partSize:   128,
	}
	c.inBuf = make([]float32, c.partSize)
	c.prevIn = make([]float32, c.partSize)
	_ = c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// Latency returns the delay in frames between input and output.
func (c *RoomConvolver) Latency() int {
	return c.partSize
}

// Process convolves mono input with the IR and returns stereo interleaved output.
func (c *RoomConvolver) Process(input []float32) []float32 {
	return c.ProcessMix(input, 0, 1)
}

// ProcessMix returns dry·input + wet·(input * IR) as stereo interleaved
// output, with the dry path delayed to line up with the convolution.
func (c *RoomConvolver) ProcessMix(input []float32, dry, wet float32) []float32 {
	output := make([]float32, len(input)*2)
	for i, x := range input {
		k := c.fill
		d := dry * c.prevIn[k]
		output[i*2] = d + wet*c.leftOut[k]
		output[i*2+1] = d + wet*c.rightOut[k]

		c.inBuf[k] = x
		c.fill++
		if c.fill == c.partSize {
			c.flush()
		}
	}
	return output
}

func (c *RoomConvolver) flush() {
	c.fill = 0
	copy(c.prevIn, c.inBuf)
	errL := c.leftOLA.ProcessBlockTo(c.leftOut, c.inBuf)
	errR := c.rightOLA.ProcessBlockTo(c.rightOut, c.inBuf)
	if errL != nil || errR != nil {
		// Pass through for this block.
		copy(c.leftOut, c.inBuf)
		copy(c.rightOut, c.inBuf)
	}
}

// SetIR configures left/right impulse responses.
func (c *RoomConvolver) SetIR(leftIR []float32, rightIR []float32) error {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, err := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	if err != nil {
		return fmt.Errorf("left ir: %w", err)
	}
	rightOLA, err := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if err != nil {
		return fmt.Errorf("right ir: %w", err)
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR), 1)

	c.leftOut = make([]float32, c.partSize)
	c.rightOut = make([]float32, c.partSize)

	c.Reset()
	return nil
}

// IRLen returns the longer channel's IR length in samples.
func (c *RoomConvolver) IRLen() int {
	return c.irLen
}

// SetIRFromWAV loads a mono/stereo IR from WAV, resampling to the engine rate.
func (c *RoomConvolver) SetIRFromWAV(path string) error {
	left, right, srcRate, err := wavio.ReadStereo(path)
	if err != nil {
		return err
	}
	if left, err = wavio.Resample(left, srcRate, c.sampleRate); err != nil {
		return err
	}
	if right, err = wavio.Resample(right, srcRate, c.sampleRate); err != nil {
		return err
	}
	return c.SetIR(left, right)
}

// Reset clears convolver history and overlap buffers.
func (c *RoomConvolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
	clear(c.inBuf)
	clear(c.prevIn)
	clear(c.leftOut)
	clear(c.rightOut)
	c.fill = 0
}
