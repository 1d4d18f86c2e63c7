// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"
)

// MaxImpulse bounds the convolver's impulse response length. Direct-form
// convolution is quadratic in practice; this stage is meant for short
// responses (tone shaping, small rooms), not multi-second reverbs.
const MaxImpulse = 1024

// Convolver convolves each channel against a shared impulse response.
//
// Replacing the response ramps the taps linearly from the old values to
// the new over the smoothing window. Convolution is linear, so this is
// exactly a crossfade of the two responses' outputs, at the cost of one
// convolution instead of two; a live swap cannot click.
type Convolver struct {
	channels   int
	rampFrames int

	enabled atomic.Bool
	pending atomic.Pointer[ConvolverParams]

	kernel []float32 // working taps, ramping toward target
	target []float32
	delta  []float32
	ramp   int
	wet    smoother

	hist [][]float32 // per-channel input ring, len MaxImpulse
	pos  int
}

// NewConvolver creates a convolver with a unit impulse (identity).
func NewConvolver(channels int) *Convolver {
	c := &Convolver{
		channels: channels,
		kernel:   make([]float32, 1, MaxImpulse),
		target:   make([]float32, 1, MaxImpulse),
		delta:    make([]float32, 0, MaxImpulse),
		hist:     make([][]float32, channels),
	}
	c.kernel[0] = 1
	c.target[0] = 1
	for ch := range c.hist {
		c.hist[ch] = make([]float32, MaxImpulse)
	}
	c.wet.snap(1)
	c.enabled.Store(true)
	c.Prepare(0, 44100)
	return c
}

func (c *Convolver) ID() string { return "convolver" }

func (c *Convolver) Prepare(maxBlock, sampleRate int) {
	c.rampFrames = sampleRate / 100
}

func (c *Convolver) SetEnabled(enabled bool) { c.enabled.Store(enabled) }
func (c *Convolver) Enabled() bool           { return c.enabled.Load() }

// Update stages a new impulse response. An empty impulse restores the
// identity response.
func (c *Convolver) Update(p Params) error {
	q, ok := p.(ConvolverParams)
	if !ok {
		return fmt.Errorf("%w: convolver cannot apply %T", ErrParamType, p)
	}
	if len(q.Impulse) > MaxImpulse {
		return fmt.Errorf("%w: %d taps, capacity %d", ErrImpulseTooLong, len(q.Impulse), MaxImpulse)
	}
	q.WetDry = math.Max(0, math.Min(q.WetDry, 1))
	c.pending.Store(&q)
	return nil
}

func (c *Convolver) Process(buf []float32) {
	if p := c.pending.Swap(nil); p != nil {
		c.apply(p)
	}
	if !c.enabled.Load() {
		return
	}

	ch := c.channels
	for f := 0; f+ch <= len(buf); f += ch {
		wet := c.wet.next()
		c.stepKernel()

		for i := range ch {
			x := buf[f+i]
			ring := c.hist[i]
			ring[c.pos] = x

			y := convolve(ring, c.pos, c.kernel)
			buf[f+i] = float32(wet*y + (1-wet)*float64(x))
		}
		c.pos++
		if c.pos == MaxImpulse {
			c.pos = 0
		}
	}
}

// stepKernel advances the tap ramp by one frame, landing exactly on the
// target at the end.
func (c *Convolver) stepKernel() {
	if c.ramp == 0 {
		return
	}
	for i := range c.kernel {
		c.kernel[i] += c.delta[i]
	}
	c.ramp--
	if c.ramp == 0 {
		c.kernel = c.kernel[:len(c.target)]
		copy(c.kernel, c.target)
	}
}

// convolve runs the response against the ring ending at pos.
func convolve(ring []float32, pos int, kernel []float32) float64 {
	acc := 0.0
	i := pos
	for _, k := range kernel {
		acc += float64(k) * float64(ring[i])
		i--
		if i < 0 {
			i = len(ring) - 1
		}
	}
	return acc
}

// apply re-targets the tap ramp at the staged response. Audio side.
func (c *Convolver) apply(p *ConvolverParams) {
	c.target = c.target[:1]
	c.target[0] = 1
	if len(p.Impulse) > 0 {
		c.target = c.target[:len(p.Impulse)]
		copy(c.target, p.Impulse)
	}

	// Work at the longer of the two lengths; missing taps are zero.
	n := len(c.kernel)
	if len(c.target) > n {
		n = len(c.target)
	}
	for len(c.kernel) < n {
		c.kernel = append(c.kernel, 0)
	}

	if c.rampFrames <= 0 {
		c.kernel = c.kernel[:len(c.target)]
		copy(c.kernel, c.target)
		c.ramp = 0
	} else {
		c.delta = c.delta[:n]
		for i := range c.delta {
			var want float32
			if i < len(c.target) {
				want = c.target[i]
			}
			c.delta[i] = (want - c.kernel[i]) / float32(c.rampFrames)
		}
		c.ramp = c.rampFrames
	}

	c.wet.ramp(p.WetDry, c.rampFrames)
}

func (c *Convolver) Reset() {
	for ch := range c.hist {
		for i := range c.hist[ch] {
			c.hist[ch][i] = 0
		}
	}
	c.pos = 0
}
