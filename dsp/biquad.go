// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// filterShape selects the biquad response computed by rbjCoefs.
type filterShape int

const (
	shapePeak filterShape = iota
	shapeLowShelf
	shapeHighShelf
	shapeLowPass
)

// biquad is one second-order section with coefficient ramping. The
// coefficients glide linearly to their target over a ramp window so a
// live parameter change never steps the transfer function.
//
// Per-channel delay state lives in biquadState, so one coefficient set
// can filter several interleaved channels.
type biquad struct {
	b0, b1, b2, a1, a2 float64

	db0, db1, db2, da1, da2 float64
	ramp                    int
}

// biquadState is the direct-form-I delay memory for one channel.
type biquadState struct {
	x1, x2, y1, y2 float64
}

// set computes target coefficients and begins a ramp over rampFrames.
// rampFrames 0 snaps, for construction and Prepare.
func (f *biquad) set(shape filterShape, freq, gainDB, q float64, sampleRate, rampFrames int) {
	b0, b1, b2, a1, a2 := rbjCoefs(shape, freq, gainDB, q, sampleRate)

	if rampFrames <= 0 {
		f.b0, f.b1, f.b2, f.a1, f.a2 = b0, b1, b2, a1, a2
		f.ramp = 0
		return
	}

	n := float64(rampFrames)
	f.db0 = (b0 - f.b0) / n
	f.db1 = (b1 - f.b1) / n
	f.db2 = (b2 - f.b2) / n
	f.da1 = (a1 - f.a1) / n
	f.da2 = (a2 - f.a2) / n
	f.ramp = rampFrames
}

// step advances the coefficient ramp by one frame. Call once per frame,
// before filtering that frame's channels.
func (f *biquad) step() {
	if f.ramp == 0 {
		return
	}
	f.b0 += f.db0
	f.b1 += f.db1
	f.b2 += f.db2
	f.a1 += f.da1
	f.a2 += f.da2
	f.ramp--
}

// process filters one sample through the section using st's memory.
func (f *biquad) process(st *biquadState, x float64) float64 {
	y := f.b0*x + f.b1*st.x1 + f.b2*st.x2 - f.a1*st.y1 - f.a2*st.y2
	st.x2 = st.x1
	st.x1 = x
	st.y2 = st.y1
	st.y1 = y
	return y
}

// rbjCoefs evaluates the Audio EQ Cookbook formulas, normalized by a0.
// Frequency is clamped below Nyquist and Q away from zero to keep the
// section stable for any caller input.
func rbjCoefs(shape filterShape, freq, gainDB, q float64, sampleRate int) (b0, b1, b2, a1, a2 float64) {
	nyquist := float64(sampleRate) / 2
	if freq > 0.95*nyquist {
		freq = 0.95 * nyquist
	}
	if freq < 10 {
		freq = 10
	}
	if q < 0.05 {
		q = 0.05
	}

	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	sw := math.Sin(w)
	alpha := sw / (2 * q)

	var a0 float64
	switch shape {
	case shapeLowShelf:
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cw + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cw)
		b2 = a * ((a + 1) - (a-1)*cw - sq)
		a0 = (a + 1) + (a-1)*cw + sq
		a1 = -2 * ((a - 1) + (a+1)*cw)
		a2 = (a + 1) + (a-1)*cw - sq
	case shapeHighShelf:
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cw + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cw)
		b2 = a * ((a + 1) + (a-1)*cw - sq)
		a0 = (a + 1) - (a-1)*cw + sq
		a1 = 2 * ((a - 1) - (a+1)*cw)
		a2 = (a + 1) - (a-1)*cw - sq
	case shapeLowPass:
		b0 = (1 - cw) / 2
		b1 = 1 - cw
		b2 = (1 - cw) / 2
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	default: // shapePeak
		b0 = 1 + alpha*a
		b1 = -2 * cw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cw
		a2 = 1 - alpha/a
	}

	return b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0
}
