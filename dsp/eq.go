// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"
)

// MaxBands is the fixed band count of the equalizer. Unused slots run as
// unity peaking sections so the per-block cost never varies.
const MaxBands = 10

// defaultBands is the ISO octave ladder the equalizer starts from, flat.
var defaultBands = [MaxBands]float64{31.25, 62.5, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// Equalizer is a ten-band parametric equalizer built from RBJ biquads.
// Band updates ramp coefficients over the smoothing window instead of
// snapping, and filter state survives parameter changes.
type Equalizer struct {
	channels   int
	rate       int
	rampFrames int

	enabled  atomic.Bool
	pending  atomic.Pointer[EQParams]
	maxBoost atomic.Uint64 // float64 bits, read by the headroom manager

	bands [MaxBands]biquad
	defs  [MaxBands]Band
	state [MaxBands][]biquadState
}

// NewEqualizer creates a flat equalizer for interleaved channel count.
func NewEqualizer(channels int) *Equalizer {
	e := &Equalizer{channels: channels}
	for i := range e.defs {
		e.defs[i] = Band{Type: Peak, Freq: defaultBands[i], Gain: 0, Q: 1.0}
	}
	for i := range e.state {
		e.state[i] = make([]biquadState, channels)
	}
	e.enabled.Store(true)
	e.maxBoost.Store(math.Float64bits(0))
	e.Prepare(0, 44100)
	return e
}

func (e *Equalizer) ID() string { return "equalizer" }

func (e *Equalizer) Prepare(maxBlock, sampleRate int) {
	e.rate = sampleRate
	e.rampFrames = sampleRate / 100
	for i := range e.bands {
		d := e.defs[i]
		e.bands[i].set(shapeFor(d.Type), d.Freq, d.Gain, d.Q, sampleRate, 0)
	}
}

func (e *Equalizer) SetEnabled(enabled bool) { e.enabled.Store(enabled) }
func (e *Equalizer) Enabled() bool           { return e.enabled.Load() }

// MaxBoostDB reports the largest positive band gain currently configured,
// counting staged updates. The headroom manager reserves this much.
func (e *Equalizer) MaxBoostDB() float64 {
	return math.Float64frombits(e.maxBoost.Load())
}

// Update stages a full band replacement. Bands past MaxBands are
// dropped; slots the bundle leaves empty ramp back to unity.
func (e *Equalizer) Update(p Params) error {
	q, ok := p.(EQParams)
	if !ok {
		return fmt.Errorf("%w: equalizer cannot apply %T", ErrParamType, p)
	}

	boost := 0.0
	for i, b := range q.Bands {
		if i >= MaxBands {
			break
		}
		if b.Gain > boost {
			boost = b.Gain
		}
	}
	e.maxBoost.Store(math.Float64bits(boost))

	e.pending.Store(&q)
	return nil
}

func (e *Equalizer) Process(buf []float32) {
	if p := e.pending.Swap(nil); p != nil {
		e.apply(p)
	}
	if !e.enabled.Load() {
		return
	}

	ch := e.channels
	for f := 0; f+ch <= len(buf); f += ch {
		for b := range e.bands {
			e.bands[b].step()
		}
		for c := range ch {
			x := float64(buf[f+c])
			for b := range e.bands {
				x = e.bands[b].process(&e.state[b][c], x)
			}
			buf[f+c] = float32(x)
		}
	}
}

// apply ramps every band toward the staged definition. Audio side.
func (e *Equalizer) apply(p *EQParams) {
	for i := range e.defs {
		d := Band{Type: Peak, Freq: e.defs[i].Freq, Gain: 0, Q: 1.0}
		if i < len(p.Bands) {
			d = p.Bands[i]
		}
		e.defs[i] = d
		e.bands[i].set(shapeFor(d.Type), d.Freq, d.Gain, d.Q, e.rate, e.rampFrames)
	}
}

func (e *Equalizer) Reset() {
	for b := range e.state {
		for c := range e.state[b] {
			e.state[b][c] = biquadState{}
		}
	}
}

func shapeFor(t BandType) filterShape {
	switch t {
	case LowShelf:
		return shapeLowShelf
	case HighShelf:
		return shapeHighShelf
	default:
		return shapePeak
	}
}
