// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"sync/atomic"
)

// makeTone generates a mono sine block.
func makeTone(freq float64, rate, frames int, amp float64) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

// makeStereoTone generates an interleaved stereo sine block with separate
// channel amplitudes, so mid/side processing has a side component.
func makeStereoTone(freq float64, rate, frames int, ampL, ampR float64) []float32 {
	out := make([]float32, frames*2)
	for f := range frames {
		s := math.Sin(2 * math.Pi * freq * float64(f) / float64(rate))
		out[f*2] = float32(ampL * s)
		out[f*2+1] = float32(ampR * s)
	}
	return out
}

// fakeOp distinguishes the two non-commuting transforms the chain tests
// compose to observe ordering.
type fakeOp int

const (
	opAddOne fakeOp = iota
	opDouble
)

// fakeEffect is a minimal Component recording lifecycle calls.
type fakeEffect struct {
	id      string
	op      fakeOp
	enabled atomic.Bool

	prepared  bool
	maxBlock  int
	rate      int
	resets    int
	lastParam Params
}

func newFakeEffect(id string, op fakeOp) *fakeEffect {
	f := &fakeEffect{id: id, op: op}
	f.enabled.Store(true)
	return f
}

func (f *fakeEffect) ID() string { return f.id }

func (f *fakeEffect) Prepare(maxBlock, sampleRate int) {
	f.prepared = true
	f.maxBlock = maxBlock
	f.rate = sampleRate
}

func (f *fakeEffect) Process(buf []float32) {
	if !f.enabled.Load() {
		return
	}
	for i := range buf {
		switch f.op {
		case opAddOne:
			buf[i]++
		case opDouble:
			buf[i] *= 2
		}
	}
}

func (f *fakeEffect) Reset()                  { f.resets++ }
func (f *fakeEffect) SetEnabled(enabled bool) { f.enabled.Store(enabled) }
func (f *fakeEffect) Enabled() bool           { return f.enabled.Load() }

func (f *fakeEffect) Update(p Params) error {
	f.lastParam = p
	return nil
}
