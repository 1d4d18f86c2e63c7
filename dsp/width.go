// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Width rebalances the mid/side decomposition of a stereo signal. Width
// 0 collapses to mono, 1 leaves the image unchanged, 2 doubles the side
// component.
//
// Stereo only; other layouts pass through untouched.
type Width struct {
	channels   int
	rampFrames int

	enabled atomic.Bool
	pending atomic.Pointer[WidthParams]

	width smoother
}

// NewWidth creates a width stage at unity.
func NewWidth(channels int) *Width {
	w := &Width{channels: channels}
	w.width.snap(1)
	w.enabled.Store(true)
	w.Prepare(0, 44100)
	return w
}

func (w *Width) ID() string { return "width" }

func (w *Width) Prepare(maxBlock, sampleRate int) {
	w.rampFrames = sampleRate / 100
}

func (w *Width) SetEnabled(enabled bool) { w.enabled.Store(enabled) }
func (w *Width) Enabled() bool           { return w.enabled.Load() }

func (w *Width) Update(p Params) error {
	q, ok := p.(WidthParams)
	if !ok {
		return fmt.Errorf("%w: width cannot apply %T", ErrParamType, p)
	}
	q.Width = math.Max(0, math.Min(q.Width, 2))
	w.pending.Store(&q)
	return nil
}

func (w *Width) Process(buf []float32) {
	if p := w.pending.Swap(nil); p != nil {
		w.width.ramp(p.Width, w.rampFrames)
	}
	if !w.enabled.Load() || w.channels != 2 {
		return
	}

	for f := 0; f+2 <= len(buf); f += 2 {
		ww := w.width.next()

		l := float64(buf[f])
		r := float64(buf[f+1])
		mid := (l + r) / 2
		side := (l - r) / 2 * ww

		buf[f] = float32(mid + side)
		buf[f+1] = float32(mid - side)
	}
}

// Reset is a no-op: width holds no signal state.
func (w *Width) Reset() {}
