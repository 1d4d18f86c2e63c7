// SPDX-License-Identifier: EPL-2.0

// Package crossfade blends the end of one track into the start of the
// next with sample-accurate gain curves. A zero-length fade degenerates
// to a gapless switch.
package crossfade

// State tracks where a fade is in its lifecycle.
type State int

const (
	// Idle means no fade is armed.
	Idle State = iota
	// Fading means Mix is actively blending two signals.
	Fading
	// Complete means the fade has run its course and the incoming
	// signal should take over.
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fading:
		return "fading"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Engine blends an outgoing and an incoming signal. It is allocated
// once and re-armed per transition; Mix performs no allocation and is
// safe to call from the audio callback.
//
// Progress is counted in frames consumed, so a fade lands on the same
// sample no matter how the caller slices its blocks.
type Engine struct {
	channels int
	curve    Curve
	total    int
	done     int
	state    State
}

// NewEngine creates an idle engine for the given interleaved channel
// count.
func NewEngine(channels int) *Engine {
	return &Engine{channels: channels}
}

// Begin arms a fade over the given number of frames. Zero or negative
// frames complete immediately: the caller swaps sources without any
// blending, which keeps back-to-back tracks gapless.
func (e *Engine) Begin(curve Curve, frames int) {
	e.curve = curve
	e.done = 0
	if frames <= 0 {
		e.total = 0
		e.state = Complete
		return
	}
	e.total = frames
	e.state = Fading
}

// Mix blends incoming into dst in place and reports the frames
// consumed. Both slices hold interleaved samples; the shorter one
// bounds the mix. Frames past the end of the fade window take the
// incoming signal at full level.
func (e *Engine) Mix(dst, incoming []float32) int {
	if e.state != Fading {
		return 0
	}
	frames := min(len(dst), len(incoming)) / e.channels
	for f := 0; f < frames; f++ {
		t := float64(e.done) / float64(e.total)
		gOut, gIn := e.curve.gains(t)
		base := f * e.channels
		for i := range e.channels {
			dst[base+i] = dst[base+i]*float32(gOut) + incoming[base+i]*float32(gIn)
		}
		if e.done < e.total {
			e.done++
		}
	}
	if e.done >= e.total {
		e.state = Complete
	}
	return frames
}

// Truncate ends the fade early, as when the outgoing source runs dry
// before the fade window does. The incoming signal takes over at full
// level.
func (e *Engine) Truncate() {
	if e.state == Fading {
		e.done = e.total
		e.state = Complete
	}
}

// Abort cancels an armed or running fade without completing it.
func (e *Engine) Abort() {
	e.state = Idle
	e.done = 0
	e.total = 0
}

// State reports the lifecycle phase.
func (e *Engine) State() State { return e.state }

// Curve reports the gain law of the armed fade.
func (e *Engine) Curve() Curve { return e.curve }

// Progress reports fade completion in [0, 1].
func (e *Engine) Progress() float64 {
	if e.total == 0 {
		if e.state == Complete {
			return 1
		}
		return 0
	}
	return float64(e.done) / float64(e.total)
}

// Remaining reports the frames left before the fade completes.
func (e *Engine) Remaining() int {
	return e.total - e.done
}
