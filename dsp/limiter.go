// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Limiter clamps the signal below a ceiling with instant attack and a
// slow release. It sits after every gain stage as the last line of
// defense against overs; under normal headroom it is transparent.
type Limiter struct {
	channels   int
	rate       int
	rampFrames int

	enabled atomic.Bool
	pending atomic.Pointer[LimiterParams]

	ceiling   smoother // dB
	releaseMs float64
	release   float64

	env float64
}

// NewLimiter creates a limiter with a -1 dB ceiling.
func NewLimiter(channels int) *Limiter {
	l := &Limiter{
		channels:  channels,
		releaseMs: 50,
	}
	l.ceiling.snap(-1)
	l.enabled.Store(true)
	l.Prepare(0, 44100)
	return l
}

func (l *Limiter) ID() string { return "limiter" }

func (l *Limiter) Prepare(maxBlock, sampleRate int) {
	l.rate = sampleRate
	l.rampFrames = sampleRate / 100
	l.release = envCoef(l.releaseMs, sampleRate)
}

func (l *Limiter) SetEnabled(enabled bool) { l.enabled.Store(enabled) }
func (l *Limiter) Enabled() bool           { return l.enabled.Load() }

func (l *Limiter) Update(p Params) error {
	q, ok := p.(LimiterParams)
	if !ok {
		return fmt.Errorf("%w: limiter cannot apply %T", ErrParamType, p)
	}
	l.pending.Store(&q)
	return nil
}

func (l *Limiter) Process(buf []float32) {
	if p := l.pending.Swap(nil); p != nil {
		l.apply(p)
	}
	if !l.enabled.Load() {
		return
	}

	ch := l.channels
	for f := 0; f+ch <= len(buf); f += ch {
		ceilLin := math.Pow(10, l.ceiling.next()/20)

		peak := 0.0
		for i := range ch {
			if v := math.Abs(float64(buf[f+i])); v > peak {
				peak = v
			}
		}

		// Instant attack: the envelope can never sit below the signal,
		// so nothing slips past the ceiling while the release decays.
		l.env *= l.release
		if peak > l.env {
			l.env = peak
		}

		g := float32(1)
		if l.env > ceilLin {
			g = float32(ceilLin / l.env)
		}

		for i := range ch {
			buf[f+i] *= g
		}
	}
}

func (l *Limiter) apply(p *LimiterParams) {
	l.ceiling.ramp(p.CeilingDB, l.rampFrames)
	if p.ReleaseMs > 0 && p.ReleaseMs != l.releaseMs {
		l.releaseMs = p.ReleaseMs
		l.release = envCoef(p.ReleaseMs, l.rate)
	}
}

func (l *Limiter) Reset() {
	l.env = 0
}
