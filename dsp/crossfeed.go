// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/soulaudio/legato/utils"
)

// crossfeedDelay is the interaural delay of the opposite-channel bleed.
const crossfeedDelay = 300e-6 // seconds

// Crossfeed bleeds an attenuated, low-passed, slightly delayed copy of
// each channel into the other, easing the hard left/right separation of
// headphones toward what speakers in a room produce.
//
// Stereo only; other layouts pass through untouched.
type Crossfeed struct {
	channels   int
	rate       int
	rampFrames int

	enabled atomic.Bool
	pending atomic.Pointer[CrossfeedParams]

	feed   smoother // linear bleed gain
	lpCoef smoother // one-pole coefficient for the bleed lowpass

	cutoffHz float64

	delayL []float64
	delayR []float64
	idx    int
	lpL    float64
	lpR    float64
}

// NewCrossfeed creates a crossfeed stage with a -6 dB, 700 Hz bleed.
func NewCrossfeed(channels int) *Crossfeed {
	c := &Crossfeed{
		channels: channels,
		cutoffHz: 700,
	}
	c.feed.snap(utils.DbToLinear(-6))
	c.enabled.Store(true)
	c.Prepare(0, 44100)
	return c
}

func (c *Crossfeed) ID() string { return "crossfeed" }

func (c *Crossfeed) Prepare(maxBlock, sampleRate int) {
	c.rate = sampleRate
	c.rampFrames = sampleRate / 100

	frames := int(crossfeedDelay * float64(sampleRate))
	if frames < 1 {
		frames = 1
	}
	if len(c.delayL) != frames {
		c.delayL = make([]float64, frames)
		c.delayR = make([]float64, frames)
		c.idx = 0
	}
	c.lpCoef.snap(onePoleCoef(c.cutoffHz, sampleRate))
}

func (c *Crossfeed) SetEnabled(enabled bool) { c.enabled.Store(enabled) }
func (c *Crossfeed) Enabled() bool           { return c.enabled.Load() }

func (c *Crossfeed) Update(p Params) error {
	q, ok := p.(CrossfeedParams)
	if !ok {
		return fmt.Errorf("%w: crossfeed cannot apply %T", ErrParamType, p)
	}
	c.pending.Store(&q)
	return nil
}

func (c *Crossfeed) Process(buf []float32) {
	if p := c.pending.Swap(nil); p != nil {
		c.apply(p)
	}
	if !c.enabled.Load() || c.channels != 2 {
		return
	}

	for f := 0; f+2 <= len(buf); f += 2 {
		g := c.feed.next()
		k := c.lpCoef.next()
		norm := 1 / (1 + g)

		l := float64(buf[f])
		r := float64(buf[f+1])

		dl := c.delayL[c.idx]
		dr := c.delayR[c.idx]
		c.delayL[c.idx] = l
		c.delayR[c.idx] = r
		c.idx++
		if c.idx == len(c.delayL) {
			c.idx = 0
		}

		// Lowpass the delayed opposite channel before it bleeds over.
		c.lpL += k * (dr - c.lpL)
		c.lpR += k * (dl - c.lpR)

		buf[f] = float32((l + g*c.lpL) * norm)
		buf[f+1] = float32((r + g*c.lpR) * norm)
	}
}

func (c *Crossfeed) apply(p *CrossfeedParams) {
	c.feed.ramp(utils.DbToLinear(math.Min(p.FeedDB, 0)), c.rampFrames)
	if p.CutoffHz > 0 {
		c.cutoffHz = p.CutoffHz
		c.lpCoef.ramp(onePoleCoef(p.CutoffHz, c.rate), c.rampFrames)
	}
}

func (c *Crossfeed) Reset() {
	for i := range c.delayL {
		c.delayL[i] = 0
		c.delayR[i] = 0
	}
	c.idx = 0
	c.lpL = 0
	c.lpR = 0
}

// onePoleCoef converts a cutoff frequency to the feedback coefficient of
// a one-pole lowpass.
func onePoleCoef(cutoffHz float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 1
	}
	k := 1 - math.Exp(-2*math.Pi*cutoffHz/float64(sampleRate))
	return math.Min(k, 1)
}
