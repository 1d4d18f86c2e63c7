// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Compressor is a downward compressor with a soft knee and a one-pole
// peak envelope follower. The envelope is shared across channels so the
// stereo image does not shift under gain reduction.
//
// Threshold, ratio, knee, and makeup changes ramp over the smoothing
// window. Attack and release changes take effect immediately: they alter
// how the envelope moves, not the gain itself, so they cannot click.
type Compressor struct {
	channels   int
	rate       int
	rampFrames int

	enabled atomic.Bool
	pending atomic.Pointer[CompressorParams]

	threshold smoother // dB
	ratio     smoother
	knee      smoother // dB
	makeup    smoother // dB

	attackMs  float64
	releaseMs float64
	attack    float64 // per-frame envelope coefficient
	release   float64

	env float64 // linear peak envelope
}

// NewCompressor creates a compressor with moderate program defaults.
func NewCompressor(channels int) *Compressor {
	c := &Compressor{
		channels:  channels,
		attackMs:  10,
		releaseMs: 100,
	}
	c.threshold.snap(-18)
	c.ratio.snap(4)
	c.knee.snap(6)
	c.makeup.snap(0)
	c.enabled.Store(true)
	c.Prepare(0, 44100)
	return c
}

func (c *Compressor) ID() string { return "compressor" }

func (c *Compressor) Prepare(maxBlock, sampleRate int) {
	c.rate = sampleRate
	c.rampFrames = sampleRate / 100
	c.attack = envCoef(c.attackMs, sampleRate)
	c.release = envCoef(c.releaseMs, sampleRate)
}

func (c *Compressor) SetEnabled(enabled bool) { c.enabled.Store(enabled) }
func (c *Compressor) Enabled() bool           { return c.enabled.Load() }

func (c *Compressor) Update(p Params) error {
	q, ok := p.(CompressorParams)
	if !ok {
		return fmt.Errorf("%w: compressor cannot apply %T", ErrParamType, p)
	}
	c.pending.Store(&q)
	return nil
}

func (c *Compressor) Process(buf []float32) {
	if p := c.pending.Swap(nil); p != nil {
		c.apply(p)
	}
	if !c.enabled.Load() {
		return
	}

	ch := c.channels
	for f := 0; f+ch <= len(buf); f += ch {
		threshold := c.threshold.next()
		ratio := c.ratio.next()
		knee := c.knee.next()
		makeup := c.makeup.next()

		peak := 0.0
		for i := range ch {
			if v := math.Abs(float64(buf[f+i])); v > peak {
				peak = v
			}
		}

		if peak > c.env {
			c.env = c.attack*c.env + (1-c.attack)*peak
		} else {
			c.env = c.release*c.env + (1-c.release)*peak
		}

		envDB := 20 * math.Log10(math.Max(c.env, 1e-10))
		gainDB := gainReductionDB(envDB-threshold, ratio, knee) + makeup
		g := float32(math.Pow(10, gainDB/20))

		for i := range ch {
			buf[f+i] *= g
		}
	}
}

func (c *Compressor) apply(p *CompressorParams) {
	c.threshold.ramp(p.ThresholdDB, c.rampFrames)
	c.ratio.ramp(math.Max(p.Ratio, 1), c.rampFrames)
	c.knee.ramp(math.Max(p.KneeDB, 0), c.rampFrames)
	c.makeup.ramp(p.MakeupDB, c.rampFrames)

	if p.AttackMs > 0 && p.AttackMs != c.attackMs {
		c.attackMs = p.AttackMs
		c.attack = envCoef(p.AttackMs, c.rate)
	}
	if p.ReleaseMs > 0 && p.ReleaseMs != c.releaseMs {
		c.releaseMs = p.ReleaseMs
		c.release = envCoef(p.ReleaseMs, c.rate)
	}
}

func (c *Compressor) Reset() {
	c.env = 0
}

// gainReductionDB computes the soft-knee gain curve. over is the level
// above threshold in dB.
func gainReductionDB(over, ratio, knee float64) float64 {
	slope := 1 - 1/ratio
	switch {
	case knee > 0 && over > -knee/2 && over < knee/2:
		d := over + knee/2
		return -slope * d * d / (2 * knee)
	case over > 0:
		return -slope * over
	default:
		return 0
	}
}

// envCoef converts a time constant in milliseconds to a one-pole
// coefficient at the given rate.
func envCoef(ms float64, sampleRate int) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms / 1000 * float64(sampleRate)))
}
