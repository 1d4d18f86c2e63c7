// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"math"

	"github.com/soulaudio/legato/utils"
)

// Quality selects the conversion algorithm, trading stopband attenuation
// and passband ripple for CPU cost.
type Quality int

const (
	// Fast uses Catmull-Rom cubic interpolation with a one-pole smoothing
	// filter when downsampling. Cheapest, fine for previews.
	Fast Quality = iota
	// Balanced uses a 16-tap polyphase windowed-sinc filter.
	Balanced
	// High uses a 32-tap polyphase windowed-sinc filter.
	High
	// Maximum uses a 64-tap polyphase windowed-sinc filter.
	Maximum
)

func (q Quality) String() string {
	switch q {
	case Fast:
		return "fast"
	case Balanced:
		return "balanced"
	case High:
		return "high"
	case Maximum:
		return "maximum"
	default:
		return "unknown"
	}
}

// ParseQuality maps a configuration name to a quality tier.
func ParseQuality(name string) (Quality, error) {
	switch name {
	case "fast":
		return Fast, nil
	case "balanced", "":
		return Balanced, nil
	case "high":
		return High, nil
	case "maximum":
		return Maximum, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuality, name)
}

// taps returns the filter length per phase for the tier.
func (q Quality) taps() int {
	switch q {
	case Fast:
		return 4 // cubic window
	case Balanced:
		return 16
	case High:
		return 32
	default:
		return 64
	}
}

// Converter converts interleaved multi-channel blocks between two sample
// rates. It is stateful: filter history carries across Process calls, so
// Reset must be called on any non-contiguous jump (seek) to keep unrelated
// audio out of the filter memory.
//
// Input blocks may be any size, including sizes too small to produce a
// single output frame; the shortfall accumulates and is emitted on a later
// call rather than producing a gap.
type Converter struct {
	srcRate  int
	dstRate  int
	channels int
	quality  Quality

	step float64 // source frames advanced per output frame
	half int     // taps/2

	// identical rates bypass the filter entirely
	bypass bool

	table *sincTable // nil for Fast

	// hist holds interleaved source frames still needed by the filter
	// window. hist[0] is frame index 0 of the current coordinate frame;
	// pos is the fractional frame position of the next output.
	hist []float32
	pos  float64

	out  []float32 // reused output storage
	coef []float32 // per-output-frame interpolated coefficients

	// one-pole pre-filter state for the Fast tier when downsampling
	lpState []float32
	lpAlpha float32
	useLP   bool
}

// New creates a converter from srcRate to dstRate for the given interleaved
// channel count.
func New(srcRate, dstRate, channels int, quality Quality) (*Converter, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, ErrInvalidRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	c := &Converter{
		srcRate:  srcRate,
		dstRate:  dstRate,
		channels: channels,
		quality:  quality,
		step:     float64(srcRate) / float64(dstRate),
		half:     quality.taps() / 2,
		bypass:   srcRate == dstRate,
	}

	if c.bypass {
		return c, nil
	}

	if quality == Fast {
		// Downsampling needs some smoothing; one pole is enough for the
		// cheap tier. The sinc tiers handle this via the cutoff instead.
		c.useLP = c.step > 1.0
		c.lpAlpha = 0.5
		c.lpState = make([]float32, channels)
	} else {
		c.table = newSincTable(quality, c.step)
		c.coef = make([]float32, quality.taps())
	}

	c.Reset()

	return c, nil
}

func (c *Converter) SourceRate() int { return c.srcRate }

func (c *Converter) OutputRate() int { return c.dstRate }

func (c *Converter) Channels() int { return c.channels }

func (c *Converter) Quality() Quality { return c.quality }

// Latency reports how many output frames the converted stream lags behind
// the input, for playback-position accounting. Zero in bypass.
func (c *Converter) Latency() int {
	if c.bypass {
		return 0
	}
	return int(math.Round(float64(c.half-1) / c.step))
}

// Reset drops all filter history. Call it on seek or source change;
// history from before a discontinuity must not bleed into the output.
func (c *Converter) Reset() {
	c.hist = c.hist[:0]
	c.pos = float64(c.half - 1)
	for i := range c.lpState {
		c.lpState[i] = 0
	}
}

// Process converts one input block. The returned slice aliases internal
// storage and stays valid until the next Process or Flush call; in bypass
// it is the input slice itself, bit for bit.
//
// len(in) must be a multiple of the channel count. An empty block is legal
// and may still produce output if history allows.
func (c *Converter) Process(in []float32) ([]float32, error) {
	if len(in)%c.channels != 0 {
		return nil, ErrInvalidSrcSize
	}
	if c.bypass {
		return in, nil
	}

	c.ingest(in)
	c.out = c.emit(c.out[:0])
	c.compact()

	return c.out, nil
}

// Flush drains the tail still held in filter history at end of stream,
// then resets the converter. Nil in bypass (nothing is ever held back).
func (c *Converter) Flush() []float32 {
	if c.bypass {
		return nil
	}

	// Pad with enough silence for the window to slide past the last
	// real frame.
	pad := (c.half + 1) * c.channels
	for range pad {
		c.hist = append(c.hist, 0)
	}

	c.out = c.emit(c.out[:0])
	c.Reset()

	return c.out
}

// ingest appends input frames to the history, running the Fast tier's
// pre-filter when enabled.
func (c *Converter) ingest(in []float32) {
	if !c.useLP {
		c.hist = append(c.hist, in...)
		return
	}

	frames := len(in) / c.channels
	for f := range frames {
		base := f * c.channels
		for ch := range c.channels {
			v := c.lpAlpha*in[base+ch] + (1-c.lpAlpha)*c.lpState[ch]
			c.lpState[ch] = v
			c.hist = append(c.hist, v)
		}
	}
}

// emit produces every output frame the current history can support.
func (c *Converter) emit(out []float32) []float32 {
	histFrames := len(c.hist) / c.channels

	for {
		i := int(c.pos)
		if i+c.half > histFrames-1 {
			break
		}
		frac := c.pos - float64(i)

		if c.table == nil {
			out = c.emitCubic(out, i, float32(frac))
		} else {
			out = c.emitSinc(out, i, frac)
		}

		c.pos += c.step
	}

	return out
}

func (c *Converter) emitCubic(out []float32, i int, frac float32) []float32 {
	// Window start is frame i-1: four consecutive frames around pos.
	base := (i - 1) * c.channels
	for ch := range c.channels {
		y0 := c.hist[base+ch]
		y1 := c.hist[base+c.channels+ch]
		y2 := c.hist[base+2*c.channels+ch]
		y3 := c.hist[base+3*c.channels+ch]
		out = append(out, utils.CubicInterpolate(y0, y1, y2, y3, frac))
	}
	return out
}

func (c *Converter) emitSinc(out []float32, i int, frac float64) []float32 {
	c.table.interpolate(c.coef, frac)

	// Window start is frame i-half+1.
	base := (i - c.half + 1) * c.channels
	for ch := range c.channels {
		acc := float32(0)
		idx := base + ch
		for _, k := range c.coef {
			acc += c.hist[idx] * k
			idx += c.channels
		}
		out = append(out, acc)
	}
	return out
}

// compact drops history frames the filter window has passed.
func (c *Converter) compact() {
	drop := int(c.pos) - (c.half - 1)
	if drop <= 0 {
		return
	}
	// At steep downsampling ratios the next window can start past the
	// end of the buffered history entirely.
	if avail := len(c.hist) / c.channels; drop > avail {
		drop = avail
	}

	n := copy(c.hist, c.hist[drop*c.channels:])
	c.hist = c.hist[:n]
	c.pos -= float64(drop)
}
