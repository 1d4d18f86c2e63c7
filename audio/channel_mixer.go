package audio

import (
	"fmt"
	"time"
)

// ChannelMixer adapts a source's channel layout to the layout the playback
// pipeline runs at. Mono input is duplicated across the output pair, wider
// layouts are averaged down, matching layouts pass straight through.
type ChannelMixer struct {
	src Source
	out int
	tmp []float32
}

// NewChannelMixer wraps src so it reads as outChannels interleaved audio.
func NewChannelMixer(src Source, outChannels int) *ChannelMixer {
	return &ChannelMixer{
		src: src,
		out: outChannels,
		tmp: make([]float32, 4096),
	}
}

func (m *ChannelMixer) SampleRate() int          { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int            { return m.out }
func (m *ChannelMixer) BufSize() int             { return m.src.BufSize() }
func (m *ChannelMixer) Duration() time.Duration  { return m.src.Duration() }
func (m *ChannelMixer) Position() time.Duration  { return m.src.Position() }
func (m *ChannelMixer) IsFinished() bool         { return m.src.IsFinished() }
func (m *ChannelMixer) Seek(pos time.Duration) error { return m.src.Seek(pos) }

func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.out {
		// Pass-through: layouts already match
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	samplesNeeded := frames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		newCap := samplesNeeded
		if newCap < 8192 {
			newCap = 8192 // Reasonable minimum
		}
		m.tmp = make([]float32, newCap)
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	framesRead := n / in

	switch {
	case in == 1 && m.out == 2:
		// Up-mix: duplicate mono across the pair
		for f := range framesRead {
			v := m.tmp[f]
			dst[f*2] = v
			dst[f*2+1] = v
		}
	case in == 2 && m.out == 1:
		// Down-mix: average the stereo pair
		for f := range framesRead {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	case m.out == 1:
		// Generic mono sum
		invIn := float32(1.0) / float32(in)
		for f := range framesRead {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * invIn
		}
	default:
		// Generic: input channel c lands on output c mod out, averaged.
		// Naive for surround layouts, but this adapter only needs to keep
		// the stream playable, not produce a broadcast down-mix.
		perOut := float32(in) / float32(m.out)
		if perOut < 1 {
			perOut = 1
		}
		inv := 1.0 / perOut
		for f := range framesRead {
			base := f * in
			outBase := f * m.out
			for c := range m.out {
				dst[outBase+c] = 0
			}
			for c := range in {
				dst[outBase+c%m.out] += m.tmp[base+c] * inv
			}
		}
	}

	return framesRead * m.out, err
}
