// SPDX-License-Identifier: EPL-2.0

// Package loudness measures integrated program loudness and sample peak
// per ITU-R BS.1770, and derives the replay gain that brings a track to
// the reference level. It is an offline analysis tool: Process may
// allocate and must not be called from the audio callback.
package loudness

import (
	"errors"
	"math"
)

// ReferenceLUFS is the loudness normalization target, per ReplayGain 2.
const ReferenceLUFS = -18.0

const (
	// Gating blocks are 400 ms with 75% overlap, so energy is collected
	// in 100 ms sub-blocks and each gating block spans four of them.
	subsPerBlock = 4

	absoluteGateLUFS = -70.0
	relativeGateLU   = 10.0
)

var (
	ErrInvalidRate     = errors.New("loudness: sample rate must be positive")
	ErrInvalidChannels = errors.New("loudness: channel count must be positive")
)

// Meter accumulates loudness statistics over a stream of interleaved
// samples. Feed it whole frames in any block size; read the results
// when the stream ends.
type Meter struct {
	rate     int
	channels int
	weights  []float64

	stage1 []kBiquad
	stage2 []kBiquad

	hopFrames int
	subAcc    float64
	subFill   int
	subs      [subsPerBlock]float64
	subCount  int

	blocks []float64
	peak   float64
}

// NewMeter creates a meter for the given stream parameters.
func NewMeter(sampleRate, channels int) (*Meter, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	m := &Meter{
		rate:      sampleRate,
		channels:  channels,
		weights:   channelWeights(channels),
		stage1:    make([]kBiquad, channels),
		stage2:    make([]kBiquad, channels),
		hopFrames: sampleRate / 10,
	}
	s1 := shelfCoefs(sampleRate)
	s2 := highpassCoefs(sampleRate)
	for i := range channels {
		m.stage1[i] = s1
		m.stage2[i] = s2
	}
	return m, nil
}

// Process feeds interleaved samples into the meter. len(buf) should be
// a multiple of the channel count; a trailing partial frame is ignored.
func (m *Meter) Process(buf []float32) {
	frames := len(buf) / m.channels
	for f := 0; f < frames; f++ {
		base := f * m.channels
		for c := 0; c < m.channels; c++ {
			x := float64(buf[base+c])
			if a := math.Abs(x); a > m.peak {
				m.peak = a
			}
			y := m.stage2[c].process(m.stage1[c].process(x))
			m.subAcc += m.weights[c] * y * y
		}

		m.subFill++
		if m.subFill == m.hopFrames {
			m.pushSub()
		}
	}
}

func (m *Meter) pushSub() {
	m.subs[m.subCount%subsPerBlock] = m.subAcc
	m.subCount++
	m.subAcc = 0
	m.subFill = 0

	if m.subCount < subsPerBlock {
		return
	}
	var sum float64
	for _, e := range m.subs {
		sum += e
	}
	ms := sum / float64(subsPerBlock*m.hopFrames)
	m.blocks = append(m.blocks, ms)
}

// Integrated returns the gated program loudness in LUFS, or -Inf when
// every block fell below the absolute gate.
func (m *Meter) Integrated() float64 {
	absGate := msFromLUFS(absoluteGateLUFS)

	var sum float64
	var n int
	for _, ms := range m.blocks {
		if ms > absGate {
			sum += ms
			n++
		}
	}
	if n == 0 {
		return math.Inf(-1)
	}

	relGate := msFromLUFS(lufsFromMS(sum/float64(n)) - relativeGateLU)
	sum, n = 0, 0
	for _, ms := range m.blocks {
		if ms > absGate && ms > relGate {
			sum += ms
			n++
		}
	}
	if n == 0 {
		return math.Inf(-1)
	}
	return lufsFromMS(sum / float64(n))
}

// SamplePeak returns the largest absolute sample value seen so far.
func (m *Meter) SamplePeak() float64 { return m.peak }

// TrackGain returns the dB adjustment that brings the measured program
// to ReferenceLUFS. An unmeasurable (fully gated) stream returns 0.
func (m *Meter) TrackGain() float64 {
	l := m.Integrated()
	if math.IsInf(l, -1) {
		return 0
	}
	return ReferenceLUFS - l
}

// Reset discards all accumulated state so the meter can measure a new
// stream at the same rate and layout.
func (m *Meter) Reset() {
	for i := range m.stage1 {
		m.stage1[i].reset()
		m.stage2[i].reset()
	}
	m.subAcc = 0
	m.subFill = 0
	m.subCount = 0
	m.blocks = m.blocks[:0]
	m.peak = 0
}

// SampleRate reports the rate the meter was built for.
func (m *Meter) SampleRate() int { return m.rate }

// Channels reports the layout the meter was built for.
func (m *Meter) Channels() int { return m.channels }

func lufsFromMS(ms float64) float64 {
	return -0.691 + 10*math.Log10(ms)
}

func msFromLUFS(l float64) float64 {
	return math.Pow(10, (l+0.691)/10)
}
