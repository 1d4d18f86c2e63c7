// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
	"time"
)

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	waveform    func(frame int, channel int) float32

	// ReadErr, when set, is returned once FailAfter frames were produced.
	ReadErr   error
	FailAfter int

	// SeekErr, when set, is returned by Seek.
	SeekErr error

	closed bool
}

// NewMockSource creates a new mock audio source.
// totalFrames is the total number of frames (samples per channel) to generate.
// waveform is a function that generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		generated:   0,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called, for leak assertions in tests.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) Duration() time.Duration {
	return time.Duration(m.totalFrames) * time.Second / time.Duration(m.sampleRate)
}

func (m *MockSource) Position() time.Duration {
	return time.Duration(m.generated) * time.Second / time.Duration(m.sampleRate)
}

func (m *MockSource) IsFinished() bool { return m.generated >= m.totalFrames }

func (m *MockSource) Seek(pos time.Duration) error {
	if m.SeekErr != nil {
		return m.SeekErr
	}

	frame := int(pos.Seconds() * float64(m.sampleRate))
	if frame < 0 {
		frame = 0
	}
	if frame > m.totalFrames {
		frame = m.totalFrames
	}
	m.generated = frame

	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.ReadErr != nil && m.generated >= m.FailAfter {
		return 0, m.ReadErr
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	// Calculate how many frames we can write
	framesRequested := len(dst) / m.channels
	framesAvailable := m.totalFrames - m.generated
	framesToWrite := framesRequested
	if framesToWrite > framesAvailable {
		framesToWrite = framesAvailable
	}
	if m.ReadErr != nil && m.generated+framesToWrite > m.FailAfter {
		framesToWrite = m.FailAfter - m.generated
	}

	// Generate samples
	for frame := range framesToWrite {
		frameIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(frameIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalFrames {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}
