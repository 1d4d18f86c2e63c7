// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gaiff "github.com/go-audio/aiff"
	gaudio "github.com/go-audio/audio"

	"github.com/soulaudio/legato/audio"
)

const defaultReadFrames = 1024

// Decoder decodes AIFF containers via go-audio/aiff. Every PCM bit
// depth the container allows is accepted and normalized to float32,
// 8 through 32 bit.
type Decoder struct{}

// Decode promotes r to an io.ReadSeeker, buffering the whole input
// when it has to. The container handle is kept because seeking rewinds
// and re-decodes; see Seek.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("aiff: buffer input: %w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec := gaiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAiffFile, err)
		}
		return nil, ErrNotAiffFile
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedBitDepth, dec.BitDepth)
	}
	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &aiffSource{
		rs:         rs,
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		frames:     int64(dec.NumSampleFrames),
		scale:      float32(1) / float32(int64(1)<<(dec.BitDepth-1)),
		intBuf: &gaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, defaultReadFrames*format.NumChannels),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}

type aiffSource struct {
	rs         io.ReadSeeker
	dec        *gaiff.Decoder
	intBuf     *gaudio.IntBuffer
	scale      float32
	sampleRate int
	channels   int
	frames     int64
	read       int64 // frames consumed
	finished   bool
}

func (s *aiffSource) SampleRate() int { return s.sampleRate }
func (s *aiffSource) Channels() int   { return s.channels }
func (s *aiffSource) BufSize() int    { return defaultReadFrames * s.channels }

func (s *aiffSource) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}
	if s.read >= s.frames {
		s.finished = true
		return 0, io.EOF
	}

	if cap(s.intBuf.Data) < want {
		s.intBuf.Data = make([]int, want)
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("aiff: decode: %w", err)
	}
	if n == 0 {
		s.finished = true
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) * s.scale
	}
	s.read += int64(n / s.channels)

	if s.read >= s.frames {
		s.finished = true
		return n, io.EOF
	}
	return n, nil
}

// Seek rewinds the container and decodes forward to the target frame.
// AIFF carries no index to jump through, and decoding PCM is cheap
// enough that skipping from the start beats maintaining one.
func (s *aiffSource) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	target := int64(pos.Seconds() * float64(s.sampleRate))
	if target > s.frames {
		target = s.frames
	}

	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("aiff: rewind: %w", err)
	}
	dec := gaiff.NewDecoder(s.rs)
	if !dec.IsValidFile() {
		return fmt.Errorf("aiff: reopen: %w", ErrNotAiffFile)
	}
	s.dec = dec
	s.read = 0
	s.finished = false

	for s.read < target {
		chunk := target - s.read
		if limit := int64(cap(s.intBuf.Data) / s.channels); chunk > limit {
			chunk = limit
		}
		s.intBuf.Data = s.intBuf.Data[:chunk*int64(s.channels)]
		n, err := s.dec.PCMBuffer(s.intBuf)
		if err != nil {
			return fmt.Errorf("aiff: skip to %v: %w", pos, err)
		}
		if n == 0 {
			break
		}
		s.read += int64(n / s.channels)
	}
	return nil
}

func (s *aiffSource) Duration() time.Duration {
	return time.Duration(s.frames) * time.Second / time.Duration(s.sampleRate)
}

func (s *aiffSource) Position() time.Duration {
	return time.Duration(s.read) * time.Second / time.Duration(s.sampleRate)
}

func (s *aiffSource) IsFinished() bool { return s.finished }

func (s *aiffSource) Close() error { return nil }
