// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/soulaudio/legato/audio"
)

// go-mp3 emits 16-bit little-endian stereo regardless of the encoded
// channel count, so one output frame is always four bytes.
const bytesPerFrame = 4

const defaultReadFrames = 1024

// pcmStream is the slice of gomp3.Decoder the source needs, split out
// so tests can stand in for the real decoder.
type pcmStream interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

// Decoder decodes MPEG-1 layer 3 streams via hajimehoshi/go-mp3.
type Decoder struct{}

// Decode promotes r to an io.ReadSeeker, buffering the whole input when
// it has to. The promotion is what makes Length and Seek available on
// the underlying decoder; without it MP3 duration is unknowable short
// of decoding the entire stream.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("mp3: buffer input: %w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		length:     dec.Length(),
	}, nil
}

type source struct {
	dec        pcmStream
	sampleRate int
	length     int64 // decoded stream size in bytes, -1 when unknown
	read       int64
	buf        []byte
	finished   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return 2 }
func (s *source) BufSize() int    { return defaultReadFrames * 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Whole frames only, or a split int16 would corrupt the stream.
	want := len(dst) * 2
	want -= want % bytesPerFrame
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	// go-mp3 returns short reads at its internal frame boundaries, so
	// assemble a full block before converting.
	var filled int
	var err error
	for filled < want {
		var n int
		n, err = s.dec.Read(s.buf[filled:])
		filled += n
		if err != nil {
			break
		}
	}
	s.read += int64(filled)

	samples := filled / 2
	for i := range samples {
		v := int16(uint16(s.buf[i*2]) | uint16(s.buf[i*2+1])<<8)
		dst[i] = float32(v) / 32768.0
	}

	switch {
	case errors.Is(err, io.EOF):
		s.finished = true
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("mp3: decode: %w", err)
	default:
		return samples, nil
	}
}

func (s *source) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	off := int64(pos.Seconds()*float64(s.sampleRate)) * bytesPerFrame
	if s.length >= 0 && off > s.length {
		off = s.length
	}
	got, err := s.dec.Seek(off, io.SeekStart)
	if err != nil {
		return fmt.Errorf("mp3: seek: %w", err)
	}
	s.read = got
	s.finished = false
	return nil
}

func (s *source) Duration() time.Duration {
	if s.length < 0 {
		return 0
	}
	frames := s.length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

func (s *source) Position() time.Duration {
	frames := s.read / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

func (s *source) IsFinished() bool { return s.finished }

func (s *source) Close() error { return nil }
