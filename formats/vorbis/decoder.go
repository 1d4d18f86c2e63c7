// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jfreymuth/oggvorbis"

	"github.com/soulaudio/legato/audio"
)

const defaultReadFrames = 1024

// vorbisStream is the slice of oggvorbis.Reader the source needs,
// split out so tests can stand in for the real decoder.
type vorbisStream interface {
	SampleRate() int
	Channels() int
	Read(p []float32) (int, error)
	Length() int64
	Position() int64
	SetPosition(pos int64) error
}

// Decoder decodes Ogg Vorbis streams via jfreymuth/oggvorbis.
type Decoder struct{}

// Decode promotes r to an io.ReadSeeker, buffering the whole input
// when it has to. Seekability is what lets the library report stream
// length and honor SetPosition.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("vorbis: buffer input: %w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

type source struct {
	dec        vorbisStream
	sampleRate int
	channels   int
	finished   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return defaultReadFrames * s.channels }

// ReadSamples decodes straight into dst. oggvorbis already produces
// interleaved float32 and counts values rather than frames, so the
// only adaptation is keeping dst a whole number of frames.
func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	switch {
	case errors.Is(err, io.EOF):
		s.finished = true
		return n, io.EOF
	case err != nil:
		return n, fmt.Errorf("vorbis: decode: %w", err)
	default:
		return n, nil
	}
}

func (s *source) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	frame := int64(pos.Seconds() * float64(s.sampleRate))
	if total := s.dec.Length(); total > 0 && frame > total {
		frame = total
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis: seek: %w", err)
	}
	s.finished = false
	return nil
}

func (s *source) Duration() time.Duration {
	total := s.dec.Length()
	if total <= 0 {
		return 0
	}
	return time.Duration(total) * time.Second / time.Duration(s.sampleRate)
}

func (s *source) Position() time.Duration {
	return time.Duration(s.dec.Position()) * time.Second / time.Duration(s.sampleRate)
}

func (s *source) IsFinished() bool { return s.finished }

func (s *source) Close() error { return nil }
