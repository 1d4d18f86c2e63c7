// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/soulaudio/legato/audio"
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtChunkMinSize = 16

	formatPCM = 1

	// defaultReadFrames is the read granularity reported by BufSize.
	defaultReadFrames = 1024
)

// Decoder decodes RIFF/WAVE containers carrying 16-bit PCM.
type Decoder struct{}

// Decode walks the RIFF chunk list until it has seen both the fmt and
// data chunks, skipping everything else (LIST, fact, cue, bext and
// whatever else an editor left behind). r is promoted to an
// io.ReadSeeker when possible, otherwise the whole input is buffered.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("wav: buffer input: %w", err)
		}
		rs = bytes.NewReader(raw)
	}

	src, err := parseRIFF(rs)
	if err != nil {
		return nil, err
	}
	return src, nil
}

type fmtChunk struct {
	format        uint16
	channels      uint16
	sampleRate    uint32
	blockAlign    uint16
	bitsPerSample uint16
}

func parseRIFF(rs io.ReadSeeker) (*wavSource, error) {
	var hdr [riffHeaderSize]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWavFile, err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, ErrNotWavFile
	}

	var (
		fc     fmtChunk
		sawFmt bool
	)
	for {
		var ch [chunkHeaderSize]byte
		if _, err := io.ReadFull(rs, ch[:]); err != nil {
			// Chunk list ended without a data chunk.
			return nil, fmt.Errorf("%w: missing data chunk", ErrUnsupportedWavLayout)
		}
		id := string(ch[0:4])
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))

		switch id {
		case "fmt ":
			if size < fmtChunkMinSize {
				return nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrUnsupportedWavLayout, size)
			}
			var raw [fmtChunkMinSize]byte
			if _, err := io.ReadFull(rs, raw[:]); err != nil {
				return nil, fmt.Errorf("%w: truncated fmt chunk", ErrUnsupportedWavLayout)
			}
			fc.format = binary.LittleEndian.Uint16(raw[0:2])
			fc.channels = binary.LittleEndian.Uint16(raw[2:4])
			fc.sampleRate = binary.LittleEndian.Uint32(raw[4:8])
			fc.blockAlign = binary.LittleEndian.Uint16(raw[12:14])
			fc.bitsPerSample = binary.LittleEndian.Uint16(raw[14:16])
			sawFmt = true
			// Extension bytes (WAVE_FORMAT_EXTENSIBLE and friends).
			if rem := size - fmtChunkMinSize; rem > 0 {
				if err := skipChunk(rs, rem); err != nil {
					return nil, err
				}
			}

		case "data":
			if !sawFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt", ErrUnsupportedWavLayout)
			}
			off, err := rs.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, fmt.Errorf("wav: locate data chunk: %w", err)
			}
			return newSource(rs, fc, off, size)

		default:
			if err := skipChunk(rs, size); err != nil {
				return nil, err
			}
		}
	}
}

// skipChunk advances past a chunk body including the pad byte RIFF
// requires after odd-sized chunks.
func skipChunk(rs io.ReadSeeker, size int64) error {
	if size%2 == 1 {
		size++
	}
	if _, err := rs.Seek(size, io.SeekCurrent); err != nil {
		return fmt.Errorf("wav: skip chunk: %w", err)
	}
	return nil
}

func newSource(rs io.ReadSeeker, fc fmtChunk, dataOff, dataLen int64) (*wavSource, error) {
	if fc.format != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrOnlyPCM16bitSupported, fc.format)
	}
	if fc.bitsPerSample != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrOnlyPCM16bitSupported, fc.bitsPerSample)
	}
	if fc.channels == 0 || fc.sampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedWavLayout, fc.channels, fc.sampleRate)
	}
	// Ignore trailing bytes that do not make up a whole frame.
	align := int64(fc.channels) * 2
	dataLen -= dataLen % align

	return &wavSource{
		rs:         rs,
		sampleRate: int(fc.sampleRate),
		channels:   int(fc.channels),
		dataOff:    dataOff,
		dataLen:    dataLen,
	}, nil
}

// wavSource streams PCM straight from the data chunk. The reader stays
// positioned at dataOff+read between calls.
type wavSource struct {
	rs         io.ReadSeeker
	sampleRate int
	channels   int
	dataOff    int64
	dataLen    int64
	read       int64
	buf        []byte
	finished   bool
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return defaultReadFrames * s.channels }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.read >= s.dataLen {
		s.finished = true
		return 0, io.EOF
	}

	want := int64(len(dst)) * 2
	if rem := s.dataLen - s.read; want > rem {
		want = rem
	}
	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.rs, s.buf)
	if n == 0 {
		s.finished = true
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("wav: read data chunk: %w", err)
	}
	s.read += int64(n)

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[i*2 : i*2+2]))
		dst[i] = float32(v) / 32768.0
	}

	if s.read >= s.dataLen || err == io.EOF || err == io.ErrUnexpectedEOF {
		// A data chunk shorter than its declared size still plays out;
		// the stream just ends where the bytes do.
		s.finished = true
		return samples, io.EOF
	}
	return samples, nil
}

func (s *wavSource) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	frame := int64(pos.Seconds() * float64(s.sampleRate))
	off := frame * int64(s.channels) * 2
	if off > s.dataLen {
		off = s.dataLen
	}
	if _, err := s.rs.Seek(s.dataOff+off, io.SeekStart); err != nil {
		return fmt.Errorf("wav: seek: %w", err)
	}
	s.read = off
	s.finished = false
	return nil
}

func (s *wavSource) Duration() time.Duration {
	frames := s.dataLen / (int64(s.channels) * 2)
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

func (s *wavSource) Position() time.Duration {
	frames := s.read / (int64(s.channels) * 2)
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

func (s *wavSource) IsFinished() bool { return s.finished }

func (s *wavSource) Close() error { return nil }
