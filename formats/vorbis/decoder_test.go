// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"
)

// fakeStream serves a fixed pcm block through the vorbisStream
// interface, capping each Read at maxValues to imitate packet-sized
// returns from the real decoder.
type fakeStream struct {
	rate      int
	channels  int
	pcm       []float32 // interleaved
	pos       int64     // frame position
	maxValues int
	readErr   error
	seekable  bool
}

func (f *fakeStream) SampleRate() int { return f.rate }
func (f *fakeStream) Channels() int   { return f.channels }
func (f *fakeStream) Length() int64 {
	if !f.seekable {
		return 0
	}
	return int64(len(f.pcm) / f.channels)
}
func (f *fakeStream) Position() int64 { return f.pos }

func (f *fakeStream) SetPosition(pos int64) error {
	if !f.seekable {
		return fmt.Errorf("stream is not seekable")
	}
	if pos < 0 || pos > int64(len(f.pcm)/f.channels) {
		return fmt.Errorf("position %d out of range", pos)
	}
	f.pos = pos
	return nil
}

func (f *fakeStream) Read(p []float32) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	off := int(f.pos) * f.channels
	if off >= len(f.pcm) {
		return 0, io.EOF
	}
	n := len(p) - len(p)%f.channels
	if f.maxValues > 0 && n > f.maxValues {
		n = f.maxValues - f.maxValues%f.channels
	}
	if rem := len(f.pcm) - off; n > rem {
		n = rem
	}
	copy(p, f.pcm[off:off+n])
	f.pos += int64(n / f.channels)
	if off+n == len(f.pcm) {
		return n, io.EOF
	}
	return n, nil
}

// stereoRamp builds interleaved stereo where the left channel carries
// the frame index scaled to [0,1) and the right its negation.
func stereoRamp(frames int) []float32 {
	pcm := make([]float32, frames*2)
	for i := range frames {
		v := float32(i) / float32(frames)
		pcm[i*2] = v
		pcm[i*2+1] = -v
	}
	return pcm
}

func newTestSource(f *fakeStream) *source {
	return &source{dec: f, sampleRate: f.rate, channels: f.channels}
}

func TestDecodeInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
	}{
		{"garbage", []byte("OggS but not really a vorbis stream")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.raw)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSourceReadPassesValuesThrough(t *testing.T) {
	t.Parallel()

	pcm := stereoRamp(128)
	src := newTestSource(&fakeStream{rate: 44100, channels: 2, pcm: pcm, seekable: true})

	dst := make([]float32, 64)
	n, err := src.ReadSamples(dst)
	if n != 64 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (64, nil)", n, err)
	}
	for i := range n {
		if dst[i] != pcm[i] {
			t.Fatalf("sample %d = %v, want %v", i, dst[i], pcm[i])
		}
	}
	if got, want := src.Position(), time.Duration(32)*time.Second/44100; got != want {
		t.Errorf("Position() = %v, want %v", got, want)
	}
}

func TestSourceReadTrimsToWholeFrames(t *testing.T) {
	t.Parallel()

	src := newTestSource(&fakeStream{rate: 8000, channels: 2, pcm: stereoRamp(16), seekable: true})

	// An odd-length buffer must not split a frame.
	dst := make([]float32, 7)
	n, err := src.ReadSamples(dst)
	if n != 6 || err != nil {
		t.Errorf("ReadSamples() = (%d, %v), want (6, nil)", n, err)
	}
}

func TestSourceEOF(t *testing.T) {
	t.Parallel()

	src := newTestSource(&fakeStream{rate: 8000, channels: 2, pcm: stereoRamp(10), seekable: true})

	dst := make([]float32, 64)
	n, err := src.ReadSamples(dst)
	if n != 20 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (20, io.EOF)", n, err)
	}
	if !src.IsFinished() {
		t.Error("IsFinished() = false at end of stream")
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() past end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSourceSeekAndDuration(t *testing.T) {
	t.Parallel()

	fake := &fakeStream{rate: 8000, channels: 2, pcm: stereoRamp(8000), seekable: true}
	src := newTestSource(fake)

	if got := src.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}

	if err := src.Seek(250 * time.Millisecond); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if fake.pos != 2000 {
		t.Errorf("decoder position = %d frames, want 2000", fake.pos)
	}
	if got, want := src.Position(), 250*time.Millisecond; got != want {
		t.Errorf("Position() = %v, want %v", got, want)
	}

	dst := make([]float32, 2)
	if n, _ := src.ReadSamples(dst); n != 2 {
		t.Fatal("ReadSamples() after seek returned no data")
	}
	if want := float32(2000) / 8000; dst[0] != want {
		t.Errorf("sample after seek = %v, want %v", dst[0], want)
	}

	// Past-the-end positions clamp to the stream length.
	if err := src.Seek(time.Hour); err != nil {
		t.Fatalf("Seek(1h) error = %v", err)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after far seek = (%d, %v), want (0, io.EOF)", n, err)
	}
	if err := src.Seek(0); err != nil {
		t.Fatalf("Seek(0) error = %v", err)
	}
	if src.IsFinished() {
		t.Error("IsFinished() = true after rewind")
	}
}

func TestSourceSeekUnseekable(t *testing.T) {
	t.Parallel()

	src := newTestSource(&fakeStream{rate: 8000, channels: 2, pcm: stereoRamp(10)})
	if err := src.Seek(time.Millisecond); err == nil {
		t.Error("Seek() error = nil, want error for unseekable stream")
	}
	if got := src.Duration(); got != 0 {
		t.Errorf("Duration() = %v, want 0 for unknown length", got)
	}
}

func TestSourceReadError(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("corrupt packet")
	src := newTestSource(&fakeStream{rate: 8000, channels: 2, pcm: stereoRamp(10), readErr: boom})

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	if n != 0 || err == nil || err == io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want decode error", n, err)
	}
}

func TestSourceMono(t *testing.T) {
	t.Parallel()

	pcm := []float32{0.1, 0.2, 0.3, 0.4}
	src := newTestSource(&fakeStream{rate: 8000, channels: 1, pcm: pcm, seekable: true})

	if got := src.Channels(); got != 1 {
		t.Fatalf("Channels() = %d, want 1", got)
	}
	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if n != 4 || err != io.EOF {
		t.Fatalf("ReadSamples() = (%d, %v), want (4, io.EOF)", n, err)
	}
	for i, want := range pcm {
		if dst[i] != want {
			t.Errorf("sample %d = %v, want %v", i, dst[i], want)
		}
	}
}
