// SPDX-License-Identifier: EPL-2.0

package legato_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/soulaudio/legato"
	"github.com/soulaudio/legato/formats/wav"
	"github.com/soulaudio/legato/player"
)

func writeWAVFile(t *testing.T, path string, rate int, samples []int16) {
	t.Helper()
	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, rate, samples); err != nil {
		t.Fatalf("WriteWAV16 error = %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func constant(n int, v int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestDefaultRegistryFormats(t *testing.T) {
	got := legato.DefaultRegistry().Formats()
	sort.Strings(got)

	want := []string{"aif", "aiff", "mp3", "oga", "ogg", "wav"}
	if !slices.Equal(got, want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
}

func TestOpenDecodesByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAVFile(t, path, 8000, constant(4000, 16384))

	src, track, err := legato.Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Fatalf("source = %d Hz %d ch, want 8000 Hz 1 ch", src.SampleRate(), src.Channels())
	}
	if track.Path != path {
		t.Errorf("track.Path = %q, want %q", track.Path, path)
	}
	if track.Title != "tone" {
		t.Errorf("track.Title = %q, want %q", track.Title, "tone")
	}
	if want := 500 * time.Millisecond; track.Duration != want {
		t.Errorf("track.Duration = %v, want %v", track.Duration, want)
	}

	buf := make([]float32, 1024)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			if v != 0.5 {
				t.Fatalf("sample = %v, want 0.5", v)
			}
		}
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples error = %v", err)
		}
	}
	if total != 4000 {
		t.Fatalf("read %d samples, want 4000", total)
	}
}

// Open buffers the whole file up front, so the source keeps playing
// and seeking after the file is gone.
func TestOpenSurvivesFileRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.wav")
	writeWAVFile(t, path, 8000, constant(800, 1000))

	src, _, err := legato.Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer src.Close()

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	if err := src.Seek(50 * time.Millisecond); err != nil {
		t.Fatalf("Seek error = %v", err)
	}
	buf := make([]float32, 2048)
	n, err := src.ReadSamples(buf)
	if n != 400 {
		t.Fatalf("ReadSamples n = %d, want 400", n)
	}
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples error = %v", err)
	}
}

func TestOpenUppercaseExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOUD.WAV")
	writeWAVFile(t, path, 8000, constant(80, 100))

	src, _, err := legato.Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	src.Close()
}

func TestOpenUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	_, _, err := legato.Open(path)
	if !errors.Is(err, legato.ErrUnknownFormat) {
		t.Fatalf("Open error = %v, want ErrUnknownFormat", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, _, err := legato.Open(filepath.Join(t.TempDir(), "absent.wav"))
	if err == nil {
		t.Fatal("Open succeeded for a missing file")
	}
}

func TestNewPlayerOpensQueuedTracks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAVFile(t, path, 8000, constant(4000, 16384))

	m, err := legato.NewPlayer(player.Config{
		SampleRate: 8000,
		Channels:   2,
		MaxBlock:   256,
	})
	if err != nil {
		t.Fatalf("NewPlayer error = %v", err)
	}
	defer m.Close()

	_, track, err := legato.Open(path)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	if err := m.EnqueueEnd(track); err != nil {
		t.Fatalf("EnqueueEnd error = %v", err)
	}
	if err := m.Play(); err != nil {
		t.Fatalf("Play error = %v", err)
	}

	buf := make([]float32, 512)
	peak := float32(0)
	for i := 0; i < 10; i++ {
		if _, err := m.ProcessAudio(buf); err != nil {
			t.Fatalf("ProcessAudio error = %v", err)
		}
		for _, v := range buf {
			if v > peak {
				peak = v
			}
		}
	}
	if peak < 0.25 {
		t.Fatalf("peak = %v, want audible signal from the decoded file", peak)
	}
}
