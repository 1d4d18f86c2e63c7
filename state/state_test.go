// SPDX-License-Identifier: EPL-2.0

package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if p.Volume != want.Volume || p.Index != want.Index || p.Shuffle != want.Shuffle || !p.Gapless {
		t.Errorf("Load() = %+v, want defaults %+v", p, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	in := Player{
		Queue: []Track{
			{
				Path:     "/music/one.flac",
				Title:    "One",
				Artist:   "A",
				Album:    "Singles",
				TrackNum: 1,
				Duration: 3*time.Minute + 45*time.Second,
				Gain:     -6.5,
			},
			{Path: "/music/two.ogg", Title: "Two", Artist: "B"},
		},
		Index:        1,
		Volume:       65,
		Shuffle:      "smart",
		Repeat:       "all",
		Gapless:      false,
		CrossfadeSec: 4.5,
		PreampDB:     -2,
		Headroom:     Headroom{Mode: "auto", ManualDB: -4},
		EQ: EQ{
			Enabled: true,
			Bands: []EQBand{
				{Type: "lowshelf", Freq: 62.5, Gain: 3, Q: 0.7},
				{Type: "peak", Freq: 1000, Gain: -2.5, Q: 1.4},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := Save(path, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(out.Queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(out.Queue))
	}
	if out.Queue[0] != in.Queue[0] {
		t.Errorf("queue[0] = %+v, want %+v", out.Queue[0], in.Queue[0])
	}
	if out.Queue[1].Path != "/music/two.ogg" {
		t.Errorf("queue[1].Path = %q, want /music/two.ogg", out.Queue[1].Path)
	}
	if out.Index != 1 || out.Volume != 65 {
		t.Errorf("index/volume = %d/%d, want 1/65", out.Index, out.Volume)
	}
	if out.Shuffle != "smart" || out.Repeat != "all" {
		t.Errorf("modes = %q/%q, want smart/all", out.Shuffle, out.Repeat)
	}
	if out.Gapless {
		t.Error("gapless = true, want false to survive the trip")
	}
	if out.CrossfadeSec != 4.5 || out.PreampDB != -2 {
		t.Errorf("crossfade/preamp = %v/%v, want 4.5/-2", out.CrossfadeSec, out.PreampDB)
	}
	if out.Headroom != in.Headroom {
		t.Errorf("headroom = %+v, want %+v", out.Headroom, in.Headroom)
	}
	if !out.EQ.Enabled || len(out.EQ.Bands) != 2 {
		t.Fatalf("eq = %+v, want enabled with 2 bands", out.EQ)
	}
	if out.EQ.Bands[0] != in.EQ.Bands[0] || out.EQ.Bands[1] != in.EQ.Bands[1] {
		t.Errorf("eq bands = %+v, want %+v", out.EQ.Bands, in.EQ.Bands)
	}
}

func TestLoadFillsMissingKeys(t *testing.T) {
	t.Parallel()

	// A hand-written partial file only pins what it names.
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := "volume: 40\nrepeat: one\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Volume != 40 || p.Repeat != "one" {
		t.Errorf("pinned keys = %d/%q, want 40/one", p.Volume, p.Repeat)
	}
	if p.Shuffle != "off" || !p.Gapless || p.Index != -1 {
		t.Errorf("defaults not filled: %+v", p)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("volume: [not closed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestSaveCreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deep", "session.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}
