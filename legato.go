// SPDX-License-Identifier: EPL-2.0

package legato

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soulaudio/legato/audio"
	"github.com/soulaudio/legato/formats/aiff"
	"github.com/soulaudio/legato/formats/mp3"
	"github.com/soulaudio/legato/formats/vorbis"
	"github.com/soulaudio/legato/formats/wav"
	"github.com/soulaudio/legato/player"
)

// ErrUnknownFormat means no decoder is registered for a file's
// extension.
var ErrUnknownFormat = errors.New("no decoder registered for format")

// DefaultRegistry returns a registry with every built-in decoder
// registered: wav, mp3, ogg/oga (Vorbis) and aiff/aif.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	return r
}

// Open reads the file at path into memory and decodes it with the
// built-in decoder for its extension. The source is backed by that
// in-memory copy, so ReadSamples and Seek never touch the filesystem
// after Open returns. The returned track carries a fresh identity, the
// file name as its title, and the decoded duration.
func Open(path string) (audio.Source, player.Track, error) {
	return OpenWith(DefaultRegistry(), path)
}

// OpenWith is Open against a caller-supplied registry.
func OpenWith(reg *audio.Registry, path string) (audio.Source, player.Track, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := reg.Get(format)
	if !ok {
		return nil, player.Track{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, player.Track{}, fmt.Errorf("reading %s: %w", path, err)
	}

	src, err := dec.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, player.Track{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	t := player.NewTrack(path)
	t.Duration = src.Duration()
	return src, t, nil
}

// NewPlayer builds a playback manager from cfg. A nil cfg.OpenTrack is
// wired to the default registry, so queued file paths decode
// automatically when playback reaches them.
func NewPlayer(cfg player.Config) (*player.Manager, error) {
	if cfg.OpenTrack == nil {
		reg := DefaultRegistry()
		cfg.OpenTrack = func(t player.Track) (audio.Source, error) {
			src, _, err := OpenWith(reg, t.Path)
			return src, err
		}
	}
	return player.New(cfg)
}
