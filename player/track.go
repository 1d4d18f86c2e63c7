// SPDX-License-Identifier: EPL-2.0

package player

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Origin tags where a queued track came from, which scopes shuffle
// behavior (an album queued as an album shuffles within itself).
type Origin int

const (
	OriginSingle Origin = iota
	OriginPlaylist
	OriginAlbum
	OriginArtist
)

func (o Origin) String() string {
	switch o {
	case OriginSingle:
		return "single"
	case OriginPlaylist:
		return "playlist"
	case OriginAlbum:
		return "album"
	case OriginArtist:
		return "artist"
	default:
		return "unknown"
	}
}

// Track is one queue entry. Tracks are immutable once enqueued: reorder
// and metadata changes replace the value, they never mutate it in
// place, so snapshots handed to other goroutines stay coherent.
type Track struct {
	ID       uuid.UUID
	Path     string
	Title    string
	Artist   string
	Album    string
	TrackNum int
	Duration time.Duration
	// Gain is the stored replay gain in dB, 0 when the track has not
	// been scanned.
	Gain   float64
	Origin Origin
}

// NewTrack builds a track for a file path with a fresh identity. The
// title defaults to the file name without its extension; callers with
// real metadata overwrite the display fields.
func NewTrack(path string) Track {
	base := filepath.Base(path)
	return Track{
		ID:    uuid.New(),
		Path:  path,
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// IsZero reports whether the track carries no identity, the state of a
// manager with nothing loaded.
func (t Track) IsZero() bool { return t.ID == uuid.Nil }
