// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTrackLoaded is returned by operations that need a current
	// track when the transport has nothing loaded.
	ErrNoTrackLoaded = errors.New("player: no track loaded")
	// ErrQueueEmpty is returned by Play when neither a loaded source
	// nor a queued track is available.
	ErrQueueEmpty = errors.New("player: queue is empty")
	// ErrInvalidSeekPosition is returned when a seek target lies
	// outside the current track.
	ErrInvalidSeekPosition = errors.New("player: seek position out of range")
	// ErrIndexOutOfBounds is returned by queue operations addressing a
	// position that does not exist.
	ErrIndexOutOfBounds = errors.New("player: index out of bounds")
	// ErrInvalidOperation is returned for an illegal transport state
	// transition.
	ErrInvalidOperation = errors.New("player: invalid state transition")
	// ErrUnknownMode is returned when parsing an unrecognized shuffle
	// or repeat mode name.
	ErrUnknownMode = errors.New("player: unknown mode name")
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("player: manager is closed")
)

// SourceError wraps a decode-layer failure with the track it occurred
// on.
type SourceError struct {
	Track Track
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("player: source %q: %v", e.Track.Title, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
