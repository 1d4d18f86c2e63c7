// SPDX-License-Identifier: EPL-2.0

package player

import "fmt"

// PlaybackState is the transport state. Exactly one value is live at a
// time; transitions are serialized through the manager and never set by
// the audio callback.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
	Paused
	Loading
)

func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}

// transitionAllowed enumerates the legal transport transitions.
// Same-state moves are no-ops handled by the callers before validation.
func transitionAllowed(from, to PlaybackState) bool {
	switch from {
	case Stopped:
		return to == Playing || to == Loading
	case Playing:
		return to == Paused || to == Stopped
	case Paused:
		return to == Playing || to == Stopped
	case Loading:
		return to == Playing || to == Stopped
	default:
		return false
	}
}

// ShuffleMode selects how the next source-tier track is chosen. It is
// an ordering policy applied at advance time, never a queue mutation,
// so switching back to ShuffleOff resumes the original order.
type ShuffleMode int

const (
	ShuffleOff ShuffleMode = iota
	// ShuffleRandom picks uniformly from the source tier.
	ShuffleRandom
	// ShuffleSmart picks uniformly from the source tier after excluding
	// recently played tracks and deprioritizing recently heard artists.
	ShuffleSmart
)

func (m ShuffleMode) String() string {
	switch m {
	case ShuffleOff:
		return "off"
	case ShuffleRandom:
		return "random"
	case ShuffleSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// ParseShuffleMode maps a configuration name to a shuffle mode.
func ParseShuffleMode(name string) (ShuffleMode, error) {
	switch name {
	case "off", "":
		return ShuffleOff, nil
	case "random":
		return ShuffleRandom, nil
	case "smart":
		return ShuffleSmart, nil
	}
	return 0, fmt.Errorf("%w: shuffle %q", ErrUnknownMode, name)
}

// RepeatMode governs what happens when the queue runs out or the
// listener advances past the last track.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// ParseRepeatMode maps a configuration name to a repeat mode.
func ParseRepeatMode(name string) (RepeatMode, error) {
	switch name {
	case "off", "":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	}
	return 0, fmt.Errorf("%w: repeat %q", ErrUnknownMode, name)
}
