// SPDX-License-Identifier: EPL-2.0

package player

// EventKind classifies playback notifications.
type EventKind int

const (
	// EventTrackStarted fires when a source becomes audible, including
	// the incoming side of a crossfade.
	EventTrackStarted EventKind = iota
	// EventTrackFinished fires when a source plays to its end.
	EventTrackFinished
	// EventTrackSkipped fires when a source is abandoned because it
	// failed; Err carries the reason.
	EventTrackSkipped
	// EventStateChanged fires on transport transitions; State carries
	// the new value.
	EventStateChanged
	// EventQueueEnded fires when advancing found nothing left to play.
	EventQueueEnded
)

func (k EventKind) String() string {
	switch k {
	case EventTrackStarted:
		return "track started"
	case EventTrackFinished:
		return "track finished"
	case EventTrackSkipped:
		return "track skipped"
	case EventStateChanged:
		return "state changed"
	case EventQueueEnded:
		return "queue ended"
	default:
		return "unknown"
	}
}

// Event is an asynchronous playback notification. Callback-side events
// cross to the control goroutine through a fixed ring; subscribers see
// both sides merged in order of handling.
type Event struct {
	Kind  EventKind
	Track Track
	State PlaybackState
	Err   error
}
