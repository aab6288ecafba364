// Package player defines the media backend the playback session drives.
// The primary implementation targets mpv via its JSON-IPC interface.
package player

// EventKind classifies what the backend observed.
type EventKind int

const (
	// EventReady fires once per load, when the duration becomes known.
	EventReady EventKind = iota
	EventPosition
	EventPaused
	EventResumed
	EventEnded
	// EventExited means the backend process went away; the next Load starts a new one.
	EventExited
	// EventFailed means the loaded file could not be decoded or opened.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventPosition:
		return "position"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventEnded:
		return "ended"
	case EventExited:
		return "exited"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event carries the duration for EventReady and the position for EventPosition.
type Event struct {
	Kind  EventKind
	Value float64
}

// Media is a single-item transport, the equivalent of one video element.
type Media interface {
	// Load opens the file at path in a paused state. Readiness is signaled
	// asynchronously with EventReady.
	Load(path, title string) error

	// Unload drops the current file and keeps the backend idle.
	Unload() error

	Play() error
	Pause() error

	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error

	SetRate(rate float64) error

	// SetVolume takes a linear volume in [0, 1].
	SetVolume(volume float64) error

	SetMute(muted bool) error

	Position() (float64, error)
	Duration() (float64, error)
	Paused() (bool, error)

	// Events delivers observations in the order the backend produced them.
	Events() <-chan Event

	// Close terminates the backend and releases all associated system resources.
	Close() error
}
