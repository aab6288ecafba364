package session

import (
	"fmt"

	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/player"
)

// Event is anything the dispatcher can apply to a session.
type Event interface {
	event()
}

// Media events.
type (
	MediaReady      struct{ Duration float64 }
	PositionChanged struct{ Position float64 }
	MediaPaused     struct{}
	MediaResumed    struct{}
	Ended           struct{}
	MediaExited     struct{}
	MediaFailed     struct{}
)

// Request events.
type (
	LoadRequested   struct{ Name string }
	DeleteRequested struct{ Name string }
	ClearRequested  struct{}
	UploadReceived  struct{ Files []*intake.File }
	// CommandRequested carries a transport command; Value is the argument of
	// the commands that take one.
	CommandRequested struct {
		Command Command
		Value   float64
	}
)

func (MediaReady) event() {}
func (PositionChanged) event() {}
func (MediaPaused) event() {}
func (MediaResumed) event() {}
func (Ended) event() {}
func (MediaExited) event() {}
func (MediaFailed) event() {}
func (LoadRequested) event() {}
func (DeleteRequested) event() {}
func (ClearRequested) event() {}
func (UploadReceived) event() {}
func (CommandRequested) event() {}

// Command names a transport command.
type Command int

const (
	PlayPause Command = iota
	Stop
	Next
	Prev
	SeekTo
	SeekPercent
	Skip
	SetRate
	StepRate
	SetVolume
	StepVolume
	ToggleMute
	ToggleLoop
	ToggleShuffle
	ToggleAutoplay
)

// FromMedia translates a backend observation.
func FromMedia(e player.Event) Event {
	switch e.Kind {
	case player.EventReady:
		return MediaReady{Duration: e.Value}
	case player.EventPosition:
		return PositionChanged{Position: e.Value}
	case player.EventPaused:
		return MediaPaused{}
	case player.EventResumed:
		return MediaResumed{}
	case player.EventEnded:
		return Ended{}
	case player.EventExited:
		return MediaExited{}
	case player.EventFailed:
		return MediaFailed{}
	default:
		return nil
	}
}

// Apply performs one event. It is the only entry point the dispatcher uses.
func (s *Session) Apply(e Event) error {
	switch e := e.(type) {
	case MediaReady:
		return s.OnReady(e.Duration)
	case PositionChanged:
		return s.OnPosition(e.Position)
	case MediaPaused:
		return s.OnPaused()
	case MediaResumed:
		return s.OnResumed()
	case Ended:
		return s.OnEnded()
	case MediaExited:
		return s.OnExited()
	case MediaFailed:
		return s.OnFailed()
	case LoadRequested:
		return s.Load(e.Name)
	case DeleteRequested:
		_, err := s.Delete(e.Name)
		return err
	case ClearRequested:
		_, err := s.ClearAll()
		return err
	case UploadReceived:
		_, err := s.Upload(e.Files)
		return err
	case CommandRequested:
		return s.command(e.Command, e.Value)
	default:
		return fmt.Errorf("unknown event %T", e)
	}
}

func (s *Session) command(c Command, v float64) error {
	switch c {
	case PlayPause:
		return s.PlayPause()
	case Stop:
		return s.Stop()
	case Next:
		return s.Next()
	case Prev:
		return s.Prev()
	case SeekTo:
		return s.SeekTo(v)
	case SeekPercent:
		return s.SeekPercent(v)
	case Skip:
		return s.Skip(v)
	case SetRate:
		return s.SetRate(v)
	case StepRate:
		return s.StepRate(v)
	case SetVolume:
		return s.SetVolume(v)
	case StepVolume:
		return s.StepVolume(v)
	case ToggleMute:
		return s.ToggleMute()
	case ToggleLoop:
		return s.ToggleLoop()
	case ToggleShuffle:
		return s.ToggleShuffle()
	case ToggleAutoplay:
		return s.ToggleAutoplay()
	default:
		return fmt.Errorf("unknown command %d", c)
	}
}
