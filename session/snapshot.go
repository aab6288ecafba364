package session

// State is the session's position in the playback state machine.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Ready reports whether media is loaded and its duration known.
func (s State) Ready() bool {
	return s == Playing || s == Paused
}

// Snapshot is a copy of the session state for display.
type Snapshot struct {
	State    State
	Current  string
	Index    int
	Names    []string
	Position float64
	Duration float64
	Rate     float64
	Volume   float64
	Muted    bool
	Loop     bool
	Shuffle  bool
	Autoplay bool
	// Ended is set after end-of-media when neither loop nor autoplay took over.
	Ended bool
	// Failed is set when the current entry could not be decoded.
	Failed bool
	// HandleOpen reports whether a resource handle is currently held.
	HandleOpen bool
}

// Progress returns the position as a fraction of the duration.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(max(s.Position/s.Duration, 0), 1)
}
