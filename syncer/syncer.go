// Package syncer reconciles live playback position into the record store
// with a throttle and a trailing debounce.
//
// An observation commits immediately when the previous commit is older than
// the throttle interval. Otherwise it replaces the payload of a single
// deferred commit that fires after the debounce delay. Flush bypasses both.
package syncer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/store"
	"github.com/spf13/viper"
)

// Committer persists metadata for one record.
type Committer interface {
	UpdateMetadata(name string, meta store.Metadata) error
}

// Options configure a Syncer. Zero durations fall back to config.
type Options struct {
	Clock    clockwork.Clock
	Interval time.Duration
	Delay    time.Duration
}

type Syncer struct {
	committer Committer
	clock     clockwork.Clock
	interval  time.Duration
	delay     time.Duration

	mu         sync.Mutex
	name       string
	lastCommit time.Time
	timer      clockwork.Timer
	pending    store.Metadata
	generation uint64
}

// New returns a detached Syncer.
func New(committer Committer, opts Options) *Syncer {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Duration(viper.GetInt(key.SyncThrottleMs)) * time.Millisecond
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Duration(viper.GetInt(key.SyncDebounceMs)) * time.Millisecond
	}

	return &Syncer{
		committer: committer,
		clock:     opts.Clock,
		interval:  opts.Interval,
		delay:     opts.Delay,
	}
}

// Attach points the Syncer at a new record, dropping any deferred commit
// and resetting the throttle window.
func (s *Syncer) Attach(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.name = name
	s.lastCommit = time.Time{}
}

// Detach drops any deferred commit and stops attributing writes.
func (s *Syncer) Detach() {
	s.Attach("")
}

// Name returns the attached record, or "".
func (s *Syncer) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Observe records one position tick.
func (s *Syncer) Observe(position float64, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.name == "" {
		return
	}

	meta := store.Metadata{LastPosition: position, PlaybackState: state}
	now := s.clock.Now()
	if s.lastCommit.IsZero() || now.Sub(s.lastCommit) > s.interval {
		s.cancelLocked()
		s.commitLocked(meta)
		return
	}

	s.pending = meta
	if s.timer != nil {
		s.timer.Reset(s.delay)
		return
	}

	gen := s.generation
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Flush commits the given state now, replacing any deferred commit.
func (s *Syncer) Flush(position float64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.name == "" {
		return nil
	}

	s.cancelLocked()
	return s.commitLocked(store.Metadata{LastPosition: position, PlaybackState: state})
}

// Cancel drops a deferred commit without writing it.
func (s *Syncer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Syncer) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// superseded by a flush, cancel or switch
	if gen != s.generation || s.name == "" {
		return
	}

	s.timer = nil
	s.generation++
	s.commitLocked(s.pending)
}

func (s *Syncer) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *Syncer) commitLocked(meta store.Metadata) error {
	s.lastCommit = s.clock.Now()
	if err := s.committer.UpdateMetadata(s.name, meta); err != nil {
		log.Warnf("metadata commit for %q failed: %v", s.name, err)
		return err
	}
	return nil
}
