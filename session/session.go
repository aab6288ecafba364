// Package session implements the playback state machine on top of the
// record store, the playlist projection and a media backend.
//
// The entry being played is tracked by name, and its index is re-resolved
// against the projection whenever it is rebuilt. A session whose entry
// disappears from the projection tears down to Idle.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/resource"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/util"
	"github.com/spf13/viper"
)

var ErrNotFound = errors.New("video not found")

// Transport bounds.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// settleTolerance is how far below the restored position a tick may land and
// still count as the seek having taken effect.
const settleTolerance = 2.0

type Session struct {
	ctx *PlayerContext

	mu        sync.Mutex
	state     State
	current   string
	record    *store.Record
	handle    *resource.Handle
	position  float64
	duration  float64
	rate      float64
	volume    float64
	muted     bool
	loop      bool
	shuffle   bool
	autoplay  bool
	ended     bool
	forcePlay bool
	// failed is set when the backend could not decode the loaded entry.
	failed bool
	// settling holds back position ticks until the restore seek lands.
	settling bool

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

// New starts an idle session seeded from preferences and config.
func New(ctx *PlayerContext) *Session {
	if ctx.rand == nil {
		ctx.rand = rand.IntN
	}

	return &Session{
		ctx:       ctx,
		rate:      util.Clamp(ctx.Prefs.Rate(), MinRate, MaxRate),
		volume:    util.Clamp(ctx.Prefs.Volume(), 0, 1),
		loop:      ctx.Prefs.Loop(),
		shuffle:   viper.GetBool(key.PlayerShuffle),
		autoplay:  viper.GetBool(key.PlayerAutoplay),
		observers: make(map[int]func(Snapshot)),
	}
}

// Context returns the collaborators the session was built with.
func (s *Session) Context() *PlayerContext { return s.ctx }

// Subscribe registers fn to receive a snapshot after every transition.
// The returned function unregisters it.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:      s.state,
		Current:    s.current,
		Index:      s.ctx.Playlist.IndexOf(s.current),
		Names:      s.ctx.Playlist.Names(),
		Position:   s.position,
		Duration:   s.duration,
		Rate:       s.rate,
		Volume:     s.volume,
		Muted:      s.muted,
		Loop:       s.loop,
		Shuffle:    s.shuffle,
		Autoplay:   s.autoplay,
		Ended:      s.ended,
		Failed:     s.failed,
		HandleOpen: s.handle != nil && !s.handle.Released(),
	}
}

// do runs fn under the lock, then publishes the resulting snapshot.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	err := fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return err
}

func (s *Session) publish(snap Snapshot) {
	s.obsMu.Lock()
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (s *Session) transportState() string {
	if s.state == Playing {
		return constant.StatePlaying
	}
	return constant.StatePaused
}

// flushLocked commits the live transport state of the entry being played.
// Nothing is written before the stored position has been restored.
func (s *Session) flushLocked() {
	if s.current == "" || !s.state.Ready() || s.failed {
		return
	}
	_ = s.ctx.Syncer.Flush(s.position, s.transportState())
}

func (s *Session) releaseLocked() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Release(); err != nil {
		log.Warn(err)
	}
	s.handle = nil
}

// teardownLocked drops the loaded entry and returns to Idle.
func (s *Session) teardownLocked() {
	s.ctx.Syncer.Detach()
	s.releaseLocked()
	if err := s.ctx.Media.Unload(); err != nil {
		log.Warnf("unload media: %v", err)
	}

	s.state = Idle
	s.current = ""
	s.record = nil
	s.position = 0
	s.duration = 0
	s.ended = false
	s.forcePlay = false
	s.failed = false
	s.settling = false
}

// refreshLocked rebuilds the projection and re-resolves the current entry.
func (s *Session) refreshLocked() {
	if err := s.ctx.Playlist.Refresh(); err != nil {
		log.Errorf("refresh playlist: %v", err)
		return
	}

	if s.current != "" && !s.ctx.Playlist.Contains(s.current) {
		log.Infof("%q left the playlist, stopping", s.current)
		s.teardownLocked()
	}
}

// Refresh rebuilds the projection after an outside change to the store.
func (s *Session) Refresh() error {
	return s.do(func() error {
		s.refreshLocked()
		return nil
	})
}

// Load switches playback to name.
func (s *Session) Load(name string) error {
	return s.do(func() error { return s.loadLocked(name, false) })
}

func (s *Session) loadLocked(name string, forcePlay bool) error {
	s.flushLocked()
	s.ctx.Syncer.Detach()
	s.releaseLocked()

	found, err := s.ctx.Store.Get(name)
	if err != nil {
		log.Errorf("load %q: %v", name, err)
		s.teardownLocked()
		return err
	}

	rec, ok := found.Get()
	if !ok {
		s.teardownLocked()
		s.refreshLocked()
		s.notifyNotFound(name)
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	handle, err := resource.OpenIn(s.ctx.tempDir, rec.Name, rec.Blob)
	if err != nil {
		s.teardownLocked()
		return err
	}
	rec.Blob = nil

	s.handle = handle
	s.current = name
	s.record = rec
	s.state = Loading
	s.position = 0
	s.duration = 0
	s.ended = false
	s.forcePlay = forcePlay
	s.failed = false
	s.settling = false

	if err := s.ctx.Media.Load(handle.Path(), name); err != nil {
		log.Errorf("media load %q: %v", name, err)
		s.teardownLocked()
		return err
	}

	s.ctx.Syncer.Attach(name)
	return nil
}

func (s *Session) notifyNotFound(name string) {
	msg := constant.NoticeNotFound
	if closest, ok := s.ctx.Playlist.Closest(name).Get(); ok && closest != name {
		msg += " " + fmt.Sprintf(constant.NoticeDidYouMeanHint, closest)
	}
	if err := s.ctx.Notifier.Notify(msg); err != nil {
		log.Warn(err)
	}
}

// OnReady restores the stored position and transport state once the media
// duration is known.
func (s *Session) OnReady(duration float64) error {
	return s.do(func() error {
		if s.state != Loading {
			return nil
		}

		s.duration = duration
		s.position = 0
		if lp := s.record.LastPosition; lp > 0 && lp < duration {
			s.position = lp
		}

		media := s.ctx.Media
		if err := media.Seek(s.position); err != nil {
			log.Warnf("restore position: %v", err)
		} else {
			s.settling = s.position > 0
		}
		if err := media.SetRate(s.rate); err != nil {
			log.Warnf("restore rate: %v", err)
		}
		if err := media.SetVolume(s.volume); err != nil {
			log.Warnf("restore volume: %v", err)
		}
		if err := media.SetMute(s.muted); err != nil {
			log.Warnf("restore mute: %v", err)
		}

		s.state = Paused
		if s.record.Playing() || s.forcePlay {
			s.playLocked()
		}
		s.forcePlay = false
		return nil
	})
}

// playLocked resumes; a backend that refuses leaves the session paused.
func (s *Session) playLocked() {
	if err := s.ctx.Media.Play(); err != nil {
		log.Warnf("resume %q: %v", s.current, err)
		s.state = Paused
		return
	}
	s.state = Playing
	s.ended = false
}

// OnPosition feeds one clock tick to the synchronizer.
func (s *Session) OnPosition(position float64) error {
	return s.do(func() error {
		// late ticks after the end must not undo the rewind
		if !s.state.Ready() || s.ended || s.failed {
			return nil
		}
		if s.settling {
			if position < s.position-settleTolerance {
				return nil
			}
			s.settling = false
		}
		s.position = position
		s.ctx.Syncer.Observe(position, s.transportState())
		return nil
	})
}

// OnPaused handles a pause that originated in the backend.
func (s *Session) OnPaused() error {
	return s.do(func() error {
		if s.state != Playing {
			return nil
		}
		s.state = Paused
		s.flushLocked()
		return nil
	})
}

// OnResumed handles a resume that originated in the backend.
func (s *Session) OnResumed() error {
	return s.do(func() error {
		if s.state != Paused || s.failed {
			return nil
		}
		s.state = Playing
		s.ended = false
		s.ctx.Syncer.Observe(s.position, constant.StatePlaying)
		return nil
	})
}

// OnEnded resets the stored position so a finished video starts over next
// time, then loops, advances or stops.
func (s *Session) OnEnded() error {
	return s.do(func() error {
		if !s.state.Ready() || s.failed {
			return nil
		}

		s.ctx.Syncer.Cancel()
		if err := s.ctx.Store.UpdateMetadata(s.current, store.Metadata{
			LastPosition:  0,
			PlaybackState: constant.StatePaused,
		}); err != nil {
			log.Errorf("reset %q after end: %v", s.current, err)
		}

		s.position = 0
		switch {
		case s.loop:
			if err := s.ctx.Media.Seek(0); err != nil {
				log.Warn(err)
			}
			s.playLocked()
			return nil
		case s.autoplay:
			s.state = Paused
			return s.advanceLocked(1, true)
		default:
			s.state = Paused
			s.ended = true
			return nil
		}
	})
}

// OnFailed handles a file the backend could not play. The entry stays
// selected in a paused state with its stored position untouched; PlayPause
// retries the load.
func (s *Session) OnFailed() error {
	return s.do(func() error {
		if s.state == Idle {
			return nil
		}

		if s.state == Playing {
			s.state = Paused
			s.flushLocked()
		}
		log.Warnf("cannot play %q", s.current)

		s.ctx.Syncer.Detach()
		s.releaseLocked()
		s.state = Paused
		if s.record != nil && s.duration == 0 {
			s.position = s.record.LastPosition
		}
		s.failed = true
		s.settling = false
		s.ended = false
		s.forcePlay = false
		return nil
	})
}

// OnExited handles the backend going away underneath the session.
func (s *Session) OnExited() error {
	return s.do(func() error {
		if s.state.Ready() {
			s.state = Paused
		}
		s.flushLocked()
		s.teardownLocked()
		return nil
	})
}

// Next advances to the following entry, or a random one when shuffling.
func (s *Session) Next() error {
	return s.do(func() error { return s.advanceLocked(1, s.autoplay) })
}

// Prev retreats to the preceding entry, or a random one when shuffling.
func (s *Session) Prev() error {
	return s.do(func() error { return s.advanceLocked(-1, s.autoplay) })
}

func (s *Session) advanceLocked(step int, forcePlay bool) error {
	n := s.ctx.Playlist.Len()
	if n == 0 {
		return nil
	}

	current := s.ctx.Playlist.IndexOf(s.current)
	var idx int
	switch {
	case s.shuffle && n == 1:
		idx = 0
	case s.shuffle:
		idx = current
		for idx == current {
			idx = s.ctx.rand(n)
		}
	case current < 0 && step < 0:
		idx = n - 1
	default:
		idx = (current + step + n) % n
	}

	name, ok := s.ctx.Playlist.At(idx).Get()
	if !ok {
		return nil
	}
	return s.loadLocked(name, forcePlay)
}

// PlayPause toggles the transport. From Idle it starts the first entry; after
// the end of media it restarts from the beginning.
func (s *Session) PlayPause() error {
	return s.do(func() error {
		switch s.state {
		case Idle:
			if name, ok := s.ctx.Playlist.At(0).Get(); ok {
				return s.loadLocked(name, true)
			}
		case Playing:
			if err := s.ctx.Media.Pause(); err != nil {
				return err
			}
			s.state = Paused
			s.flushLocked()
		case Paused:
			if s.failed {
				return s.loadLocked(s.current, true)
			}
			if s.ended {
				s.position = 0
				if err := s.ctx.Media.Seek(0); err != nil {
					log.Warn(err)
				}
			}
			s.playLocked()
			if s.state == Playing {
				s.ctx.Syncer.Observe(s.position, constant.StatePlaying)
			}
		}
		return nil
	})
}

// Stop pauses and rewinds, keeping the entry loaded.
func (s *Session) Stop() error {
	return s.do(func() error {
		if !s.state.Ready() || s.failed {
			return nil
		}
		if err := s.ctx.Media.Pause(); err != nil {
			log.Warn(err)
		}
		if err := s.ctx.Media.Seek(0); err != nil {
			log.Warn(err)
		}
		s.state = Paused
		s.position = 0
		s.ended = false
		s.flushLocked()
		return nil
	})
}

// SeekTo jumps to an absolute position and commits it at once.
func (s *Session) SeekTo(seconds float64) error {
	return s.do(func() error { return s.seekLocked(seconds, true) })
}

// SeekPercent jumps to a fraction of the duration given in percent.
func (s *Session) SeekPercent(percent float64) error {
	return s.do(func() error {
		if s.duration <= 0 {
			return nil
		}
		return s.seekLocked(util.Clamp(percent, 0, 100)/100*s.duration, true)
	})
}

// Skip moves relative to the current position.
func (s *Session) Skip(delta float64) error {
	return s.do(func() error { return s.seekLocked(s.position+delta, false) })
}

func (s *Session) seekLocked(seconds float64, flush bool) error {
	if !s.state.Ready() || s.failed {
		return nil
	}

	seconds = max(seconds, 0)
	if s.duration > 0 {
		seconds = min(seconds, s.duration)
	}

	if err := s.ctx.Media.Seek(seconds); err != nil {
		return err
	}
	s.position = seconds
	s.ended = false
	s.settling = false

	if flush {
		s.flushLocked()
	} else {
		s.ctx.Syncer.Observe(seconds, s.transportState())
	}
	return nil
}

// SetRate sets and remembers the playback rate.
func (s *Session) SetRate(rate float64) error {
	return s.do(func() error { return s.setRateLocked(rate) })
}

// StepRate changes the playback rate by delta.
func (s *Session) StepRate(delta float64) error {
	return s.do(func() error { return s.setRateLocked(s.rate + delta) })
}

func (s *Session) setRateLocked(rate float64) error {
	s.rate = util.Clamp(rate, MinRate, MaxRate)
	if s.state.Ready() {
		if err := s.ctx.Media.SetRate(s.rate); err != nil {
			log.Warn(err)
		}
	}
	return s.ctx.Prefs.SetRate(s.rate)
}

// SetVolume sets and remembers the linear volume.
func (s *Session) SetVolume(volume float64) error {
	return s.do(func() error { return s.setVolumeLocked(volume) })
}

func (s *Session) StepVolume(delta float64) error {
	return s.do(func() error { return s.setVolumeLocked(s.volume + delta) })
}

func (s *Session) setVolumeLocked(volume float64) error {
	s.volume = util.Clamp(volume, 0, 1)
	if s.state.Ready() {
		if err := s.ctx.Media.SetVolume(s.volume); err != nil {
			log.Warn(err)
		}
	}
	return s.ctx.Prefs.SetVolume(s.volume)
}

func (s *Session) ToggleMute() error {
	return s.do(func() error {
		s.muted = !s.muted
		if s.state.Ready() {
			return s.ctx.Media.SetMute(s.muted)
		}
		return nil
	})
}

func (s *Session) ToggleLoop() error {
	return s.do(func() error {
		s.loop = !s.loop
		return s.ctx.Prefs.SetLoop(s.loop)
	})
}

func (s *Session) ToggleShuffle() error {
	return s.do(func() error {
		s.shuffle = !s.shuffle
		return nil
	})
}

func (s *Session) ToggleAutoplay() error {
	return s.do(func() error {
		s.autoplay = !s.autoplay
		return nil
	})
}

// Delete removes name after confirmation. Deleting the entry being played
// tears the session down. It reports whether anything was deleted.
func (s *Session) Delete(name string) (bool, error) {
	ok, err := s.ctx.Notifier.Confirm(fmt.Sprintf(constant.NoticeConfirmDelete, name), constant.LabelConfirm, constant.LabelCancel)
	if err != nil || !ok {
		return false, err
	}

	return true, s.do(func() error {
		if name == s.current {
			s.teardownLocked()
		}
		if err := s.ctx.Store.Delete(name); err != nil {
			log.Errorf("delete %q: %v", name, err)
			return err
		}
		s.refreshLocked()
		return nil
	})
}

// ClearAll removes every record after confirmation.
func (s *Session) ClearAll() (bool, error) {
	ok, err := s.ctx.Notifier.Confirm(constant.NoticeConfirmClear, constant.LabelDeleteAll, constant.LabelCancel)
	if err != nil || !ok {
		return false, err
	}

	return true, s.do(func() error {
		s.teardownLocked()
		if err := s.ctx.Store.Clear(); err != nil {
			log.Errorf("clear: %v", err)
			return err
		}
		s.refreshLocked()
		return nil
	})
}

// Upload stores every video in files, rejecting the rest one by one with a
// notice. The first accepted file starts playing when intake.play_first is set.
func (s *Session) Upload(files []*intake.File) ([]string, error) {
	accepted, rejected := intake.Partition(files)
	for _, err := range rejected {
		log.Info(err)
		if nerr := s.ctx.Notifier.Notify(fmt.Sprintf("%s %v", constant.NoticeUnsupported, err)); nerr != nil {
			log.Warn(nerr)
		}
	}

	var stored []string
	err := s.do(func() error {
		var errs []error
		for _, f := range accepted {
			if err := s.ctx.Store.Put(&store.Record{Name: f.Name, Blob: f.Data, MIME: f.MIME}); err != nil {
				log.Errorf("store %q: %v", f.Name, err)
				errs = append(errs, err)
				continue
			}
			stored = append(stored, f.Name)
		}

		s.refreshLocked()

		if len(stored) > 0 && viper.GetBool(key.IntakePlayFirst) {
			if err := s.loadLocked(stored[0], false); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	return stored, err
}

// Close flushes the entry being played, releases its handle and closes the
// context.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked()
	s.ctx.Syncer.Detach()
	s.releaseLocked()
	s.state = Idle
	return s.ctx.Close()
}
