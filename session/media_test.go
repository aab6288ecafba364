package session

import (
	"errors"
	"sync"

	"github.com/offplay/offplay/player"
)

// fakeMedia records transport calls instead of driving a real backend.
type fakeMedia struct {
	mu       sync.Mutex
	calls    []string
	loaded   string
	paused   bool
	position float64
	rate     float64
	volume   float64
	muted    bool
	playErr  error
	events   chan player.Event
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{paused: true, events: make(chan player.Event, 16)}
}

func (f *fakeMedia) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeMedia) Load(path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("load")
	f.loaded = path
	f.paused = true
	f.position = 0
	return nil
}

func (f *fakeMedia) Unload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("unload")
	f.loaded = ""
	return nil
}

func (f *fakeMedia) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("play")
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}

func (f *fakeMedia) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pause")
	f.paused = true
	return nil
}

func (f *fakeMedia) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("seek")
	f.position = seconds
	return nil
}

func (f *fakeMedia) SetRate(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
	return nil
}

func (f *fakeMedia) SetVolume(volume float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
	return nil
}

func (f *fakeMedia) SetMute(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	return nil
}

func (f *fakeMedia) Position() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakeMedia) Duration() (float64, error) {
	return 0, errors.New("not tracked")
}

func (f *fakeMedia) Paused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, nil
}

func (f *fakeMedia) Events() <-chan player.Event { return f.events }

func (f *fakeMedia) Close() error { return nil }

func (f *fakeMedia) snapshot() (loaded string, paused bool, position float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, f.paused, f.position
}
