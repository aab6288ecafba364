package session

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/notify"
	"github.com/offplay/offplay/player"
	"github.com/offplay/offplay/playlist"
	"github.com/offplay/offplay/prefs"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/syncer"
	"github.com/offplay/offplay/where"
)

// Options select the collaborators of a PlayerContext. Nil fields get the
// production defaults.
type Options struct {
	// Dir is the database directory, where.Database() by default.
	Dir string
	// FS backs the database, the OS filesystem by default.
	FS       vfs.FS
	Clock    clockwork.Clock
	Media    player.Media
	Notifier notify.Notifier
	Prefs    *prefs.Prefs
	// TempDir receives resource handles, where.Temp() by default.
	TempDir string
	// Rand picks shuffle indices in [0, n).
	Rand func(n int) int
}

// PlayerContext owns everything a session works against. It is built once
// and closed once.
type PlayerContext struct {
	Store    *store.Store
	Prefs    *prefs.Prefs
	Playlist *playlist.Projection
	Syncer   *syncer.Syncer
	Media    player.Media
	Notifier notify.Notifier

	tempDir string
	rand    func(n int) int
}

// NewPlayerContext opens the store and wires the projection and synchronizer
// to it.
func NewPlayerContext(opts Options) (*PlayerContext, error) {
	if opts.Dir == "" {
		opts.Dir = where.Database()
	}
	if opts.TempDir == "" {
		opts.TempDir = where.Temp()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Notifier == nil {
		opts.Notifier = &notify.Survey{}
	}

	if opts.Prefs == nil {
		p, err := prefs.Load()
		if err != nil {
			return nil, fmt.Errorf("load preferences: %w", err)
		}
		opts.Prefs = p
	}

	st, err := store.Open(opts.Dir, &store.Options{FS: opts.FS, Clock: opts.Clock})
	if err != nil {
		return nil, err
	}

	if opts.Media == nil {
		opts.Media = player.NewMPV()
	}

	pc := &PlayerContext{
		Store:    st,
		Prefs:    opts.Prefs,
		Playlist: playlist.New(st),
		Syncer:   syncer.New(st, syncer.Options{Clock: opts.Clock}),
		Media:    opts.Media,
		Notifier: opts.Notifier,
		tempDir:  opts.TempDir,
		rand:     opts.Rand,
	}

	if err := pc.Playlist.Refresh(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return pc, nil
}

// Close stops the media backend and the store.
func (pc *PlayerContext) Close() error {
	return errors.Join(pc.Media.Close(), pc.Store.Close())
}
