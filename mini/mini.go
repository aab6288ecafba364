// Package mini implements a prompt-driven player for terminals where the full interface is unwanted.
package mini

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
)

var pageSize = 10

type Options struct {
	// Play names a stored video to load on start.
	Play string
}

type mini struct {
	width, height int

	state         state
	statesHistory util.History[state]

	session *session.Session
}

func newMini(s *session.Session) *mini {
	return &mini{
		statesHistory: util.History[state]{Limit: 16},
		session:       s,
	}
}

func (m *mini) previousState() {
	m.setState(m.statesHistory.Back(libraryState))
}

func (m *mini) setState(s state) {
	m.state = s
}

func (m *mini) newState(s state) {
	if m.state == s {
		return
	}

	if !lo.Contains([]state{uploadState}, m.state) {
		m.statesHistory.Push(m.state)
	}

	m.setState(s)
}

// Run drives a session from survey menus until the user quits, then flushes it.
func Run(options *Options) error {
	ctx, err := session.NewPlayerContext(session.Options{})
	if err != nil {
		return err
	}

	s := session.New(ctx)
	dispatcher := session.NewDispatcher(s, 32)
	dispatcher.Start(context.Background())

	shutdown := sync.OnceValue(func() error {
		dispatcher.Stop()
		return s.Close()
	})

	// survey blocks on stdin, so a signal has to flush from here and exit
	stopSignals := util.OnTermination(func(sig os.Signal) {
		log.Warnf("received %s, saving playback state", sig)
		if err := shutdown(); err != nil {
			log.Error(err)
		}
		os.Exit(1)
	})

	m := newMini(s)
	m.state = libraryState

	if w, h, err := util.TerminalSize(); err == nil {
		m.width, m.height = w, h
		pageSize = max(h-4, 5)
	}

	if options.Play != "" {
		if err := s.Load(options.Play); err == nil {
			m.newState(playingState)
		}
	}

	err = m.loop()
	stopSignals()
	return errors.Join(err, shutdown())
}

func (m *mini) loop() error {
	for m.state != quitState {
		if err := m.handleState(); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (m *mini) handleState() error {
	switch m.state {
	case libraryState:
		return m.handleLibraryState()
	case playingState:
		return m.handlePlayingState()
	case uploadState:
		return m.handleUploadState()
	}
	return nil
}
