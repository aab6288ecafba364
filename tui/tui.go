// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/offplay/offplay/internal/ui"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Play names a stored video to load on start.
	Play string
}

// Run builds a playback session, drives it from a Bubble Tea program and
// flushes it once the program exits.
func Run(options *Options) error {
	bridge := ui.NewBridge()

	ctx, err := session.NewPlayerContext(session.Options{Notifier: bridge})
	if err != nil {
		return err
	}
	style.SetTheme(ctx.Prefs.Theme())

	s := session.New(ctx)
	dispatcher := session.NewDispatcher(s, 32)
	dispatcher.Start(context.Background())

	bubble := newBubble(s, dispatcher, bridge, options)
	program := tea.NewProgram(bubble, tea.WithAltScreen())

	// a closed terminal sends SIGHUP, which Bubble Tea does not treat as a quit
	stopSignals := util.OnTermination(func(os.Signal) { program.Quit() })
	_, err = program.Run()
	stopSignals()

	bubble.unsubscribe()
	bridge.Close()
	dispatcher.Stop()
	return errors.Join(err, s.Close())
}
