package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/offplay/offplay/session"
)

// Init starts listening for session snapshots and bridge requests, and loads
// the video named on the command line.
func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.waitForSnapshot(), b.bridge.Wait()}
	if b.options.Play != "" {
		cmds = append(cmds, b.post(session.LoadRequested{Name: b.options.Play}))
	}
	return tea.Batch(cmds...)
}
