// Package ui bridges the playback core's notification and confirmation calls
// into Bubble Tea messages.
package ui

import (
	"errors"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/style"
)

var ErrClosed = errors.New("ui closed")

// NotificationLifetime is how long a notice stays on screen.
const NotificationLifetime = 3 * time.Second

// NotificationMsg carries a notice into the program.
type NotificationMsg string

// ClearNotificationMsg resets the notice it was scheduled for.
type ClearNotificationMsg struct{ seq int }

// ConfirmMsg asks the user a yes/no question on behalf of a blocked caller.
type ConfirmMsg struct {
	Message     string
	Affirmative string
	Negative    string

	reply chan bool
}

// Answer unblocks the caller. Only the first answer counts.
func (c ConfirmMsg) Answer(ok bool) {
	select {
	case c.reply <- ok:
	default:
	}
}

// Bridge implements notify.Notifier for a running program. Notify never
// blocks; Confirm blocks until the user answers or the bridge is closed.
type Bridge struct {
	notices  chan string
	confirms chan ConfirmMsg
	done     chan struct{}
	once     sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		notices:  make(chan string, 8),
		confirms: make(chan ConfirmMsg),
		done:     make(chan struct{}),
	}
}

func (b *Bridge) Notify(message string) error {
	select {
	case b.notices <- message:
	default:
		log.Warnf("notice dropped: %s", message)
	}
	return nil
}

func (b *Bridge) Confirm(message, affirmative, negative string) (bool, error) {
	req := ConfirmMsg{
		Message:     message,
		Affirmative: affirmative,
		Negative:    negative,
		reply:       make(chan bool, 1),
	}

	select {
	case b.confirms <- req:
	case <-b.done:
		return false, ErrClosed
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-b.done:
		return false, ErrClosed
	}
}

// Wait returns a command that delivers the next notice or confirmation.
// Re-issue it after every delivery.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-b.notices:
			return NotificationMsg(n)
		case c := <-b.confirms:
			return c
		case <-b.done:
			return nil
		}
	}
}

// Close fails pending and future confirmations.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// Model holds the notice currently on screen.
type Model struct {
	notification string
	seq          int
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(NotificationLifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update shows new notices and clears them once their own timer fires.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notification = string(msg)
		m.seq++
		return clearAfter(m.seq)
	case ClearNotificationMsg:
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

func (m *Model) Notification() string { return m.notification }

// View appends the current notice to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + style.Fg(style.Current().Warning)(m.notification)
	return strings.Join(lines, "\n")
}
