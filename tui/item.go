package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
)

// listItem is one playlist entry. record is nil until metadata has been read.
type listItem struct {
	name   string
	record *store.Record
	state  session.State
}

func (t *listItem) current() bool {
	return t.state != session.Idle
}

func (t *listItem) getMark() string {
	mark := lipgloss.NewStyle().Bold(true).Foreground(style.Current().Accent)
	switch t.state {
	case session.Playing:
		return mark.Render(icon.Get(icon.Play))
	case session.Paused, session.Loading:
		return mark.Render(icon.Get(icon.Pause))
	default:
		return ""
	}
}

func (t *listItem) Title() string {
	if t.current() {
		return fmt.Sprintf("%s %s", t.name, t.getMark())
	}
	return t.name
}

func (t *listItem) Description() string {
	if t.record == nil {
		return ""
	}

	faint := lipgloss.NewStyle().Foreground(style.Current().Faint)
	parts := []string{faint.Render(humanize.Bytes(uint64(max(t.record.Size, 0))))}

	if lp := t.record.LastPosition; lp > 0 && !t.current() {
		resume := lipgloss.NewStyle().Foreground(style.Current().Warning)
		parts = append(parts, resume.Render("resume at "+util.FormatTime(lp)))
	}

	if t.record.Created > 0 {
		parts = append(parts, faint.Render("added "+humanize.Time(time.UnixMilli(t.record.Created))))
	}

	return strings.Join(parts, " • ")
}

func (t *listItem) FilterValue() string {
	return t.name
}
