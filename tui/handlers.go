package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/internal/ui"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

var errDispatcherStopped = errors.New("player is shutting down")

func (b *statefulBubble) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return <-b.snapshots
	}
}

// post queues e without blocking Update.
func (b *statefulBubble) post(e session.Event) tea.Cmd {
	return func() tea.Msg {
		if !b.dispatcher.Post(e) {
			return errDispatcherStopped
		}
		return nil
	}
}

func (b *statefulBubble) command(c session.Command, value float64) tea.Cmd {
	return b.post(session.CommandRequested{Command: c, Value: value})
}

// applySnapshot stores snap and rebuilds the playlist when its contents or
// the entry being played changed.
func (b *statefulBubble) applySnapshot(snap session.Snapshot) tea.Cmd {
	prev := b.snapshot
	b.snapshot = snap

	if slices.Equal(prev.Names, snap.Names) && prev.Current == snap.Current && prev.State == snap.State && len(b.playlistC.Items()) > 0 {
		return nil
	}

	b.reloadRecords()
	return b.setItems()
}

func (b *statefulBubble) reloadRecords() {
	records, err := b.session.Context().Store.List()
	if err != nil {
		log.Warnf("list records: %v", err)
		return
	}
	b.records = lo.KeyBy(records, func(r *store.Record) string { return r.Name })
}

// visibleNames applies the search query to the projection.
func (b *statefulBubble) visibleNames() []string {
	if b.query == "" {
		return b.snapshot.Names
	}
	return b.session.Context().Playlist.Filter(b.query)
}

func (b *statefulBubble) setItems() tea.Cmd {
	selected := b.selectedName()

	names := b.visibleNames()
	items := make([]list.Item, len(names))
	cursor := -1
	for i, name := range names {
		item := &listItem{name: name, record: b.records[name]}
		if name == b.snapshot.Current {
			item.state = b.snapshot.State
		}
		if name == selected {
			cursor = i
		}
		items[i] = item
	}

	cmd := b.playlistC.SetItems(items)
	if cursor >= 0 {
		b.playlistC.Select(cursor)
	}

	if b.query != "" {
		b.playlistC.Title = fmt.Sprintf("Library - %q", b.query)
	} else {
		b.playlistC.Title = "Library"
	}
	return cmd
}

func (b *statefulBubble) selectedName() string {
	if item, ok := b.playlistC.SelectedItem().(*listItem); ok {
		return item.name
	}
	return ""
}

// upload reads every file matching pattern and hands the batch to the session.
func (b *statefulBubble) upload(pattern string) tea.Cmd {
	return func() tea.Msg {
		pattern = expandHome(strings.TrimSpace(pattern))
		if pattern == "" {
			return nil
		}

		paths, err := afero.Glob(filesystem.API(), pattern)
		if err != nil {
			return ui.NotificationMsg(err.Error())
		}
		if len(paths) == 0 {
			return ui.NotificationMsg(fmt.Sprintf("No files match %s", pattern))
		}

		var files []*intake.File
		for _, path := range paths {
			f, err := intake.FromPath(path)
			if err != nil {
				log.Warn(err)
				continue
			}
			files = append(files, f)
		}

		if !b.dispatcher.Post(session.UploadReceived{Files: files}) {
			return errDispatcherStopped
		}
		return ui.NotificationMsg(fmt.Sprintf("Adding %s", util.Quantify(len(files), "file", "files")))
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// toggleTheme switches between the dark and light palettes and remembers the choice.
func (b *statefulBubble) toggleTheme() tea.Cmd {
	next := style.ThemeLight
	if style.Theme() == style.ThemeLight {
		next = style.ThemeDark
	}

	style.SetTheme(next)
	if err := b.session.Context().Prefs.SetTheme(next); err != nil {
		log.Warn(err)
	}

	b.restyle()
	return b.setItems()
}

// answer resolves the pending confirmation.
func (b *statefulBubble) answer(ok bool) {
	if req, present := b.pendingConfirm.Get(); present {
		req.Answer(ok)
	}
	b.pendingConfirm = mo.None[ui.ConfirmMsg]()
	b.confirmChoice = false
	b.previousState()
}
