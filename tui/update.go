package tui

import (
	"strconv"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/offplay/offplay/internal/ui"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/session"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case session.Snapshot:
		return b, tea.Batch(cmd, b.applySnapshot(msg), b.waitForSnapshot())
	case ui.NotificationMsg:
		return b, tea.Batch(cmd, b.bridge.Wait())
	case ui.ConfirmMsg:
		b.pendingConfirm = mo.Some(msg)
		b.confirmChoice = false
		b.newState(confirmState)
		return b, b.bridge.Wait()
	case error:
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			if b.pendingConfirm.IsPresent() {
				b.answer(false)
			}
			return b, tea.Quit
		}
	}

	var next tea.Cmd
	var model tea.Model

	switch b.state {
	case playlistState:
		model, next = b.updatePlaylist(msg)
	case searchState:
		model, next = b.updateSearch(msg)
	case uploadState:
		model, next = b.updateUpload(msg)
	case confirmState:
		model, next = b.updateConfirm(msg)
	case errorState:
		model, next = b.updateError(msg)
	default:
		model = b
	}

	return model, tea.Batch(cmd, next)
}

func (b *statefulBubble) updatePlaylist(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		k := b.keymap
		switch {
		case bubblesKey.Matches(msg, k.up):
			if n := len(b.playlistC.Items()); n > 0 && b.playlistC.Index() == 0 {
				b.playlistC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, k.down):
			if n := len(b.playlistC.Items()); n > 0 && b.playlistC.Index() == n-1 {
				b.playlistC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, k.play):
			if name := b.selectedName(); name != "" {
				return b, b.post(session.LoadRequested{Name: name})
			}
			return b, nil
		case bubblesKey.Matches(msg, k.playPause):
			return b, b.command(session.PlayPause, 0)
		case bubblesKey.Matches(msg, k.stop):
			return b, b.command(session.Stop, 0)
		case bubblesKey.Matches(msg, k.next):
			return b, b.command(session.Next, 0)
		case bubblesKey.Matches(msg, k.prev):
			return b, b.command(session.Prev, 0)
		case bubblesKey.Matches(msg, k.skipBack):
			return b, b.command(session.Skip, -viper.GetFloat64(key.SkipShort))
		case bubblesKey.Matches(msg, k.skipForward):
			return b, b.command(session.Skip, viper.GetFloat64(key.SkipShort))
		case bubblesKey.Matches(msg, k.seekPercent):
			digit, _ := strconv.Atoi(msg.String())
			return b, b.command(session.SeekPercent, float64(digit*10))
		case bubblesKey.Matches(msg, k.rateDown):
			return b, b.command(session.StepRate, -viper.GetFloat64(key.RateStep))
		case bubblesKey.Matches(msg, k.rateUp):
			return b, b.command(session.StepRate, viper.GetFloat64(key.RateStep))
		case bubblesKey.Matches(msg, k.volumeDown):
			return b, b.command(session.StepVolume, -viper.GetFloat64(key.VolumeStep))
		case bubblesKey.Matches(msg, k.volumeUp):
			return b, b.command(session.StepVolume, viper.GetFloat64(key.VolumeStep))
		case bubblesKey.Matches(msg, k.mute):
			return b, b.command(session.ToggleMute, 0)
		case bubblesKey.Matches(msg, k.loop):
			return b, b.command(session.ToggleLoop, 0)
		case bubblesKey.Matches(msg, k.shuffle):
			return b, b.command(session.ToggleShuffle, 0)
		case bubblesKey.Matches(msg, k.autoplay):
			return b, b.command(session.ToggleAutoplay, 0)
		case bubblesKey.Matches(msg, k.remove):
			if name := b.selectedName(); name != "" {
				return b, b.post(session.DeleteRequested{Name: name})
			}
			return b, nil
		case bubblesKey.Matches(msg, k.clearAll):
			return b, b.post(session.ClearRequested{})
		case bubblesKey.Matches(msg, k.upload):
			b.uploadC.SetValue("")
			b.uploadC.Focus()
			b.newState(uploadState)
			return b, textinput.Blink
		case bubblesKey.Matches(msg, k.search):
			b.searchC.SetValue(b.query)
			b.searchC.Focus()
			b.newState(searchState)
			return b, textinput.Blink
		case bubblesKey.Matches(msg, k.theme):
			return b, b.toggleTheme()
		case bubblesKey.Matches(msg, k.back):
			if b.query != "" {
				b.query = ""
				return b, b.setItems()
			}
			return b, nil
		}
	}

	b.playlistC, cmd = b.playlistC.Update(msg)
	return b, cmd
}

// updateSearch filters the playlist as the query is typed.
func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			b.searchC.Blur()
			b.previousState()
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.back):
			b.searchC.Blur()
			b.query = ""
			b.previousState()
			return b, b.setItems()
		}
	}

	b.searchC, cmd = b.searchC.Update(msg)
	if q := b.searchC.Value(); q != b.query {
		b.query = q
		return b, tea.Batch(cmd, b.setItems())
	}
	return b, cmd
}

func (b *statefulBubble) updateUpload(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			pattern := b.uploadC.Value()
			b.uploadC.Blur()
			b.previousState()
			return b, b.upload(pattern)
		case bubblesKey.Matches(msg, b.keymap.back):
			b.uploadC.Blur()
			b.previousState()
			return b, nil
		}
	}

	b.uploadC, cmd = b.uploadC.Update(msg)
	return b, cmd
}

// updateConfirm defaults to the negative choice.
func (b *statefulBubble) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.toggleChoice):
		b.confirmChoice = !b.confirmChoice
	case bubblesKey.Matches(keyMsg, b.keymap.confirm):
		b.answer(b.confirmChoice)
	case keyMsg.String() == "y":
		b.answer(true)
	case keyMsg.String() == "n", bubblesKey.Matches(keyMsg, b.keymap.back):
		b.answer(false)
	}
	return b, nil
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.lastError = nil
			b.previousState()
		}
	}
	return b, nil
}
