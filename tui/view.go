package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case playlistState:
		output = b.viewPlaylist()
	case searchState:
		output = b.viewSearch()
	case uploadState:
		output = b.viewUpload()
	case confirmState:
		output = b.viewConfirm()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewPlaylist() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		listExtraPaddingStyle.Render(b.playlistC.View()),
		b.viewNowPlaying(),
	)
}

// viewNowPlaying renders the title, progress and toggle lines.
func (b *statefulBubble) viewNowPlaying() string {
	snap := b.snapshot
	p := style.Current()

	var title string
	switch snap.State {
	case session.Idle:
		title = style.Fg(p.Faint)(icon.Get(icon.Stop) + " Nothing playing")
	case session.Loading:
		title = style.Fg(p.Subtext)(icon.Get(icon.Video) + " Loading " + snap.Current)
	case session.Playing:
		title = style.Fg(p.Accent)(icon.Get(icon.Play)) + " " + style.Fg(p.Text)(snap.Current)
	case session.Paused:
		title = style.Fg(p.Warning)(icon.Get(icon.Pause)) + " " + style.Fg(p.Text)(snap.Current)
	}
	if snap.Failed {
		title = style.Fg(p.Error)(icon.Get(icon.Fail)+" Cannot play "+snap.Current) + style.Fg(p.Faint)("  (space retries)")
	}
	title = truncate.StringWithTail(title, uint(max(b.width, 1)), "…")

	clock := fmt.Sprintf("%s / %s", util.FormatTime(snap.Position), util.FormatTime(snap.Duration))
	progressLine := b.progressC.ViewAs(snap.Progress()) + " " + style.Fg(p.Subtext)(clock)

	toggle := func(i icon.Icon, on bool) string {
		if on {
			return style.Fg(p.Accent)(icon.Get(i))
		}
		return style.Fg(p.Faint)(icon.Get(i))
	}

	volume := fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(snap.Volume*100+0.5))
	if snap.Muted {
		volume = style.Fg(p.Error)(icon.Get(icon.Mute) + " muted")
	}

	status := strings.Join([]string{
		style.Fg(p.Subtext)(strconv.FormatFloat(snap.Rate, 'f', -1, 64) + "x"),
		volume,
		toggle(icon.Loop, snap.Loop),
		toggle(icon.Shuffle, snap.Shuffle),
		toggle(icon.Autoplay, snap.Autoplay),
	}, "  ")

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join([]string{title, progressLine, status}, "\n"))
}

func (b *statefulBubble) viewSearch() string {
	return b.renderLines(true, []string{
		style.Title("Search"),
		"",
		b.searchC.View(),
		"",
		style.Subtle(util.Quantify(len(b.playlistC.Items()), "match", "matches")),
	})
}

func (b *statefulBubble) viewUpload() string {
	return b.renderLines(true, []string{
		style.Title("Add Videos"),
		"",
		b.uploadC.View(),
	})
}

func (b *statefulBubble) viewConfirm() string {
	req, ok := b.pendingConfirm.Get()
	if !ok {
		return b.viewPlaylist()
	}

	p := style.Current()
	button := lipgloss.NewStyle().Padding(0, 2).Foreground(p.Subtext).Background(p.Border)
	active := button.Foreground(p.Border).Background(p.Accent).Bold(true)

	negative, affirmative := button.Render(req.Negative), button.Render(req.Affirmative)
	if b.confirmChoice {
		affirmative = active.Render(req.Affirmative)
	} else {
		negative = active.Render(req.Negative)
	}

	width := min(max(b.width-4, 20), 60)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.ActiveBorder).
		Padding(1, 2).
		Width(width).
		Render(lipgloss.JoinVertical(
			lipgloss.Center,
			style.Fg(p.Warning)(icon.Get(icon.Question))+" "+wrap.String(req.Message, width-6),
			"",
			lipgloss.JoinHorizontal(lipgloss.Top, negative, "  ", affirmative),
		))

	return b.renderLines(true, []string{box})
}

func (b *statefulBubble) viewError() string {
	p := style.Current()
	errorStyle := lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastError.Error()), max(b.width, 1))
	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " An error occurred:",
		"",
		errorMsg,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
