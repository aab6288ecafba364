package tui

import (
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/offplay/offplay/internal/ui"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// nowPlayingHeight is the number of lines below the playlist.
const nowPlayingHeight = 4

// statefulBubble holds the interface state. Everything it shows comes from
// session snapshots; everything it changes goes through the dispatcher.
type statefulBubble struct {
	state         state
	statesHistory util.History[state]

	keymap *statefulKeymap

	// components
	playlistC list.Model
	searchC   textinput.Model
	uploadC   textinput.Model
	progressC progress.Model
	helpC     help.Model

	session     *session.Session
	dispatcher  *session.Dispatcher
	bridge      *ui.Bridge
	snapshots   chan session.Snapshot
	unsubscribe func()

	snapshot session.Snapshot
	records  map[string]*store.Record
	query    string

	pendingConfirm mo.Option[ui.ConfirmMsg]
	confirmChoice  bool

	lastError     error
	width, height int
	notifier      *ui.Model

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s, remembering where it came from.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	b.statesHistory.Push(b.state)
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	b.setState(b.statesHistory.Back(playlistState))
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy - nowPlayingHeight

	b.playlistC.SetSize(listWidth, max(listHeight, 1))
	b.playlistC.Help.Width = listWidth

	b.progressC.Width = listWidth
	if w := viper.GetInt(key.TUIProgressWidth); w > 0 {
		b.progressC.Width = min(w, listWidth)
	}

	b.searchC.Width = listWidth
	b.uploadC.Width = listWidth
	b.helpC.Width = listWidth

	b.width = width - x
	b.height = height - y
}

// restyle applies the active palette to every component.
func (b *statefulBubble) restyle() {
	p := style.Current()

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.ActiveBorder).
		Foreground(p.Accent).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle.Foreground(p.Subtext)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(p.Text)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(p.Faint)
	delegate.Styles.DimmedTitle = delegate.Styles.DimmedTitle.Foreground(p.Faint)
	b.playlistC.SetDelegate(delegate)

	b.playlistC.Styles.Title = lipgloss.NewStyle().Foreground(p.Border).Background(p.Accent).Padding(0, 1)
	b.playlistC.Styles.NoItems = paddingStyle.Foreground(p.Faint)

	b.progressC = progress.New(
		progress.WithGradient(string(p.Secondary), string(p.Accent)),
		progress.WithoutPercentage(),
		progress.WithWidth(b.progressC.Width),
	)
}

func newBubble(s *session.Session, dispatcher *session.Dispatcher, bridge *ui.Bridge, options *Options) *statefulBubble {
	bubble := &statefulBubble{
		statesHistory: util.History[state]{Limit: 16},
		keymap:        newStatefulKeymap(),
		session:       s,
		dispatcher:    dispatcher,
		bridge:        bridge,
		snapshots:     make(chan session.Snapshot, 1),
		records:       make(map[string]*store.Record),
		notifier:      &ui.Model{},
		options:       options,
	}

	bubble.helpC = help.New()

	bubble.playlistC = list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	bubble.playlistC.KeyMap = bubble.keymap.forList()
	bubble.playlistC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
	bubble.playlistC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return bubble.keymap.FullHelp()[0]
	}
	bubble.playlistC.Title = "Library"
	bubble.playlistC.SetStatusBarItemName("video", "videos")
	bubble.playlistC.SetFilteringEnabled(false)
	bubble.playlistC.SetShowPagination(false)
	bubble.playlistC.SetShowStatusBar(true)

	bubble.searchC = textinput.New()
	bubble.searchC.Placeholder = "Search videos"
	bubble.searchC.CharLimit = 80
	bubble.searchC.Prompt = viper.GetString(key.TUISearchPrompt)

	bubble.uploadC = textinput.New()
	bubble.uploadC.Placeholder = "Path or glob, e.g. ~/Videos/*.mp4"
	bubble.uploadC.Prompt = viper.GetString(key.TUISearchPrompt)

	bubble.restyle()

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.unsubscribe = s.Subscribe(bubble.deliver)
	bubble.applySnapshot(s.Snapshot())

	return bubble
}

// deliver hands the latest snapshot to the program, replacing one that was
// not picked up yet. It runs on the dispatcher goroutine and never blocks.
func (b *statefulBubble) deliver(snap session.Snapshot) {
	for {
		select {
		case b.snapshots <- snap:
			return
		default:
		}
		select {
		case <-b.snapshots:
		default:
		}
	}
}
