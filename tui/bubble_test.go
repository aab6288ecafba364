package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/internal/ui"
	"github.com/offplay/offplay/player"
	"github.com/offplay/offplay/prefs"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type nopMedia struct{}

func (nopMedia) Load(string, string) error { return nil }
func (nopMedia) Unload() error { return nil }
func (nopMedia) Play() error { return nil }
func (nopMedia) Pause() error { return nil }
func (nopMedia) Seek(float64) error { return nil }
func (nopMedia) SetRate(float64) error { return nil }
func (nopMedia) SetVolume(float64) error { return nil }
func (nopMedia) SetMute(bool) error { return nil }
func (nopMedia) Position() (float64, error) { return 0, nil }
func (nopMedia) Duration() (float64, error) { return 0, nil }
func (nopMedia) Paused() (bool, error) { return true, nil }
func (nopMedia) Events() <-chan player.Event { return nil }
func (nopMedia) Close() error { return nil }

var bubbles atomic.Int64

func newTestBubble(names ...string) (*statefulBubble, *session.Session) {
	So(filesystem.API().MkdirAll("/tmp/offplay", 0o755), ShouldBeNil)
	p, err := prefs.LoadFrom(fmt.Sprintf("/config/prefs-tui-%d.json", bubbles.Add(1)))
	So(err, ShouldBeNil)

	bridge := ui.NewBridge()
	ctx, err := session.NewPlayerContext(session.Options{
		Dir:      "db",
		FS:       vfs.NewMem(),
		Clock:    clockwork.NewFakeClock(),
		Media:    nopMedia{},
		Notifier: bridge,
		Prefs:    p,
		TempDir:  "/tmp/offplay",
	})
	So(err, ShouldBeNil)

	for _, name := range names {
		So(ctx.Store.Put(&store.Record{Name: name, Blob: []byte("abc"), MIME: "video/mp4"}), ShouldBeNil)
	}

	s := session.New(ctx)
	So(s.Refresh(), ShouldBeNil)

	d := session.NewDispatcher(s, 8)
	d.Start(context.Background())

	b := newBubble(s, d, bridge, &Options{})
	b.resize(100, 40)
	Reset(func() {
		b.unsubscribe()
		bridge.Close()
		d.Stop()
		_ = s.Close()
	})
	return b, s
}

func itemNames(b *statefulBubble) []string {
	var names []string
	for _, it := range b.playlistC.Items() {
		names = append(names, it.(*listItem).name)
	}
	return names
}

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestBubble(t *testing.T) {
	Convey("Given a library of three videos", t, func() {
		b, s := newTestBubble("alpha.mp4", "beta.mp4", "gamma.mkv")

		Convey("The playlist lists the newest first", func() {
			So(itemNames(b), ShouldResemble, []string{"gamma.mkv", "beta.mp4", "alpha.mp4"})
			So(b.playlistC.Items()[0].(*listItem).Description(), ShouldContainSubstring, "3 B")
		})

		Convey("Searching narrows the list and escape restores it", func() {
			b.query = "alp"
			b.setItems()
			So(itemNames(b), ShouldResemble, []string{"alpha.mp4"})

			b.query = ""
			b.setItems()
			So(itemNames(b), ShouldHaveLength, 3)
		})

		Convey("Enter loads the selected entry", func() {
			b.playlistC.Select(1)
			_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(runCmd(cmd), ShouldBeNil)

			So(waitFor(func() bool { return s.Snapshot().Current == "beta.mp4" }), ShouldBeTrue)

			b.applySnapshot(s.Snapshot())
			item := b.playlistC.Items()[1].(*listItem)
			So(item.state, ShouldEqual, session.Loading)
			So(item.Title(), ShouldStartWith, "beta.mp4 ")
			So(b.playlistC.Index(), ShouldEqual, 1)
		})

		Convey("A confirmation request opens the dialog", func() {
			result := make(chan bool, 1)
			go func() {
				ok, _ := b.bridge.Confirm("Delete everything?", "Delete All", "Cancel")
				result <- ok
			}()

			b.Update(b.bridge.Wait()())
			So(b.state, ShouldEqual, confirmState)
			So(b.View(), ShouldContainSubstring, "Delete everything?")

			Convey("and enter answers with the default cancel", func() {
				b.Update(tea.KeyMsg{Type: tea.KeyEnter})
				So(<-result, ShouldBeFalse)
				So(b.state, ShouldEqual, playlistState)
			})

			Convey("and y confirms", func() {
				b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
				So(<-result, ShouldBeTrue)
				So(b.pendingConfirm.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("The theme toggle is remembered", func() {
			style.SetTheme(style.ThemeDark)
			b.toggleTheme()
			So(style.Theme(), ShouldEqual, style.ThemeLight)
			So(s.Context().Prefs.Theme(), ShouldEqual, style.ThemeLight)
			style.SetTheme(style.ThemeDark)
		})

		Convey("The now-playing line reflects an idle session", func() {
			So(b.viewNowPlaying(), ShouldContainSubstring, "Nothing playing")
		})
	})
}
