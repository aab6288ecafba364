package session

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/notify"
	"github.com/offplay/offplay/prefs"
	"github.com/offplay/offplay/store"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

var fixtures atomic.Int64

type fixture struct {
	s     *Session
	media *fakeMedia
	notes *notify.Auto
	clock *clockwork.FakeClock
	fs    vfs.FS
}

// newFixture stores names oldest first, so the projection lists them in reverse.
func newFixture(names ...string) *fixture {
	viper.Set(key.PlayerAutoplay, false)
	viper.Set(key.PlayerLoop, false)
	viper.Set(key.PlayerShuffle, false)
	viper.Set(key.PlayerVolume, 0.8)
	viper.Set(key.PlayerRate, 1.0)
	viper.Set(key.SyncThrottleMs, 1000)
	viper.Set(key.SyncDebounceMs, 700)
	viper.Set(key.IntakePlayFirst, true)

	So(filesystem.API().MkdirAll("/tmp/offplay", 0o755), ShouldBeNil)
	p, err := prefs.LoadFrom(fmt.Sprintf("/config/prefs-%d.json", fixtures.Add(1)))
	So(err, ShouldBeNil)

	f := &fixture{
		media: newFakeMedia(),
		notes: &notify.Auto{Answer: true},
		clock: clockwork.NewFakeClock(),
		fs:    vfs.NewMem(),
	}

	pc, err := NewPlayerContext(Options{
		Dir:      "db",
		FS:       f.fs,
		Clock:    f.clock,
		Media:    f.media,
		Notifier: f.notes,
		Prefs:    p,
		TempDir:  "/tmp/offplay",
	})
	So(err, ShouldBeNil)

	for _, name := range names {
		So(pc.Store.Put(&store.Record{Name: name, Blob: []byte(name), MIME: "video/mp4"}), ShouldBeNil)
	}

	f.s = New(pc)
	So(f.s.Refresh(), ShouldBeNil)
	return f
}

func (f *fixture) stored(name string) *store.Record {
	got, err := f.s.ctx.Store.Get(name)
	So(err, ShouldBeNil)
	So(got.IsPresent(), ShouldBeTrue)
	return got.MustGet()
}

func (f *fixture) setMeta(name string, position float64, state string) {
	So(f.s.ctx.Store.UpdateMetadata(name, store.Metadata{LastPosition: position, PlaybackState: state}), ShouldBeNil)
}

// ready loads name and reports the given duration.
func (f *fixture) ready(name string, duration float64) {
	So(f.s.Load(name), ShouldBeNil)
	So(f.s.OnReady(duration), ShouldBeNil)
}

func TestLoad(t *testing.T) {
	Convey("Given a stored video that was playing at 42s", t, func() {
		f := newFixture("a.mp4")
		f.setMeta("a.mp4", 42, constant.StatePlaying)

		Convey("Load opens a handle and waits for the media", func() {
			So(f.s.Load("a.mp4"), ShouldBeNil)
			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Loading)
			So(snap.Current, ShouldEqual, "a.mp4")
			So(snap.HandleOpen, ShouldBeTrue)

			loaded, _, _ := f.media.snapshot()
			So(loaded, ShouldStartWith, "/tmp/offplay/")

			Convey("Readiness restores position and resumes playing", func() {
				So(f.s.OnReady(100), ShouldBeNil)
				_, paused, position := f.media.snapshot()
				So(position, ShouldEqual, 42)
				So(paused, ShouldBeFalse)
				So(f.s.Snapshot().State, ShouldEqual, Playing)
				So(f.media.rate, ShouldEqual, 1.0)
				So(f.media.volume, ShouldEqual, 0.8)
			})

			Convey("Ticks from before the restore seek landed are held back", func() {
				So(f.s.OnReady(100), ShouldBeNil)
				So(f.s.OnPosition(0), ShouldBeNil)
				So(f.s.OnPosition(0.2), ShouldBeNil)
				So(f.s.Snapshot().Position, ShouldEqual, 42)
				So(f.stored("a.mp4").LastPosition, ShouldEqual, 42)

				So(f.s.OnPosition(42.25), ShouldBeNil)
				So(f.s.Snapshot().Position, ShouldEqual, 42.25)
				So(f.stored("a.mp4").LastPosition, ShouldEqual, 42.25)

				Convey("Once settled, every tick counts", func() {
					f.clock.Advance(2 * time.Second)
					So(f.s.OnPosition(3), ShouldBeNil)
					So(f.s.Snapshot().Position, ShouldEqual, 3)
				})
			})
		})

		Convey("A stored position at or past the duration restores 0", func() {
			f.ready("a.mp4", 42)
			_, _, position := f.media.snapshot()
			So(position, ShouldEqual, 0)
			So(f.s.Snapshot().Position, ShouldEqual, 0)
		})

		Convey("A refused resume leaves the session paused", func() {
			f.media.playErr = errors.New("autoplay blocked")
			f.ready("a.mp4", 100)
			So(f.s.Snapshot().State, ShouldEqual, Paused)
		})

		Convey("A paused record stays paused", func() {
			f.setMeta("a.mp4", 10, constant.StatePaused)
			f.ready("a.mp4", 100)
			So(f.s.Snapshot().State, ShouldEqual, Paused)
			So(f.s.Snapshot().Position, ShouldEqual, 10)
		})

		Convey("Loading a missing name notifies and stays idle", func() {
			err := f.s.Load("missing.mp4")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Idle)
			So(snap.HandleOpen, ShouldBeFalse)
			So(f.media.calls, ShouldNotContain, "load")

			notices := f.notes.Notices()
			So(notices, ShouldHaveLength, 1)
			So(notices[0], ShouldStartWith, constant.NoticeNotFound)
			So(notices[0], ShouldContainSubstring, `"a.mp4"`)
		})

		Convey("Switching videos flushes the previous position first", func() {
			f.addAndRefresh("b.mp4")
			f.ready("a.mp4", 100)
			So(f.s.OnPosition(50), ShouldBeNil)
			f.clock.Advance(100 * time.Millisecond)
			So(f.s.OnPosition(51.5), ShouldBeNil)

			handle := f.s.handle
			So(f.s.Load("b.mp4"), ShouldBeNil)
			So(handle.Released(), ShouldBeTrue)
			So(f.stored("a.mp4").LastPosition, ShouldEqual, 51.5)

			f.clock.Advance(time.Second)
			time.Sleep(50 * time.Millisecond)
			So(f.stored("b.mp4").LastPosition, ShouldEqual, 0)
			So(f.stored("a.mp4").LastPosition, ShouldEqual, 51.5)
		})
	})
}

func TestFailure(t *testing.T) {
	Convey("Given a stored video that was playing at 42s", t, func() {
		f := newFixture("a.mp4")
		f.setMeta("a.mp4", 42, constant.StatePlaying)

		Convey("A decode failure while loading falls back to paused", func() {
			So(f.s.Load("a.mp4"), ShouldBeNil)
			handle := f.s.handle
			So(f.s.OnFailed(), ShouldBeNil)

			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Paused)
			So(snap.State.Ready(), ShouldBeTrue)
			So(snap.Failed, ShouldBeTrue)
			So(snap.Current, ShouldEqual, "a.mp4")
			So(snap.Position, ShouldEqual, 42)
			So(snap.Duration, ShouldEqual, 0)
			So(snap.HandleOpen, ShouldBeFalse)
			So(handle.Released(), ShouldBeTrue)

			Convey("The stored metadata is left alone", func() {
				So(f.s.Stop(), ShouldBeNil)
				So(f.s.SeekTo(10), ShouldBeNil)
				So(f.s.OnPosition(5), ShouldBeNil)
				f.clock.Advance(time.Second)

				rec := f.stored("a.mp4")
				So(rec.LastPosition, ShouldEqual, 42)
				So(rec.PlaybackState, ShouldEqual, constant.StatePlaying)
				So(f.s.Snapshot().Position, ShouldEqual, 42)
			})

			Convey("PlayPause retries the load", func() {
				So(f.s.PlayPause(), ShouldBeNil)
				So(f.s.Snapshot().State, ShouldEqual, Loading)
				So(f.s.Snapshot().Failed, ShouldBeFalse)

				So(f.s.OnReady(100), ShouldBeNil)
				snap := f.s.Snapshot()
				So(snap.State, ShouldEqual, Playing)
				So(snap.Position, ShouldEqual, 42)
				So(snap.HandleOpen, ShouldBeTrue)
			})
		})

		Convey("A failure during playback keeps the last position", func() {
			f.ready("a.mp4", 100)
			So(f.s.OnPosition(50), ShouldBeNil)
			So(f.s.OnFailed(), ShouldBeNil)

			So(f.s.Snapshot().Failed, ShouldBeTrue)
			rec := f.stored("a.mp4")
			So(rec.LastPosition, ShouldEqual, 50)
			So(rec.PlaybackState, ShouldEqual, constant.StatePaused)
		})

		Convey("A failure with nothing loaded is ignored", func() {
			So(f.s.OnFailed(), ShouldBeNil)
			So(f.s.Snapshot().State, ShouldEqual, Idle)
			So(f.s.Snapshot().Failed, ShouldBeFalse)
		})
	})
}

func (f *fixture) addAndRefresh(name string) {
	So(f.s.ctx.Store.Put(&store.Record{Name: name, Blob: []byte(name), MIME: "video/mp4"}), ShouldBeNil)
	So(f.s.Refresh(), ShouldBeNil)
}

func TestEnded(t *testing.T) {
	Convey("Given a video playing near its end", t, func() {
		f := newFixture("a.mp4", "b.mp4")
		f.setMeta("b.mp4", 10, constant.StatePlaying)
		f.ready("b.mp4", 100)
		So(f.s.OnPosition(99.9), ShouldBeNil)

		Convey("Without loop or autoplay it stops at the start", func() {
			So(f.s.OnEnded(), ShouldBeNil)
			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Paused)
			So(snap.Ended, ShouldBeTrue)
			So(snap.Position, ShouldEqual, 0)

			rec := f.stored("b.mp4")
			So(rec.LastPosition, ShouldEqual, 0)
			So(rec.PlaybackState, ShouldEqual, constant.StatePaused)

			Convey("and a late tick does not undo the rewind", func() {
				So(f.s.OnPosition(100), ShouldBeNil)
				f.clock.Advance(2 * time.Second)
				time.Sleep(50 * time.Millisecond)
				So(f.stored("b.mp4").LastPosition, ShouldEqual, 0)
			})

			Convey("and play restarts from the beginning", func() {
				So(f.s.PlayPause(), ShouldBeNil)
				So(f.s.Snapshot().State, ShouldEqual, Playing)
				So(f.s.Snapshot().Ended, ShouldBeFalse)
				_, _, position := f.media.snapshot()
				So(position, ShouldEqual, 0)
			})
		})

		Convey("With loop it restarts in place", func() {
			So(f.s.ToggleLoop(), ShouldBeNil)
			So(f.s.OnEnded(), ShouldBeNil)
			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Playing)
			So(snap.Current, ShouldEqual, "b.mp4")
			_, paused, position := f.media.snapshot()
			So(paused, ShouldBeFalse)
			So(position, ShouldEqual, 0)
			So(f.stored("b.mp4").LastPosition, ShouldEqual, 0)
		})

		Convey("With autoplay it plays the next entry regardless of its stored state", func() {
			So(f.s.ToggleAutoplay(), ShouldBeNil)
			So(f.s.OnEnded(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "a.mp4")
			So(f.stored("b.mp4").LastPosition, ShouldEqual, 0)

			So(f.s.OnReady(50), ShouldBeNil)
			So(f.s.Snapshot().State, ShouldEqual, Playing)
		})
	})
}

func TestNavigation(t *testing.T) {
	Convey("Given three videos", t, func() {
		f := newFixture("a.mp4", "b.mp4", "c.mp4")
		So(f.s.Snapshot().Names, ShouldResemble, []string{"c.mp4", "b.mp4", "a.mp4"})

		Convey("Next from idle starts the first entry", func() {
			So(f.s.Next(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "c.mp4")
			So(f.s.Snapshot().Index, ShouldEqual, 0)
		})

		Convey("Prev from idle starts the last entry", func() {
			So(f.s.Prev(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "a.mp4")
		})

		Convey("Next and Prev wrap around", func() {
			So(f.s.Load("a.mp4"), ShouldBeNil)
			So(f.s.Next(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "c.mp4")
			So(f.s.Prev(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "a.mp4")
		})

		Convey("Shuffle never picks the current entry", func() {
			picks := []int{0, 0, 2}
			f.s.ctx.rand = func(n int) int {
				p := picks[0]
				picks = picks[1:]
				return p
			}
			So(f.s.Load("c.mp4"), ShouldBeNil)
			So(f.s.ToggleShuffle(), ShouldBeNil)
			So(f.s.Next(), ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "a.mp4")
		})

		Convey("The current entry is tracked by name across reorders", func() {
			So(f.s.Load("c.mp4"), ShouldBeNil)
			So(f.s.Snapshot().Index, ShouldEqual, 0)

			f.addAndRefresh("d.mp4")
			snap := f.s.Snapshot()
			So(snap.Current, ShouldEqual, "c.mp4")
			So(snap.Index, ShouldEqual, 1)
		})
	})

	Convey("Given a single video with shuffle on", t, func() {
		f := newFixture("only.mp4")
		So(f.s.ToggleShuffle(), ShouldBeNil)
		So(f.s.Load("only.mp4"), ShouldBeNil)
		So(f.s.Next(), ShouldBeNil)
		So(f.s.Snapshot().Current, ShouldEqual, "only.mp4")
	})

	Convey("Given an empty library", t, func() {
		f := newFixture()
		So(f.s.Next(), ShouldBeNil)
		So(f.s.Prev(), ShouldBeNil)
		So(f.s.PlayPause(), ShouldBeNil)
		So(f.s.Snapshot().State, ShouldEqual, Idle)
	})
}

func TestTransport(t *testing.T) {
	Convey("Given a playing video", t, func() {
		f := newFixture("a.mp4")
		f.setMeta("a.mp4", 30, constant.StatePlaying)
		f.ready("a.mp4", 120)

		Convey("Pause flushes the position immediately", func() {
			So(f.s.OnPosition(31), ShouldBeNil)
			f.clock.Advance(100 * time.Millisecond)
			So(f.s.OnPosition(31.2), ShouldBeNil)
			So(f.s.PlayPause(), ShouldBeNil)

			So(f.s.Snapshot().State, ShouldEqual, Paused)
			rec := f.stored("a.mp4")
			So(rec.LastPosition, ShouldEqual, 31.2)
			So(rec.PlaybackState, ShouldEqual, constant.StatePaused)
		})

		Convey("A pause from the backend is handled the same way", func() {
			So(f.s.OnPaused(), ShouldBeNil)
			So(f.s.Snapshot().State, ShouldEqual, Paused)
			So(f.stored("a.mp4").PlaybackState, ShouldEqual, constant.StatePaused)

			So(f.s.OnResumed(), ShouldBeNil)
			So(f.s.Snapshot().State, ShouldEqual, Playing)
		})

		Convey("Stop rewinds and stays loaded", func() {
			So(f.s.Stop(), ShouldBeNil)
			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Paused)
			So(snap.Position, ShouldEqual, 0)
			So(snap.HandleOpen, ShouldBeTrue)
			So(f.stored("a.mp4").LastPosition, ShouldEqual, 0)
		})

		Convey("Seeking commits at once and is clamped", func() {
			So(f.s.SeekTo(80), ShouldBeNil)
			So(f.stored("a.mp4").LastPosition, ShouldEqual, 80)

			So(f.s.SeekTo(500), ShouldBeNil)
			So(f.s.Snapshot().Position, ShouldEqual, 120)

			So(f.s.SeekPercent(50), ShouldBeNil)
			So(f.s.Snapshot().Position, ShouldEqual, 60)

			So(f.s.Skip(-100), ShouldBeNil)
			So(f.s.Snapshot().Position, ShouldEqual, 0)
		})

		Convey("Rate steps stay within bounds and are remembered", func() {
			for i := 0; i < 6; i++ {
				So(f.s.StepRate(0.25), ShouldBeNil)
			}
			So(f.s.Snapshot().Rate, ShouldEqual, MaxRate)
			So(f.media.rate, ShouldEqual, MaxRate)
			So(f.s.ctx.Prefs.Rate(), ShouldEqual, MaxRate)

			So(f.s.SetRate(0.1), ShouldBeNil)
			So(f.s.Snapshot().Rate, ShouldEqual, MinRate)
		})

		Convey("Volume is clamped and mute toggles", func() {
			So(f.s.SetVolume(1.4), ShouldBeNil)
			So(f.s.Snapshot().Volume, ShouldEqual, 1)
			So(f.s.StepVolume(-0.05), ShouldBeNil)
			So(f.s.Snapshot().Volume, ShouldAlmostEqual, 0.95, 1e-9)
			So(f.s.ctx.Prefs.Volume(), ShouldAlmostEqual, 0.95, 1e-9)

			So(f.s.ToggleMute(), ShouldBeNil)
			So(f.media.muted, ShouldBeTrue)
		})
	})
}

func TestLibrary(t *testing.T) {
	Convey("Given a video being played", t, func() {
		f := newFixture("a.mp4", "b.mp4")
		f.ready("a.mp4", 100)
		handle := f.s.handle

		Convey("Deleting it tears the session down", func() {
			ok, err := f.s.Delete("a.mp4")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Idle)
			So(snap.Current, ShouldBeEmpty)
			So(snap.HandleOpen, ShouldBeFalse)
			So(handle.Released(), ShouldBeTrue)
			So(snap.Names, ShouldResemble, []string{"b.mp4"})
			So(f.notes.Confirms()[0], ShouldContainSubstring, `"a.mp4"`)
		})

		Convey("Deleting another entry keeps playing", func() {
			_, err := f.s.Delete("b.mp4")
			So(err, ShouldBeNil)
			So(f.s.Snapshot().Current, ShouldEqual, "a.mp4")
			So(handle.Released(), ShouldBeFalse)
		})

		Convey("A declined confirmation deletes nothing", func() {
			f.notes.Answer = false
			ok, err := f.s.Delete("a.mp4")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(f.s.Snapshot().Names, ShouldHaveLength, 2)
		})

		Convey("Clearing everything returns to idle", func() {
			ok, err := f.s.ClearAll()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(f.notes.Confirms(), ShouldContain, constant.NoticeConfirmClear)

			snap := f.s.Snapshot()
			So(snap.State, ShouldEqual, Idle)
			So(snap.Names, ShouldBeEmpty)
			So(handle.Released(), ShouldBeTrue)
		})
	})

	Convey("Given an upload batch", t, func() {
		f := newFixture()
		files := []*intake.File{
			{Name: "a.mp4", Data: []byte("a"), MIME: "video/mp4"},
			{Name: "notes.txt", Data: []byte("n"), MIME: "text/plain"},
			{Name: "b.webm", Data: []byte("b"), MIME: "video/webm"},
		}

		stored, err := f.s.Upload(files)

		Convey("Videos are stored and the rest rejected one by one", func() {
			So(err, ShouldBeNil)
			So(stored, ShouldResemble, []string{"a.mp4", "b.webm"})
			So(f.s.Snapshot().Names, ShouldResemble, []string{"b.webm", "a.mp4"})

			notices := f.notes.Notices()
			So(notices, ShouldHaveLength, 1)
			So(strings.HasPrefix(notices[0], constant.NoticeUnsupported), ShouldBeTrue)
			So(notices[0], ShouldContainSubstring, "notes.txt")
		})

		Convey("The first accepted file starts loading", func() {
			snap := f.s.Snapshot()
			So(snap.Current, ShouldEqual, "a.mp4")
			So(snap.State, ShouldEqual, Loading)
		})
	})
}

func TestObservers(t *testing.T) {
	Convey("Given a subscribed observer", t, func() {
		f := newFixture("a.mp4")
		var got []Snapshot
		unsubscribe := f.s.Subscribe(func(s Snapshot) { got = append(got, s) })

		So(f.s.Load("a.mp4"), ShouldBeNil)
		So(f.s.OnReady(10), ShouldBeNil)

		Convey("It sees every transition", func() {
			So(got, ShouldHaveLength, 2)
			So(got[0].State, ShouldEqual, Loading)
			So(got[1].State, ShouldEqual, Paused)
		})

		Convey("It stops after unsubscribing", func() {
			unsubscribe()
			So(f.s.ToggleLoop(), ShouldBeNil)
			So(got, ShouldHaveLength, 2)
		})
	})
}

func TestClose(t *testing.T) {
	Convey("Closing a session flushes the live position", t, func() {
		f := newFixture("a.mp4")
		f.ready("a.mp4", 100)
		So(f.s.OnPosition(5), ShouldBeNil)
		f.clock.Advance(100 * time.Millisecond)
		So(f.s.OnPosition(7), ShouldBeNil)
		handle := f.s.handle

		So(f.s.Close(), ShouldBeNil)
		So(handle.Released(), ShouldBeTrue)

		st, err := store.Open("db", &store.Options{FS: f.fs})
		So(err, ShouldBeNil)
		defer st.Close()

		got, err := st.Get("a.mp4")
		So(err, ShouldBeNil)
		So(got.MustGet().LastPosition, ShouldEqual, 7)
	})
}
