package mini

import (
	"testing"

	"github.com/offplay/offplay/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given two items and two binds", t, func() {
		items := []entry{"a.mp4", "b.mp4"}
		binds := []*bind{upload, quit}

		Convey("Item choices return the item", func() {
			b, item := resolve(items, binds, 1)
			So(b, ShouldBeNil)
			So(item, ShouldEqual, entry("b.mp4"))
		})

		Convey("Choices past the items return the bind", func() {
			b, _ := resolve(items, binds, 2)
			So(b, ShouldEqual, upload)
			So(quit.eq(b), ShouldBeFalse)
		})

		Convey("Out of range choices quit", func() {
			b, _ := resolve(items, binds, 9)
			So(b, ShouldEqual, quit)
		})
	})
}

func TestStates(t *testing.T) {
	Convey("Given a mini in the library", t, func() {
		m := newMini(nil)
		m.setState(libraryState)

		Convey("Upload is not remembered in the history", func() {
			m.newState(uploadState)
			m.newState(playingState)
			m.previousState()
			So(m.state, ShouldEqual, libraryState)
		})

		Convey("An empty history falls back to the library", func() {
			m.previousState()
			So(m.state, ShouldEqual, libraryState)
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("The status line shows the clock and rate", t, func() {
		line := describe(session.Snapshot{
			State:    session.Paused,
			Current:  "a.mp4",
			Position: 65,
			Duration: 3600,
			Rate:     1.5,
		})
		So(line, ShouldContainSubstring, "a.mp4")
		So(line, ShouldContainSubstring, "1:05 / 1:00:00")
		So(line, ShouldContainSubstring, "1.5x")
	})
}
