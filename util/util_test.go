package util

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "video", "videos"), ShouldEqual, "1 video")
		So(Quantify(0, "video", "videos"), ShouldEqual, "0 videos")
		So(Quantify(2, "video", "videos"), ShouldEqual, "2 videos")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/clip.mp4"), ShouldEqual, "clip")
		So(FileStem("clip"), ShouldEqual, "clip")
		So(FileStem("archive.tar.mkv"), ShouldEqual, "archive.tar")
	})
}

func TestMaxMinClamp(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})

	Convey("Clamp", t, func() {
		So(Clamp(2.5, 0.5, 2.0), ShouldEqual, 2.0)
		So(Clamp(0.25, 0.5, 2.0), ShouldEqual, 0.5)
		So(Clamp(1.25, 0.5, 2.0), ShouldEqual, 1.25)
	})
}

func TestFormatTime(t *testing.T) {
	Convey("FormatTime", t, func() {
		So(FormatTime(0), ShouldEqual, "0:00")
		So(FormatTime(65.9), ShouldEqual, "1:05")
		So(FormatTime(3725), ShouldEqual, "1:02:05")
		So(FormatTime(math.NaN()), ShouldEqual, "0:00")
		So(FormatTime(math.Inf(1)), ShouldEqual, "0:00")
		So(FormatTime(-3), ShouldEqual, "0:00")
	})
}

func TestHistory(t *testing.T) {
	Convey("Given a history limited to three screens", t, func() {
		h := History[string]{Limit: 3}

		Convey("Back retraces pushes in reverse order", func() {
			h.Push("library")
			h.Push("playing")
			So(h.Back("home"), ShouldEqual, "playing")
			So(h.Back("home"), ShouldEqual, "library")
			So(h.Back("home"), ShouldEqual, "home")
		})

		Convey("Consecutive duplicates collapse", func() {
			h.Push("library")
			h.Push("library")
			So(h.Len(), ShouldEqual, 1)
		})

		Convey("The oldest entries are dropped past the limit", func() {
			for _, s := range []string{"a", "b", "c", "d"} {
				h.Push(s)
			}
			So(h.Len(), ShouldEqual, 3)
			So(h.Pop().MustGet(), ShouldEqual, "d")
			So(h.Back(""), ShouldEqual, "c")
			So(h.Back(""), ShouldEqual, "b")
			So(h.Pop().IsAbsent(), ShouldBeTrue)
		})
	})
}
