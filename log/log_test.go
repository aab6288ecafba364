package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Given logging enabled on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		dir := "/logs"
		So(fs.MkdirAll(dir, 0o755), ShouldBeNil)

		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		viper.Set(key.LogsJson, false)
		Reset(viper.Reset)

		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
		So(afero.WriteFile(fs, filepath.Join(dir, "2026-02-01.log"), []byte("old"), 0o644), ShouldBeNil)
		So(afero.WriteFile(fs, filepath.Join(dir, "2026-03-08.log"), []byte("recent"), 0o644), ShouldBeNil)

		So(setup(dir, now), ShouldBeNil)

		Convey("Messages land in today's file", func() {
			Debugf("seek to %d", 42)
			Warn("socket closed")

			data, err := afero.ReadFile(fs, filepath.Join(dir, "2026-03-10.log"))
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "seek to 42")
			So(string(data), ShouldContainSubstring, "socket closed")
		})

		Convey("Files past the retention window are pruned", func() {
			exists, _ := afero.Exists(fs, filepath.Join(dir, "2026-02-01.log"))
			So(exists, ShouldBeFalse)
			exists, _ = afero.Exists(fs, filepath.Join(dir, "2026-03-08.log"))
			So(exists, ShouldBeTrue)
		})
	})
}
