package config

import (
	"testing"

	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should expose the synchronizer timings", func() {
			_ = Setup()
			So(viper.GetInt(key.SyncThrottleMs), ShouldEqual, 1000)
			So(viper.GetInt(key.SyncDebounceMs), ShouldEqual, 700)
			So(viper.GetFloat64(key.PlayerVolume), ShouldEqual, 0.8)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("sync.throttle_ms")
			So(result, ShouldEqual, "sync_throttle_ms")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the registered defaults", t, func() {
		So(Setup(), ShouldBeNil)
		Reset(func() {
			viper.Set(key.PlayerVolume, 0.8)
			viper.Set(key.SyncThrottleMs, 1000)
		})

		Convey("They validate", func() {
			So(Validate(), ShouldBeNil)
		})

		Convey("Each out-of-range value is reported", func() {
			viper.Set(key.PlayerVolume, 1.5)
			viper.Set(key.SyncThrottleMs, 0)

			err := Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PlayerVolume)
			So(err.Error(), ShouldContainSubstring, key.SyncThrottleMs)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlayerRate]

		Convey("Env should be prefixed with the application name", func() {
			So(field.Env(), ShouldEqual, "OFFPLAY_PLAYER_RATE")
		})

		Convey("Its type should be reported as float64", func() {
			So(field.TypeName(), ShouldEqual, "float64")
		})

		Convey("It accepts only values inside its range", func() {
			So(field.Accepts(1.5), ShouldBeTrue)
			So(field.Accepts(2.5), ShouldBeFalse)
			So(field.Accepts("fast"), ShouldBeFalse)
			So(field.Span(), ShouldEqual, "0.5..2")
		})
	})

	Convey("Given a field with choices", t, func() {
		field := Default[key.LogsLevel]
		So(field.Accepts("debug"), ShouldBeTrue)
		So(field.Accepts("verbose"), ShouldBeFalse)

		Convey("An open-ended range is described by its lower bound", func() {
			throttle := Default[key.SyncThrottleMs]
			So(throttle.Span(), ShouldEqual, ">= 1")
			So(throttle.Accepts(100000), ShouldBeTrue)
		})
	})
}
