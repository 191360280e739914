package helpers

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDuration(t *testing.T) {
	Convey("1s", t, func() {
		result, err := ParseDuration("1s")
		So(err, ShouldBeNil)
		So(result, ShouldEqual, time.Duration(time.Second))
	})
	Convey("22m", t, func() {
		result, err := ParseDuration("22m")
		So(err, ShouldBeNil)
		So(result, ShouldEqual, time.Duration(time.Minute*22))
	})
	Convey("2h30m", t, func() {
		result, err := ParseDuration("2h30m")
		So(err, ShouldBeNil)
		So(result, ShouldEqual, time.Duration(time.Hour*2+time.Minute*30))
	})
	Convey("14d", t, func() {
		result, err := ParseDuration("14d")
		So(err, ShouldBeNil)
		So(result, ShouldEqual, time.Duration(time.Hour*24*14))
	})
	Convey("empty", t, func() {
		result, err := ParseDuration("")
		So(err, ShouldBeNil)
		So(result, ShouldEqual, time.Duration(0))
	})
}

func TestPrettyDuration(t *testing.T) {
	Convey("trims trailing zero units", t, func() {
		So(PrettyDuration(time.Minute*5), ShouldEqual, "5m")
		So(PrettyDuration(time.Hour*2), ShouldEqual, "2h")
		So(PrettyDuration(time.Second*42), ShouldEqual, "42s")
	})
}

func TestExpandPath(t *testing.T) {
	Convey("absolute path stays put", t, func() {
		So(ExpandPath("/tmp/repo"), ShouldEqual, "/tmp/repo")
	})
	Convey("relative path becomes absolute", t, func() {
		So(filepath.IsAbs(ExpandPath("some/repo")), ShouldBeTrue)
	})
}
