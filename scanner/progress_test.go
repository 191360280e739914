package scanner

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProgress(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	Convey("An active repo scores high and accelerates", t, func() {
		twoDaysAgo := now.AddDate(0, 0, -2).Format("2006-01-02 15:04:05 -0700")
		p := Progress(now, twoDaysAgo, 15, 0, 0)
		So(p.Score, ShouldEqual, 83)
		So(p.Stage, ShouldEqual, StageAccelerating)
	})

	Convey("A long dormant repo stalls", t, func() {
		old := now.AddDate(0, 0, -120).Format("2006-01-02 15:04:05 -0700")
		p := Progress(now, old, 0, 0, 0)
		So(p.Score, ShouldEqual, 20)
		So(p.Stage, ShouldEqual, StageStalled)
	})

	Convey("Missing or junk dates mean not started", t, func() {
		p := Progress(now, "", 10, 0, 0)
		So(p.Score, ShouldEqual, 0)
		So(p.Stage, ShouldEqual, StageNotStarted)

		p = Progress(now, "yesterday-ish", 10, 0, 0)
		So(p.Stage, ShouldEqual, StageNotStarted)
	})

	Convey("Penalties are capped", t, func() {
		fresh := now.Format("2006-01-02 15:04:05 -0700")
		spotless := Progress(now, fresh, 20, 0, 0)
		filthy := Progress(now, fresh, 20, 500, 9000)
		So(spotless.Score, ShouldEqual, 85)
		So(filthy.Score, ShouldEqual, spotless.Score-30)
	})

	Convey("Score never leaves the 0..100 range", t, func() {
		old := now.AddDate(0, 0, -365).Format("2006-01-02")
		p := Progress(now, old, 0, 100, 100000)
		So(p.Score, ShouldEqual, 0)

		fresh := now.Format("2006-01-02 15:04:05 -0700")
		p = Progress(now, fresh, 1000, 0, 0)
		So(p.Score, ShouldBeLessThanOrEqualTo, 100)
	})

	Convey("More recent activity never lowers the score", t, func() {
		base := Progress(now, now.AddDate(0, 0, -10).Format("2006-01-02"), 5, 2, 50)
		better := Progress(now, now.AddDate(0, 0, -3).Format("2006-01-02"), 8, 2, 50)
		So(better.Score, ShouldBeGreaterThanOrEqualTo, base.Score)
	})

	Convey("Stage rules are ordered", t, func() {
		recent := now.AddDate(0, 0, -5).Format("2006-01-02")
		So(Progress(now, recent, 6, 0, 0).Stage, ShouldEqual, StageInProgress)
		So(Progress(now, recent, 1, 0, 0).Stage, ShouldEqual, StageMaintaining)

		stale := now.AddDate(0, 0, -70).Format("2006-01-02")
		So(Progress(now, stale, 2, 0, 0).Stage, ShouldEqual, StageAtRisk)
	})

	Convey("Future commit dates count as zero days", t, func() {
		tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02 15:04:05 -0700")
		p := Progress(now, tomorrow, 0, 0, 0)
		So(p.Score, ShouldEqual, 50)
	})
}

func TestParseCommitDate(t *testing.T) {
	Convey("All git date shapes parse", t, func() {
		for _, value := range []string{
			"2024-06-01 10:20:30 +0800",
			"2024-06-01T10:20:30Z",
			"2024-06-01",
		} {
			_, ok := ParseCommitDate(value)
			So(ok, ShouldBeTrue)
		}
	})
	Convey("Garbage does not", t, func() {
		_, ok := ParseCommitDate("last tuesday")
		So(ok, ShouldBeFalse)
	})
}
