package scanner

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/typhfeng/projecttrack"
)

func repoFixture(name, track string, score, commits30 int) projecttrack.RepoMetrics {
	return projecttrack.RepoMetrics{
		ID:       RepoID("/home/u/git/" + name),
		Name:     name,
		Path:     "/home/u/git/" + name,
		Track:    track,
		Commits:  projecttrack.CommitWindows{Last30d: commits30, Last90d: commits30 * 2},
		Progress: projecttrack.Progress{Score: score, Stage: StageInProgress},
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := projecttrack.RepoConfig{Owner: "typhfeng", ScanRoots: []string{"/home/u/git"}}

	Convey("An empty scan still yields a complete document", t, func() {
		d := Aggregate(cfg, now, nil)
		So(d.Summary.TotalRepos, ShouldEqual, 0)
		So(d.Trend.Labels, ShouldHaveLength, trendWeeks)
		So(d.TrackSummary, ShouldHaveLength, len(Tracks))
		for _, track := range Tracks {
			So(d.TrackSummary[track].AvgProgress, ShouldEqual, 0)
			So(d.Trend.Series[track], ShouldHaveLength, trendWeeks)
			for _, cell := range d.Trend.Series[track] {
				So(cell, ShouldEqual, 0)
			}
		}
		So(d.GeneratedAt, ShouldEqual, now.Format(time.RFC3339))
	})

	Convey("Track rollups accumulate per track with one decimal averages", t, func() {
		repos := []projecttrack.RepoMetrics{
			repoFixture("alpha", "finance", 80, 5),
			repoFixture("beta", "finance", 75, 0),
			repoFixture("gamma", "family", 40, 1),
		}
		d := Aggregate(cfg, now, repos)

		fin := d.TrackSummary["finance"]
		So(fin.Repos, ShouldEqual, 2)
		So(fin.ActiveRepos, ShouldEqual, 1)
		So(fin.Commits30d, ShouldEqual, 5)
		So(fin.AvgProgress, ShouldEqual, 77.5)

		So(d.TrackSummary["family"].AvgProgress, ShouldEqual, 40)
		So(d.Summary.TotalRepos, ShouldEqual, 3)
		So(d.Summary.ActiveRepos30d, ShouldEqual, 2)
	})

	Convey("Unknown tracks fall back to the default for rollups", t, func() {
		repos := []projecttrack.RepoMetrics{repoFixture("odd", "mystery", 50, 2)}
		d := Aggregate(cfg, now, repos)
		So(d.TrackSummary[DefaultTrack].Repos, ShouldEqual, 1)
	})

	Convey("Repos sort by score then 30 day commits, stably", t, func() {
		repos := []projecttrack.RepoMetrics{
			repoFixture("first", "finance", 60, 2),
			repoFixture("second", "finance", 60, 9),
			repoFixture("third", "finance", 90, 1),
			repoFixture("fourth", "finance", 60, 9),
		}
		d := Aggregate(cfg, now, repos)
		So(d.Repos[0].Name, ShouldEqual, "third")
		So(d.Repos[1].Name, ShouldEqual, "second")
		So(d.Repos[2].Name, ShouldEqual, "fourth")
		So(d.Repos[3].Name, ShouldEqual, "first")
	})

	Convey("Weekly counts feed the trend matrix, unknown weeks are dropped", t, func() {
		labels := WeekLabels(now, trendWeeks)
		repo := repoFixture("alpha", "finance", 50, 3)
		repo.WeeklyCommits = map[string]int{
			labels[trendWeeks-1]: 4,
			labels[0]:            2,
			"2019-W01":           7,
		}
		d := Aggregate(cfg, now, []projecttrack.RepoMetrics{repo})
		row := d.Trend.Series["finance"]
		So(row[trendWeeks-1], ShouldEqual, 4)
		So(row[0], ShouldEqual, 2)

		total := 0
		for _, cell := range row {
			total += cell
		}
		So(total, ShouldEqual, 6)
	})

	Convey("The evidence pool preserves input order across repos", t, func() {
		first := repoFixture("low", "finance", 10, 0)
		first.Issues.Hits = []projecttrack.IssueHit{{File: "a.go", Line: 3, Text: "// TODO: one"}}
		second := repoFixture("high", "family", 90, 5)
		second.CommitAlerts = []projecttrack.CommitRow{{Date: "2024-06-01", Hash: "abc", Subject: "fix leak"}}

		d := Aggregate(cfg, now, []projecttrack.RepoMetrics{first, second})
		So(d.SearchPool, ShouldHaveLength, 2)
		So(d.SearchPool[0].Repo, ShouldEqual, "low")
		So(d.SearchPool[0].Type, ShouldEqual, "code_issue")
		So(d.SearchPool[0].Title, ShouldEqual, "a.go:3")
		So(d.SearchPool[1].Repo, ShouldEqual, "high")
		So(d.SearchPool[1].Type, ShouldEqual, "commit_alert")
		So(d.SearchPool[1].Title, ShouldEqual, "2024-06-01 abc")

		So(d.Repos[0].Name, ShouldEqual, "high")
	})
}

func TestSearch(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := projecttrack.RepoConfig{Owner: "typhfeng"}

	poolRepo := repoFixture("alpha", "finance", 50, 1)
	poolRepo.Issues.Hits = []projecttrack.IssueHit{
		{File: "a.go", Line: 1, Text: "// TODO: refactor parser"},
		{File: "b.go", Line: 2, Text: "// FIXME: flaky retry"},
	}
	other := repoFixture("beta", "family", 50, 1)
	other.CommitAlerts = []projecttrack.CommitRow{{Date: "2024-06-01", Hash: "abc", Subject: "fix retry storm"}}
	dashboard := Aggregate(cfg, now, []projecttrack.RepoMetrics{poolRepo, other})

	Convey("An empty query returns the head of the pool", t, func() {
		So(Search(dashboard, "", 2), ShouldHaveLength, 2)
		So(Search(dashboard, "  ", 100), ShouldHaveLength, 3)
	})

	Convey("Queries match repo, title, content and track, case insensitively", t, func() {
		So(Search(dashboard, "RETRY", 10), ShouldHaveLength, 2)
		So(Search(dashboard, "alpha", 10), ShouldHaveLength, 2)
		So(Search(dashboard, "family", 10), ShouldHaveLength, 1)
		So(Search(dashboard, "b.go:2", 10), ShouldHaveLength, 1)
		So(Search(dashboard, "no such thing", 10), ShouldBeEmpty)
	})

	Convey("The limit truncates results", t, func() {
		So(Search(dashboard, "retry", 1), ShouldHaveLength, 1)
	})
}
