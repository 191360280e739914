package scanner

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/typhfeng/projecttrack"
)

type fakeVCS struct {
	remote      string
	branch      string
	statusLine  string
	dirty       projecttrack.DirtyFiles
	lastCommit  projecttrack.LastCommit
	countsByDay map[int]int
	weeks       []string
	log         []projecttrack.CommitRow
	issues      []projecttrack.IssueHit
}

func (f *fakeVCS) RemoteURL(string) string                   { return f.remote }
func (f *fakeVCS) Branch(string) string                      { return f.branch }
func (f *fakeVCS) StatusLine(string) string                  { return f.statusLine }
func (f *fakeVCS) Dirty(string) projecttrack.DirtyFiles      { return f.dirty }
func (f *fakeVCS) LastCommit(string) projecttrack.LastCommit { return f.lastCommit }
func (f *fakeVCS) CountCommits(_ string, days int) int       { return f.countsByDay[days] }
func (f *fakeVCS) CommitWeeks(string, int) []string          { return f.weeks }
func (f *fakeVCS) LogSince(string, int) []projecttrack.CommitRow {
	return f.log
}
func (f *fakeVCS) IssueMatches(_ string, max int) []projecttrack.IssueHit {
	if len(f.issues) > max {
		return f.issues[:max]
	}
	return f.issues
}

func TestCollect(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := projecttrack.RepoConfig{Owner: "typhfeng"}

	Convey("A repo with a matching remote produces full metrics", t, func() {
		vcs := &fakeVCS{
			remote:     "git@github.com:typhfeng/stk-signals.git",
			branch:     "main",
			statusLine: "## main...origin/main [ahead 2, behind 1]",
			dirty:      projecttrack.DirtyFiles{Modified: 1, Untracked: 2},
			lastCommit: projecttrack.LastCommit{
				Date: now.AddDate(0, 0, -1).Format("2006-01-02 15:04:05 -0700"), Hash: "abc1234", Subject: "tune thresholds",
			},
			countsByDay: map[int]int{7: 3, 30: 8, 90: 20},
			weeks:       WeekLabels(now, 2),
			log: []projecttrack.CommitRow{
				{Date: "2024-06-14", Hash: "abc1234", Subject: "fix flaky backfill"},
				{Date: "2024-06-13", Hash: "def5678", Subject: "add dashboard"},
			},
			issues: []projecttrack.IssueHit{{File: "main.py", Line: 10, Text: "# TODO: retry"}},
		}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}

		m, ok := c.Collect(cfg, now, "/home/u/git/stk-signals")
		So(ok, ShouldBeTrue)
		So(m.ID, ShouldEqual, RepoID("/home/u/git/stk-signals"))
		So(m.Name, ShouldEqual, "stk-signals")
		So(m.Track, ShouldEqual, "finance")
		So(m.Status.Branch, ShouldEqual, "main")
		So(m.Status.Ahead, ShouldEqual, 2)
		So(m.Status.Behind, ShouldEqual, 1)
		So(m.Status.StatusLine, ShouldNotStartWith, "## ")
		So(m.Commits.Last30d, ShouldEqual, 8)
		So(m.WeeklyCommits, ShouldHaveLength, 2)
		So(m.Issues.Total, ShouldEqual, 1)
		So(m.CommitAlerts, ShouldHaveLength, 1)
		So(m.CommitAlerts[0].Subject, ShouldEqual, "fix flaky backfill")
		So(m.Progress.Score, ShouldBeGreaterThan, 0)
	})

	Convey("Repos without a remote are skipped", t, func() {
		c := &Collector{VCS: &fakeVCS{}, Log: zerolog.Nop()}
		_, ok := c.Collect(cfg, now, "/home/u/git/local-only")
		So(ok, ShouldBeFalse)
	})

	Convey("Owner matching is case insensitive, foreign owners are skipped", t, func() {
		c := &Collector{VCS: &fakeVCS{remote: "https://github.com/stranger/tool.git"}, Log: zerolog.Nop()}
		_, ok := c.Collect(cfg, now, "/home/u/git/tool")
		So(ok, ShouldBeFalse)

		c = &Collector{VCS: &fakeVCS{remote: "https://github.com/TyphFeng/tool.git"}, Log: zerolog.Nop()}
		_, ok = c.Collect(cfg, now, "/home/u/git/tool")
		So(ok, ShouldBeTrue)
	})

	Convey("Unparseable remotes are skipped", t, func() {
		c := &Collector{VCS: &fakeVCS{remote: "not a url"}, Log: zerolog.Nop()}
		_, ok := c.Collect(cfg, now, "/home/u/git/odd")
		So(ok, ShouldBeFalse)
	})

	Convey("A missing branch renders as a dash", t, func() {
		vcs := &fakeVCS{remote: "https://github.com/typhfeng/fresh.git"}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}
		m, ok := c.Collect(cfg, now, "/home/u/git/fresh")
		So(ok, ShouldBeTrue)
		So(m.Status.Branch, ShouldEqual, "-")
		So(m.Progress.Stage, ShouldEqual, StageNotStarted)
	})

	Convey("Empty evidence marshals as empty lists, not null", t, func() {
		vcs := &fakeVCS{remote: "https://github.com/typhfeng/quiet.git"}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}
		m, ok := c.Collect(cfg, now, "/home/u/git/quiet")
		So(ok, ShouldBeTrue)
		So(m.Issues.Hits, ShouldNotBeNil)
		So(m.CommitAlerts, ShouldNotBeNil)

		body, err := json.Marshal(m)
		So(err, ShouldBeNil)
		So(string(body), ShouldContainSubstring, `"hits":[]`)
		So(string(body), ShouldContainSubstring, `"commit_alerts":[]`)
	})

	Convey("Issue hits record the full count but retain a bounded slice", t, func() {
		vcs := &fakeVCS{remote: "https://github.com/typhfeng/big.git"}
		for i := 0; i < 200; i++ {
			vcs.issues = append(vcs.issues, projecttrack.IssueHit{File: "f.go", Line: i, Text: "// TODO"})
		}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}
		m, _ := c.Collect(cfg, now, "/home/u/git/big")
		So(m.Issues.Total, ShouldEqual, issueCollectCap)
		So(m.Issues.Hits, ShouldHaveLength, issueRetainCap)
	})

	Convey("Commit alerts filter by keyword and are bounded", t, func() {
		vcs := &fakeVCS{remote: "https://github.com/typhfeng/chatty.git"}
		for i := 0; i < 100; i++ {
			vcs.log = append(vcs.log,
				projecttrack.CommitRow{Date: "2024-06-01", Hash: fmt.Sprintf("%07d", i), Subject: "fix crash"},
				projecttrack.CommitRow{Date: "2024-06-01", Hash: fmt.Sprintf("a%06d", i), Subject: "routine update"},
			)
		}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}
		m, _ := c.Collect(cfg, now, "/home/u/git/chatty")
		So(m.CommitAlerts, ShouldHaveLength, alertRetainCap)
		for _, alert := range m.CommitAlerts {
			So(alert.Subject, ShouldEqual, "fix crash")
		}
	})

	Convey("Weekly histogram drops labels outside the trend window", t, func() {
		vcs := &fakeVCS{
			remote: "https://github.com/typhfeng/steady.git",
			weeks:  append([]string{"2019-W01"}, WeekLabels(now, 1)...),
		}
		c := &Collector{VCS: vcs, Log: zerolog.Nop()}
		m, _ := c.Collect(cfg, now, "/home/u/git/steady")
		So(m.WeeklyCommits, ShouldHaveLength, 1)
	})
}

func TestRepoID(t *testing.T) {
	Convey("IDs are stable 12 char hashes of the path", t, func() {
		id := RepoID("/home/u/git/stk-signals")
		So(id, ShouldHaveLength, 12)
		So(RepoID("/home/u/git/stk-signals"), ShouldEqual, id)
		So(RepoID("/home/u/git/other"), ShouldNotEqual, id)
	})
}
