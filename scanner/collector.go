package scanner

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/gitcmd"

	"github.com/rs/zerolog"
)

const (
	issueCollectCap = 120
	issueRetainCap  = 80
	alertDays       = 180
	alertCap        = 80
	alertRetainCap  = 40
	histogramDays   = 84
	trendWeeks      = 12
)

var commitAlertRe = regexp.MustCompile(`(?i)\b(fix|bug|error|fail|todo|problem|blocker|risk|regress)\b`)

// RepoID is the stable identity of a repository: a short hash of its
// absolute path. GitHub names are not unique across scan roots.
func RepoID(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:])[:12]
}

// Collector gathers all per-repository metrics through the version
// control interface. Every git failure inside degrades to a neutral
// value; only a missing or foreign remote skips the repository.
type Collector struct {
	VCS projecttrack.IVersionControl
	Log zerolog.Logger
}

// Collect builds the metrics for one repository. The second return value
// is false when the repository cannot be attributed to the configured
// owner and must be left out of the dashboard.
func (c *Collector) Collect(cfg projecttrack.RepoConfig, now time.Time, repoPath string) (projecttrack.RepoMetrics, bool) {
	remote := c.VCS.RemoteURL(repoPath)
	if remote == "" {
		return projecttrack.RepoMetrics{}, false
	}
	owner, name, ok := gitcmd.ParseOwnerRepo(remote)
	if !ok {
		c.Log.Debug().Str("repo", repoPath).Str("remote", remote).Msg("unparseable remote")
		return projecttrack.RepoMetrics{}, false
	}
	if !strings.EqualFold(owner, cfg.Owner) {
		return projecttrack.RepoMetrics{}, false
	}

	status := c.collectStatus(repoPath)
	commits := projecttrack.CommitWindows{
		Last7d:  c.VCS.CountCommits(repoPath, 7),
		Last30d: c.VCS.CountCommits(repoPath, 30),
		Last90d: c.VCS.CountCommits(repoPath, 90),
	}

	issueHits := c.VCS.IssueMatches(repoPath, issueCollectCap)
	// empty lists stay [] on the wire, never null
	retained := []projecttrack.IssueHit{}
	if len(issueHits) > issueRetainCap {
		retained = issueHits[:issueRetainCap]
	} else if issueHits != nil {
		retained = issueHits
	}

	metrics := projecttrack.RepoMetrics{
		ID:            RepoID(repoPath),
		Name:          name,
		Path:          repoPath,
		Remote:        remote,
		Track:         Classify(repoPath, name, cfg.TrackOverrides),
		Status:        status,
		Commits:       commits,
		WeeklyCommits: c.weeklyCommits(repoPath, now),
		Issues: projecttrack.IssueEvidence{
			Total: len(issueHits),
			Hits:  retained,
		},
		CommitAlerts: c.commitAlerts(repoPath),
	}
	metrics.Progress = Progress(now, status.LastCommit.Date, commits.Last30d, status.Dirty.Total(), metrics.Issues.Total)
	return metrics, true
}

func (c *Collector) collectStatus(repoPath string) projecttrack.RepoStatus {
	branch := c.VCS.Branch(repoPath)
	if branch == "" {
		branch = "-"
	}
	statusLine := c.VCS.StatusLine(repoPath)
	ahead, behind := gitcmd.AheadBehind(statusLine)
	return projecttrack.RepoStatus{
		Branch:     branch,
		StatusLine: gitcmd.CleanStatusLine(statusLine),
		LastCommit: c.VCS.LastCommit(repoPath),
		Dirty:      c.VCS.Dirty(repoPath),
		Ahead:      ahead,
		Behind:     behind,
	}
}

// weeklyCommits buckets commits into ISO week labels and keeps only the
// 12 most recent calendar weeks computed from "now". Log output can carry
// labels just outside the day window when a week straddles the boundary.
func (c *Collector) weeklyCommits(repoPath string, now time.Time) map[string]int {
	counts := map[string]int{}
	for _, week := range c.VCS.CommitWeeks(repoPath, histogramDays) {
		counts[week]++
	}
	kept := map[string]int{}
	for _, label := range WeekLabels(now, trendWeeks) {
		if n, ok := counts[label]; ok {
			kept[label] = n
		}
	}
	return kept
}

func (c *Collector) commitAlerts(repoPath string) []projecttrack.CommitRow {
	alerts := []projecttrack.CommitRow{}
	for _, row := range c.VCS.LogSince(repoPath, alertDays) {
		if !commitAlertRe.MatchString(row.Subject) {
			continue
		}
		alerts = append(alerts, row)
		if len(alerts) >= alertCap {
			break
		}
	}
	if len(alerts) > alertRetainCap {
		alerts = alerts[:alertRetainCap]
	}
	return alerts
}
