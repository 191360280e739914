package projecttrack

import (
	"time"
)

// RepoConfig is the resolved scan configuration for a single scan pass.
// It is immutable once built; the scan manager rebuilds it from the config
// file (plus the manifest) before every rescan.
type RepoConfig struct {
	Owner          string
	ScanRoots      []string
	IncludeRepos   []string
	MaxRepoDepth   int
	CacheTTL       time.Duration
	ExcludePaths   []string
	TrackOverrides map[string]string
}

type LastCommit struct {
	Date    string `json:"date"`
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
}

type DirtyFiles struct {
	Modified  int `json:"modified"`
	Untracked int `json:"untracked"`
}

func (d DirtyFiles) Total() int {
	return d.Modified + d.Untracked
}

type RepoStatus struct {
	Branch     string     `json:"branch"`
	StatusLine string     `json:"status_line"`
	LastCommit LastCommit `json:"last_commit"`
	Dirty      DirtyFiles `json:"dirty"`
	Ahead      int        `json:"ahead"`
	Behind     int        `json:"behind"`
}

type CommitWindows struct {
	Last7d  int `json:"last_7d"`
	Last30d int `json:"last_30d"`
	Last90d int `json:"last_90d"`
}

type IssueHit struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

type IssueEvidence struct {
	Total int        `json:"total"`
	Hits  []IssueHit `json:"hits"`
}

type CommitRow struct {
	Date    string `json:"date"`
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
}

type Progress struct {
	Score int    `json:"score"`
	Stage string `json:"stage"`
}

// RepoMetrics is everything the scanner knows about one repository. The ID
// is a short hash of the absolute path, not the GitHub name, since names
// may collide across scan roots.
type RepoMetrics struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Path          string         `json:"path"`
	Remote        string         `json:"remote"`
	Track         string         `json:"track"`
	Status        RepoStatus     `json:"status"`
	Commits       CommitWindows  `json:"commits"`
	WeeklyCommits map[string]int `json:"weekly_commits"`
	Issues        IssueEvidence  `json:"issues"`
	CommitAlerts  []CommitRow    `json:"commit_alerts"`
	Progress      Progress       `json:"progress"`
}

type Summary struct {
	TotalRepos      int `json:"total_repos"`
	ActiveRepos30d  int `json:"active_repos_30d"`
	TotalCommits30d int `json:"total_commits_30d"`
	TotalCommits90d int `json:"total_commits_90d"`
	DirtyRepos      int `json:"dirty_repos"`
	TotalIssueHits  int `json:"total_issue_hits"`
}

type TrackSummary struct {
	Label       string  `json:"label"`
	Repos       int     `json:"repos"`
	ActiveRepos int     `json:"active_repos"`
	Commits30d  int     `json:"commits_30d"`
	Commits90d  int     `json:"commits_90d"`
	Issues      int     `json:"issues"`
	AvgProgress float64 `json:"avg_progress"`
}

type Trend struct {
	Labels    []string          `json:"labels"`
	Series    map[string][]int  `json:"series"`
	LabelsMap map[string]string `json:"labels_map"`
}

type SearchItem struct {
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Track   string `json:"track"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Dashboard is the aggregate scan result. It is built wholesale on every
// rescan and cached as a single value, never patched in place.
type Dashboard struct {
	GeneratedAt  string                  `json:"generated_at"`
	Owner        string                  `json:"owner"`
	ScanScope    []string                `json:"scan_scope"`
	Summary      Summary                 `json:"summary"`
	TrackSummary map[string]TrackSummary `json:"track_summary"`
	Trend        Trend                   `json:"trend"`
	Repos        []RepoMetrics           `json:"repos"`
	SearchPool   []SearchItem            `json:"search_pool"`
}

// CmdResult is the captured outcome of one external command. Action
// endpoints return it to the caller as-is.
type CmdResult struct {
	Code   int    `json:"code"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
}

func (r CmdResult) OK() bool {
	return r.Code == 0
}

// IVersionControl is the read-only view of a repository's version control
// data. Every method recovers from a missing or failing git binary by
// returning a neutral zero value.
type IVersionControl interface {
	RemoteURL(repo string) string
	Branch(repo string) string
	StatusLine(repo string) string
	Dirty(repo string) DirtyFiles
	LastCommit(repo string) LastCommit
	CountCommits(repo string, days int) int
	CommitWeeks(repo string, days int) []string
	LogSince(repo string, days int) []CommitRow
	IssueMatches(repo string, max int) []IssueHit
}

type ISnapshotSender interface {
	Start() error
	Send(*Dashboard) error
	Stop() error
}
