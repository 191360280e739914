package scanner

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/typhfeng/projecttrack"
)

// Aggregate merges per-repository metrics into the dashboard document:
// global counters, per-track rollups, the track-by-week trend matrix and
// the flattened evidence pool. The input order must be deterministic
// (discovery order); the pool preserves it while the repo list is
// re-sorted by (score, 30-day commits) descending.
func Aggregate(cfg projecttrack.RepoConfig, now time.Time, repos []projecttrack.RepoMetrics) *projecttrack.Dashboard {
	weekLabels := WeekLabels(now, trendWeeks)

	trend := map[string]map[string]int{}
	trackSummary := map[string]projecttrack.TrackSummary{}
	for _, track := range Tracks {
		trackSummary[track] = projecttrack.TrackSummary{Label: TrackLabels[track]}
		cells := map[string]int{}
		for _, week := range weekLabels {
			cells[week] = 0
		}
		trend[track] = cells
	}

	summary := projecttrack.Summary{TotalRepos: len(repos)}
	pool := []projecttrack.SearchItem{}
	progressSums := map[string]int{}

	for _, repo := range repos {
		track := repo.Track
		if !IsTrack(track) {
			track = DefaultTrack
		}

		s := trackSummary[track]
		s.Repos++
		s.Commits30d += repo.Commits.Last30d
		s.Commits90d += repo.Commits.Last90d
		s.Issues += repo.Issues.Total
		if repo.Commits.Last30d > 0 {
			s.ActiveRepos++
		}
		trackSummary[track] = s
		progressSums[track] += repo.Progress.Score

		for week, count := range repo.WeeklyCommits {
			if _, ok := trend[track][week]; ok {
				trend[track][week] += count
			}
		}

		summary.TotalCommits30d += repo.Commits.Last30d
		summary.TotalCommits90d += repo.Commits.Last90d
		summary.TotalIssueHits += repo.Issues.Total
		if repo.Commits.Last30d > 0 {
			summary.ActiveRepos30d++
		}
		if repo.Status.Dirty.Total() > 0 {
			summary.DirtyRepos++
		}

		for _, hit := range repo.Issues.Hits {
			pool = append(pool, projecttrack.SearchItem{
				Repo:    repo.Name,
				Path:    repo.Path,
				Track:   repo.Track,
				Type:    "code_issue",
				Title:   hit.File + ":" + strconv.Itoa(hit.Line),
				Content: hit.Text,
			})
		}
		for _, alert := range repo.CommitAlerts {
			pool = append(pool, projecttrack.SearchItem{
				Repo:    repo.Name,
				Path:    repo.Path,
				Track:   repo.Track,
				Type:    "commit_alert",
				Title:   alert.Date + " " + alert.Hash,
				Content: alert.Subject,
			})
		}
	}

	for _, track := range Tracks {
		s := trackSummary[track]
		if s.Repos > 0 {
			s.AvgProgress = math.Round(float64(progressSums[track])/float64(s.Repos)*10) / 10
		}
		trackSummary[track] = s
	}

	series := map[string][]int{}
	for _, track := range Tracks {
		row := make([]int, len(weekLabels))
		for i, week := range weekLabels {
			row[i] = trend[track][week]
		}
		series[track] = row
	}

	sorted := make([]projecttrack.RepoMetrics, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Progress.Score != sorted[j].Progress.Score {
			return sorted[i].Progress.Score > sorted[j].Progress.Score
		}
		return sorted[i].Commits.Last30d > sorted[j].Commits.Last30d
	})

	return &projecttrack.Dashboard{
		GeneratedAt:  now.Format(time.RFC3339),
		Owner:        cfg.Owner,
		ScanScope:    cfg.ScanRoots,
		Summary:      summary,
		TrackSummary: trackSummary,
		Trend: projecttrack.Trend{
			Labels:    weekLabels,
			Series:    series,
			LabelsMap: TrackLabels,
		},
		Repos:      sorted,
		SearchPool: pool,
	}
}
