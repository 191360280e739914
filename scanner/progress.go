package scanner

import (
	"time"

	"github.com/typhfeng/projecttrack"
)

const (
	StageNotStarted   = "Not Started"
	StageStalled      = "Stalled"
	StageAccelerating = "Accelerating"
	StageInProgress   = "In Progress"
	StageMaintaining  = "Maintaining"
	StageAtRisk       = "At Risk"
)

// Layouts seen in `git log --date=iso` output plus the degenerate
// date-only form.
var commitDateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02",
}

func ParseCommitDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range commitDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Progress derives the 0-100 score and the lifecycle stage. Both are pure
// functions of recency, 30-day activity, working-tree dirt and issue
// volume; the stage is not a bucketing of the score.
func Progress(now time.Time, lastCommitDate string, commits30, dirtyCount, issueTotal int) projecttrack.Progress {
	last, ok := ParseCommitDate(lastCommitDate)
	if !ok {
		// never committed, or an unparseable date: same thing to us
		return projecttrack.Progress{Score: 0, Stage: StageNotStarted}
	}

	daysSince := int(now.Sub(last).Hours() / 24)
	if daysSince < 0 {
		daysSince = 0
	}

	recency := 30 - min(daysSince, 30)
	activity := min(commits30*3, 35)
	hygienePenalty := min(dirtyCount*2, 20)
	issuePenalty := min(issueTotal/30, 10)

	score := 20 + recency + activity - hygienePenalty - issuePenalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var stage string
	switch {
	case commits30 == 0 && daysSince > 90:
		stage = StageStalled
	case commits30 >= 12 && daysSince <= 7:
		stage = StageAccelerating
	case commits30 >= 4 && daysSince <= 30:
		stage = StageInProgress
	case daysSince <= 60:
		stage = StageMaintaining
	default:
		stage = StageAtRisk
	}

	return projecttrack.Progress{Score: score, Stage: stage}
}
