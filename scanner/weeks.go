package scanner

import (
	"fmt"
	"time"
)

// WeekLabels returns the n most recent ISO year-week labels (the %G-W%V
// shape git emits), oldest first. Both the per-repo histogram and the
// trend matrix use this one generator so the two can never drift.
func WeekLabels(now time.Time, n int) []string {
	labels := make([]string, n)
	current := now
	for i := n - 1; i >= 0; i-- {
		year, week := current.ISOWeek()
		labels[i] = fmt.Sprintf("%d-W%02d", year, week)
		current = current.AddDate(0, 0, -7)
	}
	return labels
}
