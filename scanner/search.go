package scanner

import (
	"strings"

	"github.com/typhfeng/projecttrack"
)

// Search runs a case-insensitive substring lookup over the evidence pool.
// An empty query returns the head of the pool in original order.
func Search(dashboard *projecttrack.Dashboard, query string, limit int) []projecttrack.SearchItem {
	if limit < 0 {
		limit = 0
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		if limit > len(dashboard.SearchPool) {
			limit = len(dashboard.SearchPool)
		}
		return dashboard.SearchPool[:limit]
	}

	results := []projecttrack.SearchItem{}
	for _, item := range dashboard.SearchPool {
		if len(results) >= limit {
			break
		}
		hay := strings.ToLower(item.Repo + " " + item.Title + " " + item.Content + " " + item.Track)
		if strings.Contains(hay, q) {
			results = append(results, item)
		}
	}
	return results
}
