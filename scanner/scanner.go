package scanner

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/discover"
)

type Scanner struct {
	VCS     projecttrack.IVersionControl
	Workers int
	Log     zerolog.Logger
	Now     func() time.Time
}

func (s *Scanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return 4
}

// Scan walks the configured roots, collects metrics for every matching
// repository and aggregates the result into a dashboard snapshot.
func (s *Scanner) Scan(cfg projecttrack.RepoConfig) *projecttrack.Dashboard {
	start := s.now()
	paths := discover.Repos(cfg)
	s.Log.Debug().Int("candidates", len(paths)).Msg("repo discovery complete")

	collector := &Collector{VCS: s.VCS, Log: s.Log}
	results := make([]*projecttrack.RepoMetrics, len(paths))
	jobs := make(chan int)
	wg := sync.WaitGroup{}

	for w := 0; w < s.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				metrics, ok := collector.Collect(cfg, start, paths[i])
				if !ok {
					continue
				}
				results[i] = &metrics
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	collected := make([]projecttrack.RepoMetrics, 0, len(results))
	for _, r := range results {
		if r != nil {
			collected = append(collected, *r)
		}
	}
	s.Log.Info().
		Int("repos", len(collected)).
		Str("duration", time.Since(start).String()).
		Msg("scan complete")
	return Aggregate(cfg, start, collected)
}
