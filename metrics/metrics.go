package metrics

import (
	m "github.com/go-kit/kit/metrics"
	"github.com/rs/zerolog"

	"github.com/typhfeng/projecttrack/config"
)

type IMetricsRepo interface {
	CreateCounter(string) m.Counter
	CreateGauge(string) m.Gauge
	CreateHistogram(string) m.Histogram
	Stop() error
}

// ScanMetrics bundles everything the scan pipeline reports.
type ScanMetrics struct {
	Scans        m.Counter
	CacheHits    m.Counter
	ScanFailures m.Counter
	Repos        m.Gauge
	ScanSeconds  m.Histogram
}

func NewScanMetrics(repo IMetricsRepo) *ScanMetrics {
	return &ScanMetrics{
		Scans:        repo.CreateCounter("scans.total"),
		CacheHits:    repo.CreateCounter("scans.cache_hits"),
		ScanFailures: repo.CreateCounter("scans.failures"),
		Repos:        repo.CreateGauge("repos.count"),
		ScanSeconds:  repo.CreateHistogram("scans.duration_seconds"),
	}
}

func StartMetricsRepo(config *config.Metrics, log zerolog.Logger) IMetricsRepo {
	if config.GraphiteAddress != "" && config.Prefix != "" {
		return startGraphiteRepo(config.GraphiteAddress, config.Prefix, config.SendInterval, &log)
	}
	return &noopRepo{}
}
