package scanmanager

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
	"gopkg.in/tomb.v2"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/config"
	"github.com/typhfeng/projecttrack/helpers"
	"github.com/typhfeng/projecttrack/manifest"
	"github.com/typhfeng/projecttrack/metrics"
	"github.com/typhfeng/projecttrack/scanner"
)

// ScanManager serves dashboard snapshots out of a single-slot TTL cache
// and reloads config plus manifest before every real scan, so external
// edits to either file take effect on the next refresh.
type ScanManager struct {
	ConfigPath      string
	VCS             projecttrack.IVersionControl
	Log             zerolog.Logger
	Metrics         *metrics.ScanMetrics
	SnapshotChannel chan<- *projecttrack.Dashboard

	cacheSync deadlock.Mutex
	cached    *projecttrack.Dashboard
	cachedAt  time.Time
	ttl       time.Duration
	tomb      tomb.Tomb
	now       func() time.Time
}

// SetClock overrides the time source, for tests.
func (sm *ScanManager) SetClock(now func() time.Time) {
	sm.now = now
}

func (sm *ScanManager) clock() time.Time {
	if sm.now != nil {
		return sm.now()
	}
	return time.Now()
}

func (sm *ScanManager) loadRepoConfig() (projecttrack.RepoConfig, *config.Config, error) {
	conf, err := config.LoadConfig(sm.ConfigPath)
	if err != nil {
		return projecttrack.RepoConfig{}, nil, err
	}
	repoConfig := conf.Scan.RepoConfig()
	man, err := manifest.Load(conf.Scan.ResolveManifestPath(sm.ConfigPath))
	if err != nil {
		sm.Log.Warn().Str("error", err.Error()).Msg("can't read manifest, continue without it")
	} else {
		man.MergeInto(&repoConfig)
	}
	return repoConfig, conf, nil
}

// Dashboard returns the cached snapshot when it is still fresh, otherwise
// runs a full scan. force bypasses the TTL check.
func (sm *ScanManager) Dashboard(force bool) (*projecttrack.Dashboard, error) {
	sm.cacheSync.Lock()
	defer sm.cacheSync.Unlock()

	if !force && sm.cached != nil && sm.clock().Sub(sm.cachedAt) < sm.ttl {
		if sm.Metrics != nil {
			sm.Metrics.CacheHits.Add(1)
		}
		return sm.cached, nil
	}
	return sm.scanLocked()
}

// Invalidate drops the cached snapshot. The next Dashboard call rescans.
func (sm *ScanManager) Invalidate() {
	sm.cacheSync.Lock()
	defer sm.cacheSync.Unlock()
	sm.cached = nil
}

func (sm *ScanManager) scanLocked() (*projecttrack.Dashboard, error) {
	repoConfig, conf, err := sm.loadRepoConfig()
	if err != nil {
		if sm.Metrics != nil {
			sm.Metrics.ScanFailures.Add(1)
		}
		return nil, err
	}
	sm.ttl = repoConfig.CacheTTL

	start := sm.clock()
	s := &scanner.Scanner{
		VCS:     sm.VCS,
		Workers: conf.Scan.Workers,
		Log:     sm.Log,
		Now:     sm.now,
	}
	dashboard := s.Scan(repoConfig)
	sm.cached = dashboard
	sm.cachedAt = sm.clock()

	if sm.Metrics != nil {
		sm.Metrics.Scans.Add(1)
		sm.Metrics.Repos.Set(float64(len(dashboard.Repos)))
		sm.Metrics.ScanSeconds.Observe(time.Since(start).Seconds())
	}
	if sm.SnapshotChannel != nil {
		select {
		case sm.SnapshotChannel <- dashboard:
		default:
			sm.Log.Debug().Msg("snapshot channel full, skip")
		}
	}
	return dashboard, nil
}

// Start warms the cache and, when refresh_interval is set, keeps the
// snapshot fresh in the background.
func (sm *ScanManager) Start() error {
	repoConfig, conf, err := sm.loadRepoConfig()
	if err != nil {
		return err
	}
	sm.ttl = repoConfig.CacheTTL
	refresh := conf.Scan.RefreshInterval

	sm.tomb.Go(func() error {
		if _, err := sm.Dashboard(true); err != nil {
			sm.Log.Error().Str("error", err.Error()).Msg("initial scan failed")
		}
		if refresh <= 0 {
			<-sm.tomb.Dying()
			return nil
		}
		sm.Log.Debug().Str("interval", helpers.PrettyDuration(refresh)).Msg("background refresh enabled")
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		for {
			select {
			case <-sm.tomb.Dying():
				return nil
			case <-ticker.C:
				if _, err := sm.Dashboard(true); err != nil {
					sm.Log.Error().Str("error", err.Error()).Msg("background refresh failed")
				}
			}
		}
	})
	sm.Log.Debug().Str("service", "scan manager").Msg("started")
	return nil
}

func (sm *ScanManager) Stop() error {
	sm.tomb.Kill(nil)
	if err := sm.tomb.Wait(); err != nil {
		sm.Log.Error().Str("error", err.Error()).Msg("stop")
	}
	sm.Log.Debug().Str("service", "scan manager").Msg("stopped")
	return nil
}
