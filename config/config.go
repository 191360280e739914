package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/helpers"

	yaml "gopkg.in/yaml.v2"
)

type Common struct {
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	DashboardFile string `yaml:"dashboard_file"`
}

type Scan struct {
	Owner                 string            `yaml:"owner"`
	ScanRoots             []string          `yaml:"scan_roots"`
	IncludeRepos          []string          `yaml:"include_repos"`
	MaxRepoDepth          int               `yaml:"max_repo_depth"`
	CacheTTLSeconds       int               `yaml:"cache_ttl_seconds"`
	ExcludePaths          []string          `yaml:"exclude_paths"`
	TrackOverrides        map[string]string `yaml:"track_overrides"`
	ManifestPath          string            `yaml:"repo_manifest_path"`
	Workers               int               `yaml:"workers"`
	RefreshIntervalString string            `yaml:"refresh_interval"`
	CommandTimeoutString  string            `yaml:"command_timeout"`
	RefreshInterval       time.Duration     `yaml:"-"`
	CommandTimeout        time.Duration     `yaml:"-"`
}

type HTTP struct {
	Listen string `yaml:"listen"`
}

type SMTP struct {
	Enable    bool   `yaml:"enable"`
	From      string `yaml:"mail_from"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	TLS       bool   `yaml:"tls"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Recipient string `yaml:"recipient"`
	Delay     string `yaml:"delay"`
}

type Webhook struct {
	Enable  bool              `yaml:"enable"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
}

type Metrics struct {
	GraphiteAddress    string        `yaml:"graphite_address"`
	Prefix             string        `yaml:"prefix"`
	SendIntervalString string        `yaml:"send_interval"`
	SendInterval       time.Duration `yaml:"-"`
}

type Config struct {
	Common  *Common  `yaml:"common"`
	Scan    *Scan    `yaml:"scan"`
	HTTP    *HTTP    `yaml:"http"`
	SMTP    *SMTP    `yaml:"smtp"`
	Webhook *Webhook `yaml:"webhook"`
	Metrics *Metrics `yaml:"metrics"`
}

func defaultConfig() *Config {
	return &Config{
		Common: &Common{
			LogLevel: "info",
		},
		Scan: &Scan{
			Owner:                "typhfeng",
			MaxRepoDepth:         6,
			CacheTTLSeconds:      120,
			ManifestPath:         "repo_manifest.json",
			CommandTimeoutString: "1m",
		},
		HTTP: &HTTP{
			Listen: ":5055",
		},
		SMTP: &SMTP{
			Delay: "5m",
		},
		Webhook: &Webhook{
			Method: "POST",
		},
		Metrics: &Metrics{
			SendIntervalString: "1m",
		},
	}
}

// LoadConfig reads and validates the settings file. Durations given in the
// "2h30m" notation are resolved here so the rest of the code only sees
// time.Duration values.
func LoadConfig(configLocation string) (*Config, error) {
	config := defaultConfig()
	configYaml, err := ioutil.ReadFile(configLocation)
	if err != nil {
		return nil, fmt.Errorf("can't read with: %v", err)
	}
	if err = yaml.Unmarshal(configYaml, &config); err != nil {
		return nil, fmt.Errorf("can't parse with: %v", err)
	}
	if config.Scan == nil {
		return nil, fmt.Errorf("scan section is required")
	}
	defaults := defaultConfig()
	if config.Common == nil {
		config.Common = defaults.Common
	}
	if config.HTTP == nil {
		config.HTTP = defaults.HTTP
	}
	if config.SMTP == nil {
		config.SMTP = defaults.SMTP
	}
	if config.Webhook == nil {
		config.Webhook = defaults.Webhook
	}
	if config.Metrics == nil {
		config.Metrics = defaults.Metrics
	}
	if config.Scan.MaxRepoDepth < 1 {
		config.Scan.MaxRepoDepth = 6
	}
	if config.Scan.CacheTTLSeconds < 1 {
		config.Scan.CacheTTLSeconds = 120
	}
	if config.Scan.RefreshIntervalString != "" {
		if config.Scan.RefreshInterval, err = helpers.ParseDuration(config.Scan.RefreshIntervalString); err != nil {
			return nil, err
		}
	}
	if config.Scan.CommandTimeout, err = helpers.ParseDuration(config.Scan.CommandTimeoutString); err != nil {
		return nil, err
	}
	if config.Scan.CommandTimeout < time.Second {
		config.Scan.CommandTimeout = time.Minute
	}
	if config.Metrics.SendInterval, err = helpers.ParseDuration(config.Metrics.SendIntervalString); err != nil {
		return nil, err
	}
	return config, nil
}

// CacheTTL returns the snapshot time-to-live.
func (s *Scan) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// RepoConfig converts the scan section into the shape the scanner
// consumes. Paths are expanded here so the scanner never sees "~".
func (s *Scan) RepoConfig() projecttrack.RepoConfig {
	roots := make([]string, 0, len(s.ScanRoots))
	for _, root := range s.ScanRoots {
		roots = append(roots, helpers.ExpandPath(root))
	}
	include := make([]string, 0, len(s.IncludeRepos))
	for _, repo := range s.IncludeRepos {
		include = append(include, helpers.ExpandPath(repo))
	}
	exclude := make([]string, 0, len(s.ExcludePaths))
	for _, path := range s.ExcludePaths {
		exclude = append(exclude, helpers.ExpandPath(path))
	}
	overrides := map[string]string{}
	for prefix, track := range s.TrackOverrides {
		overrides[helpers.ExpandPath(prefix)] = track
	}
	return projecttrack.RepoConfig{
		Owner:          s.Owner,
		ScanRoots:      roots,
		IncludeRepos:   include,
		MaxRepoDepth:   s.MaxRepoDepth,
		CacheTTL:       s.CacheTTL(),
		ExcludePaths:   exclude,
		TrackOverrides: overrides,
	}
}

// ResolveManifestPath makes the manifest location absolute, resolving a
// relative path against the config file's directory.
func (s *Scan) ResolveManifestPath(configLocation string) string {
	p := s.ManifestPath
	if p == "" {
		p = "repo_manifest.json"
	}
	p = helpers.ExpandPath(p)
	if filepath.IsAbs(s.ManifestPath) || s.ManifestPath == "" || s.ManifestPath[0] == '~' {
		return p
	}
	base, err := filepath.Abs(filepath.Dir(configLocation))
	if err != nil {
		return p
	}
	return filepath.Join(base, s.ManifestPath)
}

func PrintDefaultConfig() {
	c := defaultConfig()
	d, _ := yaml.Marshal(&c)
	fmt.Print(string(d))
}
