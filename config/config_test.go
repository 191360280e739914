package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	location := filepath.Join(dir, "track_config.yml")
	if err := ioutil.WriteFile(location, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return location
}

func TestLoadConfig(t *testing.T) {
	Convey("missing file", t, func() {
		_, err := LoadConfig("/nonexistent/track_config.yml")
		So(err, ShouldNotBeNil)
	})
	Convey("defaults apply", t, func() {
		location := writeConfig(t, "scan:\n  scan_roots:\n    - /tmp/git\n")
		conf, err := LoadConfig(location)
		So(err, ShouldBeNil)
		So(conf.Scan.Owner, ShouldEqual, "typhfeng")
		So(conf.Scan.MaxRepoDepth, ShouldEqual, 6)
		So(conf.Scan.CacheTTL(), ShouldEqual, 120*time.Second)
		So(conf.Scan.CommandTimeout, ShouldEqual, time.Minute)
		So(conf.HTTP.Listen, ShouldEqual, ":5055")
	})
	Convey("explicit values win", t, func() {
		location := writeConfig(t, `
common:
  log_level: debug
scan:
  owner: someone
  max_repo_depth: 3
  cache_ttl_seconds: 30
  command_timeout: 10s
  track_overrides:
    /home/someone/git/stk-tools: finance
http:
  listen: ":9900"
`)
		conf, err := LoadConfig(location)
		So(err, ShouldBeNil)
		So(conf.Scan.Owner, ShouldEqual, "someone")
		So(conf.Scan.CacheTTL(), ShouldEqual, 30*time.Second)
		So(conf.Scan.CommandTimeout, ShouldEqual, 10*time.Second)
		So(conf.Scan.TrackOverrides["/home/someone/git/stk-tools"], ShouldEqual, "finance")
		So(conf.HTTP.Listen, ShouldEqual, ":9900")
	})
	Convey("garbage yaml", t, func() {
		location := writeConfig(t, "scan: [broken")
		_, err := LoadConfig(location)
		So(err, ShouldNotBeNil)
	})
}

func TestResolveManifestPath(t *testing.T) {
	Convey("relative manifest resolves against the config dir", t, func() {
		location := writeConfig(t, "scan:\n  repo_manifest_path: repo_manifest.json\n")
		conf, err := LoadConfig(location)
		So(err, ShouldBeNil)
		So(conf.Scan.ResolveManifestPath(location), ShouldEqual, filepath.Join(filepath.Dir(location), "repo_manifest.json"))
	})
	Convey("absolute manifest path is kept", t, func() {
		location := writeConfig(t, "scan:\n  repo_manifest_path: /var/lib/track/repo_manifest.json\n")
		conf, err := LoadConfig(location)
		So(err, ShouldBeNil)
		So(conf.Scan.ResolveManifestPath(location), ShouldEqual, "/var/lib/track/repo_manifest.json")
	})
}
