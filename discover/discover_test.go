package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/typhfeng/projecttrack"

	. "github.com/smartystreets/goconvey/convey"
)

func makeRepo(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Join(path, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRepos(t *testing.T) {
	Convey("given a tree of repositories", t, func() {
		root := t.TempDir()
		alpha := makeRepo(t, root, "alpha")
		beta := makeRepo(t, root, "work", "beta")
		vendored := makeRepo(t, root, "work", "beta", "vendor", "dep")
		_ = vendored

		Convey("finds nested repos up to the depth limit", func() {
			repos := Repos(projecttrack.RepoConfig{
				ScanRoots:    []string{root},
				MaxRepoDepth: 3,
			})
			So(repos, ShouldResemble, []string{alpha, beta})
		})

		Convey("a deeper limit reaches the vendored clone too", func() {
			repos := Repos(projecttrack.RepoConfig{
				ScanRoots:    []string{root},
				MaxRepoDepth: 6,
			})
			So(len(repos), ShouldEqual, 3)
		})

		Convey("exclusion prefixes drop matching paths", func() {
			repos := Repos(projecttrack.RepoConfig{
				ScanRoots:    []string{root},
				MaxRepoDepth: 3,
				ExcludePaths: []string{filepath.Join(root, "work")},
			})
			So(repos, ShouldResemble, []string{alpha})
		})

		Convey("include list unions with discovery, deduplicated", func() {
			outside := makeRepo(t, t.TempDir(), "solo")
			repos := Repos(projecttrack.RepoConfig{
				ScanRoots:    []string{root},
				IncludeRepos: []string{outside, alpha, filepath.Join(root, "not-a-repo")},
				MaxRepoDepth: 3,
			})
			So(len(repos), ShouldEqual, 3)
			So(repos, ShouldContain, outside)
			So(repos, ShouldContain, alpha)
		})
	})

	Convey("a missing scan root yields nothing", t, func() {
		repos := Repos(projecttrack.RepoConfig{
			ScanRoots:    []string{"/does/not/exist"},
			MaxRepoDepth: 4,
		})
		So(repos, ShouldBeEmpty)
	})
}
