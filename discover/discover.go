package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/typhfeng/projecttrack"
)

// Repos walks the configured scan roots up to MaxRepoDepth directories
// deep looking for ".git" folders, unions the result with the explicit
// include list, and filters by the exclusion prefixes. An unreadable root
// simply contributes nothing.
func Repos(cfg projecttrack.RepoConfig) []string {
	found := map[string]struct{}{}

	for _, repo := range cfg.IncludeRepos {
		if isWorkTree(repo) {
			if abs, err := filepath.Abs(repo); err == nil {
				found[abs] = struct{}{}
			}
		}
	}

	for _, root := range cfg.ScanRoots {
		for _, repo := range walkRoot(root, cfg.MaxRepoDepth) {
			found[repo] = struct{}{}
		}
	}

	repos := make([]string, 0, len(found))
	for repo := range found {
		if excluded(repo, cfg.ExcludePaths) {
			continue
		}
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

func isWorkTree(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func walkRoot(root string, maxDepth int) []string {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	var repos []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if depthBelow(root, path) > maxDepth {
			return filepath.SkipDir
		}
		if info.Name() == ".git" {
			repos = append(repos, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})
	return repos
}

func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func excluded(repo string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(repo, prefix) {
			return true
		}
	}
	return false
}
