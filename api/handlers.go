package api

import (
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/config"
	"github.com/typhfeng/projecttrack/manifest"
	"github.com/typhfeng/projecttrack/scanner"
)

const defaultSearchLimit = 100

func (s *Server) health(c *gin.Context) {
	cwd, _ := os.Getwd()
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"config_path": s.ConfigPath,
		"cwd":         cwd,
	})
}

func (s *Server) dashboard(c *gin.Context) {
	force := c.Query("refresh") == "1"
	dashboard, err := s.Manager.Dashboard(force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "dashboard scan failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) search(c *gin.Context) {
	query := c.Query("q")
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	dashboard, err := s.Manager.Dashboard(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"query": query, "count": 0, "results": []projecttrack.SearchItem{}, "error": err.Error()})
		return
	}
	results := scanner.Search(dashboard, query, limit)
	c.JSON(http.StatusOK, gin.H{"query": query, "count": len(results), "results": results})
}

func (s *Server) refresh(c *gin.Context) {
	dashboard, err := s.Manager.Dashboard(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"generated_at": dashboard.GeneratedAt,
		"total_repos":  dashboard.Summary.TotalRepos,
	})
}

func (s *Server) configView(c *gin.Context) {
	conf, err := config.LoadConfig(s.ConfigPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	manifestPath := conf.Scan.ResolveManifestPath(s.ConfigPath)
	man, err := manifest.Load(manifestPath)
	if err != nil {
		man = &manifest.Manifest{}
	}
	repoConfig := conf.Scan.RepoConfig()
	man.MergeInto(&repoConfig)

	tracks := append([]string(nil), scanner.Tracks...)
	sort.Strings(tracks)

	c.JSON(http.StatusOK, gin.H{
		"owner":              repoConfig.Owner,
		"scan_roots":         repoConfig.ScanRoots,
		"include_repos":      repoConfig.IncludeRepos,
		"track_overrides":    repoConfig.TrackOverrides,
		"repo_manifest_path": manifestPath,
		"repo_manifest":      man,
		"track_options":      tracks,
		"config_path":        s.ConfigPath,
	})
}

func (s *Server) group(c *gin.Context) {
	track := c.Param("track")
	if !scanner.IsTrack(track) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid track: " + track})
		return
	}
	dashboard, err := s.Manager.Dashboard(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	repos := []projecttrack.RepoMetrics{}
	for _, repo := range dashboard.Repos {
		if repo.Track == track {
			repos = append(repos, repo)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"track":   track,
		"label":   scanner.TrackLabels[track],
		"summary": dashboard.TrackSummary[track],
		"repos":   repos,
	})
}

func (s *Server) groupSync(c *gin.Context) {
	track := c.Param("track")
	if !scanner.IsTrack(track) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid track: " + track})
		return
	}
	dashboard, err := s.Manager.Dashboard(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	results := []gin.H{}
	for _, repo := range dashboard.Repos {
		if repo.Track != track {
			continue
		}
		res := s.Git.Pull(repo.Path)
		results = append(results, gin.H{
			"id":     repo.ID,
			"name":   repo.Name,
			"path":   repo.Path,
			"code":   res.Code,
			"stdout": res.Stdout,
			"stderr": res.Stderr,
		})
	}
	s.Manager.Invalidate()
	updated, err := s.Manager.Dashboard(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"track":       track,
		"results":     results,
		"total_repos": updated.Summary.TotalRepos,
	})
}
