package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/typhfeng/projecttrack/config"
	"github.com/typhfeng/projecttrack/helpers"
	"github.com/typhfeng/projecttrack/manifest"
	"github.com/typhfeng/projecttrack/scanner"
)

type repoRequest struct {
	Path  string `json:"path"`
	Track string `json:"track"`
}

func (s *Server) loadManifest() (*manifest.Manifest, string, error) {
	conf, err := config.LoadConfig(s.ConfigPath)
	if err != nil {
		return nil, "", err
	}
	manifestPath := conf.Scan.ResolveManifestPath(s.ConfigPath)
	man, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, "", err
	}
	return man, manifestPath, nil
}

func (s *Server) addRepo(c *gin.Context) {
	var req repoRequest
	c.ShouldBindJSON(&req)
	path := strings.TrimSpace(req.Path)
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "path is required"})
		return
	}
	repoPath := helpers.ExpandPath(path)
	if info, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "not a git repo: " + repoPath})
		return
	}
	track := strings.TrimSpace(req.Track)
	if !scanner.IsTrack(track) {
		track = ""
	}

	man, manifestPath, err := s.loadManifest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	man.Upsert(repoPath, track)
	if err := man.Save(manifestPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	s.Manager.Invalidate()
	dashboard, err := s.Manager.Dashboard(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"path":        repoPath,
		"track":       track,
		"total_repos": dashboard.Summary.TotalRepos,
	})
}

func (s *Server) removeRepo(c *gin.Context) {
	var req repoRequest
	c.ShouldBindJSON(&req)
	path := strings.TrimSpace(req.Path)
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "path is required"})
		return
	}
	repoPath := helpers.ExpandPath(path)

	man, manifestPath, err := s.loadManifest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	removed := man.Remove(repoPath)
	if removed {
		if err := man.Save(manifestPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		s.Manager.Invalidate()
	}

	dashboard, err := s.Manager.Dashboard(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"removed":     removed,
		"path":        repoPath,
		"total_repos": dashboard.Summary.TotalRepos,
	})
}
