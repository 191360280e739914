package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/gitcmd"
	"github.com/typhfeng/projecttrack/todo"
)

const recentCommitsLimit = 20

func (s *Server) repoByID(id string) *projecttrack.RepoMetrics {
	dashboard, err := s.Manager.Dashboard(false)
	if err != nil {
		return nil
	}
	for i := range dashboard.Repos {
		if dashboard.Repos[i].ID == id {
			return &dashboard.Repos[i]
		}
	}
	return nil
}

// repoDetailFields collects everything the detail view shows beyond the
// scan metrics: commit history, last commit's files, TODO items, live
// working tree state and open GitHub issues.
func (s *Server) repoDetailFields(repo *projecttrack.RepoMetrics) gin.H {
	recentCommits := s.Git.RecentCommits(repo.Path, recentCommitsLimit)

	var lastFiles []string
	if hash := strings.TrimSpace(repo.Status.LastCommit.Hash); hash != "" {
		lastFiles = s.Git.CommitFiles(repo.Path, hash)
	}

	todos, err := todo.List(repo.Path)
	if err != nil {
		s.Log.Warn().Str("error", err.Error()).Str("repo", repo.Path).Msg("can't read todos")
	}

	openIssues := []gin.H{}
	issuesErr := ""
	if owner, name, ok := gitcmd.ParseOwnerRepo(repo.Remote); ok && s.GitHub != nil {
		issues, err := s.GitHub.OpenIssues(owner, name)
		if err != nil {
			issuesErr = err.Error()
		}
		for _, issue := range issues {
			openIssues = append(openIssues, gin.H{
				"number":     issue.Number,
				"title":      issue.Title,
				"state":      issue.State,
				"url":        issue.URL,
				"created_at": issue.CreatedAt,
			})
		}
	}

	return gin.H{
		"repo":               repo,
		"recent_commits":     recentCommits,
		"last_commit_files":  lastFiles,
		"open_issues":        openIssues,
		"open_issues_error":  issuesErr,
		"todos":              todos,
		"working_tree_short": s.Git.ShortStatus(repo.Path),
	}
}

func withDetails(base gin.H, details gin.H) gin.H {
	for k, v := range details {
		base[k] = v
	}
	return base
}

func (s *Server) repoDetails(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	c.JSON(http.StatusOK, withDetails(gin.H{"ok": true}, s.repoDetailFields(repo)))
}

func (s *Server) repoSync(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	res := s.Git.Pull(repo.Path)
	s.Manager.Invalidate()
	c.JSON(http.StatusOK, withDetails(gin.H{
		"ok":   res.OK(),
		"sync": res,
	}, s.refreshedDetails(c.Param("id"), repo)))
}

func (s *Server) repoCommit(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	var req struct {
		Message string `json:"message"`
		Push    *bool  `json:"push"`
	}
	c.ShouldBindJSON(&req)
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "message is required"})
		return
	}
	// push unless the caller opted out; a local-only commit is the exception
	push := req.Push == nil || *req.Push
	result := s.Git.CommitPush(repo.Path, message, push)
	s.Manager.Invalidate()
	c.JSON(http.StatusOK, withDetails(gin.H{
		"ok":            result.OK,
		"commit_result": result,
	}, s.refreshedDetails(c.Param("id"), repo)))
}

func (s *Server) repoIssue(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	c.ShouldBindJSON(&req)
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title is required"})
		return
	}
	owner, name, ok := gitcmd.ParseOwnerRepo(repo.Remote)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unable to parse owner/repo"})
		return
	}
	issue, err := s.GitHub.CreateIssue(owner, name, title, strings.TrimSpace(req.Body))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, withDetails(gin.H{
		"ok": true,
		"issue": gin.H{
			"number":     issue.Number,
			"title":      issue.Title,
			"state":      issue.State,
			"url":        issue.URL,
			"created_at": issue.CreatedAt,
		},
	}, s.repoDetailFields(repo)))
}

func (s *Server) todoAdd(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	var req struct {
		Text   string `json:"text"`
		Commit bool   `json:"commit"`
		Push   bool   `json:"push"`
	}
	c.ShouldBindJSON(&req)
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "text is required"})
		return
	}
	if err := todo.Append(repo.Path, text); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	var commitResult *gitcmd.CommitResult
	if req.Commit {
		result := s.Git.CommitPush(repo.Path, fmt.Sprintf("chore(todo): add %s", truncate(text, 60)), req.Push)
		commitResult = &result
	}
	s.Manager.Invalidate()
	c.JSON(http.StatusOK, withDetails(gin.H{
		"ok":            true,
		"commit_result": commitResult,
	}, s.refreshedDetails(c.Param("id"), repo)))
}

func (s *Server) todoUpdate(c *gin.Context) {
	repo := s.repoByID(c.Param("id"))
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "repo not found"})
		return
	}
	var req struct {
		Index  *int   `json:"index"`
		Done   *bool  `json:"done"`
		Text   string `json:"text"`
		Commit bool   `json:"commit"`
		Push   bool   `json:"push"`
	}
	c.ShouldBindJSON(&req)
	if req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "index is required"})
		return
	}
	if err := todo.Update(repo.Path, *req.Index, req.Done, req.Text); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	var commitResult *gitcmd.CommitResult
	if req.Commit {
		result := s.Git.CommitPush(repo.Path, "chore(todo): update TODO item", req.Push)
		commitResult = &result
	}
	s.Manager.Invalidate()
	c.JSON(http.StatusOK, withDetails(gin.H{
		"ok":            true,
		"commit_result": commitResult,
	}, s.refreshedDetails(c.Param("id"), repo)))
}

// refreshedDetails re-resolves the repo after a write so the detail block
// reflects the new state; the stale copy is the fallback when the repo
// dropped out of the rescan.
func (s *Server) refreshedDetails(id string, stale *projecttrack.RepoMetrics) gin.H {
	if fresh := s.repoByID(id); fresh != nil {
		return s.repoDetailFields(fresh)
	}
	return s.repoDetailFields(stale)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
