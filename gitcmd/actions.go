package gitcmd

import (
	"strconv"
	"strings"

	"github.com/typhfeng/projecttrack"
)

// RecentCommit is one row of the detail-view history listing.
type RecentCommit struct {
	Date    string `json:"date"`
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
}

// CommitResult reports each step of a commit-and-push action separately so
// the caller can see exactly where it stopped.
type CommitResult struct {
	OK     bool                    `json:"ok"`
	Step   string                  `json:"step,omitempty"`
	Add    *projecttrack.CmdResult `json:"add,omitempty"`
	Commit *projecttrack.CmdResult `json:"commit,omitempty"`
	Push   *projecttrack.CmdResult `json:"push,omitempty"`
}

// Pull fast-forwards the repository from its origin.
func (c *Client) Pull(repo string) projecttrack.CmdResult {
	return c.execute(actionTimeout, "git", "-C", repo, "pull", "--ff-only")
}

// CommitPush stages everything, commits with the given message and
// optionally pushes HEAD to origin. An empty working tree is not an error.
func (c *Client) CommitPush(repo, message string, push bool) CommitResult {
	add := c.git(repo, "add", ".")
	if !add.OK() {
		return CommitResult{Step: "add", Add: &add}
	}
	commit := c.git(repo, "commit", "-m", message)
	if !commit.OK() && !strings.Contains(strings.ToLower(commit.Output), "nothing to commit") {
		return CommitResult{Step: "commit", Add: &add, Commit: &commit}
	}
	result := CommitResult{OK: true, Add: &add, Commit: &commit}
	if push {
		pushRes := c.execute(actionTimeout, "git", "-C", repo, "push", "origin", "HEAD")
		result.Push = &pushRes
		if !pushRes.OK() {
			result.OK = false
			result.Step = "push"
		}
	}
	return result
}

// RecentCommits returns the latest n commits with author information.
func (c *Client) RecentCommits(repo string, n int) []RecentCommit {
	res := c.git(repo, "log", "-"+strconv.Itoa(n), "--date=short", "--pretty=format:%ad|%h|%an|%s")
	if !res.OK() || res.Stdout == "" {
		return nil
	}
	var commits []RecentCommit
	for _, line := range strings.Split(res.Stdout, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, RecentCommit{Date: parts[0], Hash: parts[1], Author: parts[2], Subject: parts[3]})
	}
	return commits
}

// CommitFiles lists the files touched by one commit.
func (c *Client) CommitFiles(repo, hash string) []string {
	res := c.git(repo, "show", "--name-only", "--pretty=format:", hash)
	if !res.OK() || res.Stdout == "" {
		return nil
	}
	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// ShortStatus returns `git status --short` lines for the detail view.
func (c *Client) ShortStatus(repo string) []string {
	res := c.git(repo, "status", "--short")
	if !res.OK() || res.Stdout == "" {
		return nil
	}
	return strings.Split(res.Stdout, "\n")
}
