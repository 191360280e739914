package gitcmd

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/typhfeng/projecttrack"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = time.Minute
	actionTimeout  = 2 * time.Minute
)

// Client shells out to git. Read methods never fail hard: a missing binary,
// a nonzero exit or a timeout all degrade to a zero value so one broken
// repository can't abort a scan.
type Client struct {
	Timeout time.Duration
	Log     zerolog.Logger

	run func(timeout time.Duration, name string, args ...string) projecttrack.CmdResult
}

// NewClientWithRunner returns a Client that hands every command to run
// instead of executing it. Tests script git behavior through it.
func NewClientWithRunner(log zerolog.Logger, run func(timeout time.Duration, name string, args ...string) projecttrack.CmdResult) *Client {
	return &Client{Log: log, run: run}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Client) execute(timeout time.Duration, name string, args ...string) projecttrack.CmdResult {
	if c.run != nil {
		return c.run(timeout, name, args...)
	}
	return runCommand(timeout, name, args...)
}

func runCommand(timeout time.Duration, name string, args ...string) projecttrack.CmdResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			// binary not found or not startable
			code = 127
		}
		if ctx.Err() == context.DeadlineExceeded {
			code = 124
		}
	}
	return projecttrack.CmdResult{
		Code:   code,
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
		Output: strings.TrimSpace(stdout.String() + stderr.String()),
	}
}

func (c *Client) git(repo string, args ...string) projecttrack.CmdResult {
	return c.execute(c.timeout(), "git", append([]string{"-C", repo}, args...)...)
}

// RemoteURL returns the origin remote, or "" when the repository has none.
func (c *Client) RemoteURL(repo string) string {
	res := c.git(repo, "remote", "get-url", "origin")
	if !res.OK() {
		return ""
	}
	return res.Stdout
}

func (c *Client) Branch(repo string) string {
	res := c.git(repo, "rev-parse", "--abbrev-ref", "HEAD")
	if !res.OK() {
		return ""
	}
	return res.Stdout
}

// StatusLine returns the first line of `git status -sb`, the one carrying
// branch and ahead/behind markers.
func (c *Client) StatusLine(repo string) string {
	res := c.git(repo, "status", "-sb")
	if !res.OK() || res.Stdout == "" {
		return ""
	}
	return strings.SplitN(res.Stdout, "\n", 2)[0]
}

func (c *Client) Dirty(repo string) projecttrack.DirtyFiles {
	res := c.git(repo, "status", "--porcelain")
	if !res.OK() {
		return projecttrack.DirtyFiles{}
	}
	return CountPorcelain(res.Stdout)
}

func (c *Client) LastCommit(repo string) projecttrack.LastCommit {
	res := c.git(repo, "log", "-1", "--date=iso", "--pretty=format:%ad|%h|%s")
	if !res.OK() || res.Stdout == "" {
		return projecttrack.LastCommit{}
	}
	parts := strings.SplitN(res.Stdout, "|", 3)
	if len(parts) != 3 {
		return projecttrack.LastCommit{}
	}
	return projecttrack.LastCommit{Date: parts[0], Hash: parts[1], Subject: parts[2]}
}

func (c *Client) CountCommits(repo string, days int) int {
	res := c.git(repo, "rev-list", "--count", "HEAD", "--since="+strconv.Itoa(days)+".days")
	if !res.OK() {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0
	}
	return count
}

// CommitWeeks returns one ISO year-week label (%G-W%V) per commit over the
// last N days, most recent first.
func (c *Client) CommitWeeks(repo string, days int) []string {
	res := c.git(repo, "log", "--since="+strconv.Itoa(days)+".days", "--date=format:%G-W%V", "--pretty=format:%ad")
	if !res.OK() || res.Stdout == "" {
		return nil
	}
	var weeks []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			weeks = append(weeks, line)
		}
	}
	return weeks
}

// LogSince returns date|hash|subject rows for commits over the last N days.
func (c *Client) LogSince(repo string, days int) []projecttrack.CommitRow {
	res := c.git(repo, "log", "--since="+strconv.Itoa(days)+".days", "--date=short", "--pretty=format:%ad|%h|%s")
	if !res.OK() || res.Stdout == "" {
		return nil
	}
	var rows []projecttrack.CommitRow
	for _, line := range strings.Split(res.Stdout, "\n") {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		rows = append(rows, projecttrack.CommitRow{Date: parts[0], Hash: parts[1], Subject: parts[2]})
	}
	return rows
}
