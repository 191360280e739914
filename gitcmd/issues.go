package gitcmd

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/typhfeng/projecttrack"
)

const issuePattern = `\b(TODO|FIXME|BUG|HACK|XXX|BLOCKER|RISK)\b`

var skipDirs = []string{".git", "venv", ".venv", "node_modules", "build", "output", "dist"}

// IssueMatches searches repository content for unresolved-work markers.
// It prefers ripgrep and falls back to plain grep; both produce the same
// path:line:text records. A missing tool yields no matches, never an error.
func (c *Client) IssueMatches(repo string, max int) []projecttrack.IssueHit {
	var res projecttrack.CmdResult
	if _, err := exec.LookPath("rg"); err == nil {
		args := []string{"-n", "-S", "-i", "--hidden",
			"--max-filesize", "1M", "--max-count", strconv.Itoa(max)}
		args = append(args, "--glob", "!.git")
		for _, dir := range skipDirs[1:] {
			args = append(args, "--glob", "!"+dir+"/**")
		}
		args = append(args, issuePattern, repo)
		res = c.execute(c.timeout(), "rg", args...)
	} else {
		args := []string{"-RInE", "-i", issuePattern, repo}
		for _, dir := range skipDirs {
			args = append(args, "--exclude-dir="+dir)
		}
		res = c.execute(c.timeout(), "grep", args...)
	}
	// exit 1 just means no matches
	if res.Code != 0 && res.Code != 1 {
		return nil
	}
	return parseSearchLines(repo, res.Stdout, max)
}

func parseSearchLines(repo, out string, max int) []projecttrack.IssueHit {
	if out == "" {
		return nil
	}
	var hits []projecttrack.IssueHit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		rel, err := filepath.Rel(repo, parts[0])
		if err != nil {
			rel = parts[0]
		}
		lineNo, err := strconv.Atoi(parts[1])
		if err != nil {
			lineNo = 0
		}
		hits = append(hits, projecttrack.IssueHit{
			File: rel,
			Line: lineNo,
			Text: strings.TrimSpace(parts[2]),
		})
		if len(hits) >= max {
			break
		}
	}
	return hits
}
