package gitcmd

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/typhfeng/projecttrack"
)

var (
	remoteOwnerRe = regexp.MustCompile(`[:/]([^/:]+)/([^/.]+?)(?:\.git)?$`)
	aheadRe       = regexp.MustCompile(`ahead (\d+)`)
	behindRe      = regexp.MustCompile(`behind (\d+)`)
)

// ParseOwnerRepo extracts owner and repository name from the tail of a
// remote URL, covering both https://host/owner/name[.git] and
// git@host:owner/name[.git] forms.
func ParseOwnerRepo(remote string) (owner, name string, ok bool) {
	m := remoteOwnerRe.FindStringSubmatch(strings.TrimSpace(remote))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// AheadBehind pulls the "ahead N"/"behind N" counters out of a
// `git status -sb` summary line. Absent markers count as zero.
func AheadBehind(statusLine string) (ahead, behind int) {
	if m := aheadRe.FindStringSubmatch(statusLine); m != nil {
		ahead, _ = strconv.Atoi(m[1])
	}
	if m := behindRe.FindStringSubmatch(statusLine); m != nil {
		behind, _ = strconv.Atoi(m[1])
	}
	return ahead, behind
}

// CountPorcelain counts working-tree entries from `git status --porcelain`
// output: "??" lines are untracked, every other non-blank line is a
// modification of some kind.
func CountPorcelain(out string) projecttrack.DirtyFiles {
	var dirty projecttrack.DirtyFiles
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "??") {
			dirty.Untracked++
		} else if strings.TrimSpace(line) != "" {
			dirty.Modified++
		}
	}
	return dirty
}

// CleanStatusLine strips the porcelain "## " prefix for display.
func CleanStatusLine(statusLine string) string {
	return strings.TrimSpace(strings.Replace(statusLine, "## ", "", 1))
}
