package manifest

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/helpers"
)

const defaultSearchRoot = "~/git/typhfeng"

// Entry is one tracked repository. Enabled defaults to true when absent so
// hand-edited manifests stay terse.
type Entry struct {
	Path    string `json:"path"`
	Track   string `json:"track,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

type Manifest struct {
	SearchRoot string  `json:"search_root"`
	Repos      []Entry `json:"repos"`
}

// Load reads the manifest file. A missing file is an empty manifest, not
// an error; a present but unparseable one is.
func Load(location string) (*Manifest, error) {
	raw, err := ioutil.ReadFile(location)
	if os.IsNotExist(err) {
		return &Manifest{SearchRoot: defaultSearchRoot, Repos: []Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read with: %v", err)
	}
	m := &Manifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("can't parse with: %v", err)
	}
	if m.SearchRoot == "" {
		m.SearchRoot = defaultSearchRoot
	}
	if m.Repos == nil {
		m.Repos = []Entry{}
	}
	return m, nil
}

func (m *Manifest) Save(location string) error {
	if err := os.MkdirAll(filepath.Dir(location), 0755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(location, append(raw, '\n'), 0644)
}

// Upsert enables the repository at path, updating its track when one is
// given. Paths are compared in expanded absolute form.
func (m *Manifest) Upsert(path, track string) {
	path = helpers.ExpandPath(path)
	enabled := true
	for i := range m.Repos {
		if helpers.ExpandPath(m.Repos[i].Path) != path {
			continue
		}
		m.Repos[i].Path = path
		m.Repos[i].Enabled = &enabled
		if track != "" {
			m.Repos[i].Track = track
		}
		return
	}
	m.Repos = append(m.Repos, Entry{Path: path, Track: track, Enabled: &enabled})
}

// Remove drops the repository at path and reports whether anything changed.
func (m *Manifest) Remove(path string) bool {
	path = helpers.ExpandPath(path)
	kept := m.Repos[:0]
	for _, entry := range m.Repos {
		if helpers.ExpandPath(entry.Path) == path {
			continue
		}
		kept = append(kept, entry)
	}
	changed := len(kept) != len(m.Repos)
	m.Repos = kept
	return changed
}

// MergeInto folds the enabled manifest entries into the resolved scan
// configuration: paths join the include list and entries with a track
// become overrides. The flat config always stays canonical; this is the
// one normalization step.
func (m *Manifest) MergeInto(cfg *projecttrack.RepoConfig) {
	seen := map[string]struct{}{}
	for _, path := range cfg.IncludeRepos {
		seen[path] = struct{}{}
	}
	if cfg.TrackOverrides == nil {
		cfg.TrackOverrides = map[string]string{}
	}
	for _, entry := range m.Repos {
		if !entry.IsEnabled() || entry.Path == "" {
			continue
		}
		path := helpers.ExpandPath(entry.Path)
		if _, ok := seen[path]; !ok {
			cfg.IncludeRepos = append(cfg.IncludeRepos, path)
			seen[path] = struct{}{}
		}
		if entry.Track != "" {
			cfg.TrackOverrides[path] = entry.Track
		}
	}
}
