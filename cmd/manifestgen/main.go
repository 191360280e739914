package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/discover"
	"github.com/typhfeng/projecttrack/helpers"
	"github.com/typhfeng/projecttrack/manifest"
	"github.com/typhfeng/projecttrack/scanner"
)

type excludeList []string

func (e *excludeList) String() string { return strings.Join(*e, ",") }
func (e *excludeList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

var (
	rootFlag     = flag.String("root", "~/git/typhfeng", "repo search root")
	manifestFlag = flag.String("manifest", "repo_manifest.json", "manifest file to rebuild")
	depthFlag    = flag.Int("max-depth", 3, "how deep to look for .git directories")
)

func main() {
	excludes := excludeList{"project_track"}
	flag.Var(&excludes, "exclude", "repo names to leave out, repeatable")
	flag.Parse()

	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger().Output(zerolog.ConsoleWriter{Out: os.Stdout})

	root := helpers.ExpandPath(*rootFlag)
	manifestPath := helpers.ExpandPath(*manifestFlag)

	// tracks assigned by hand in the current manifest survive the rebuild
	existingTracks := map[string]string{}
	if old, err := manifest.Load(manifestPath); err == nil {
		for _, entry := range old.Repos {
			if entry.Track != "" {
				existingTracks[helpers.ExpandPath(entry.Path)] = entry.Track
			}
		}
	}

	repos := discover.Repos(projecttrack.RepoConfig{
		ScanRoots:    []string{root},
		MaxRepoDepth: *depthFlag,
	})

	excluded := map[string]bool{}
	for _, name := range excludes {
		if name = strings.TrimSpace(name); name != "" {
			excluded[name] = true
		}
	}

	fresh := &manifest.Manifest{SearchRoot: *rootFlag}
	for _, repoPath := range repos {
		name := filepath.Base(repoPath)
		if excluded[name] {
			continue
		}
		track, ok := existingTracks[repoPath]
		if !ok {
			track = scanner.Classify(repoPath, name, nil)
		}
		fresh.Upsert(repoPath, track)
	}

	if err := fresh.Save(manifestPath); err != nil {
		logger.Error().Str("error", err.Error()).Str("manifest", manifestPath).Msg("can't write manifest")
		os.Exit(1)
	}
	logger.Info().Int("repos", len(fresh.Repos)).Str("manifest", manifestPath).Msg("manifest rebuilt")
}
