package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	git "gopkg.in/src-d/go-git.v4"

	"github.com/typhfeng/projecttrack/github"
	"github.com/typhfeng/projecttrack/helpers"
)

var (
	ownerFlag    = flag.String("owner", "typhfeng", "GitHub user whose repos to mirror")
	destFlag     = flag.String("dest", "~/git/typhfeng", "directory to clone into")
	protocolFlag = flag.String("protocol", "ssh", "clone protocol: ssh or https")
	archivedFlag = flag.Bool("archived", false, "include archived repos")
	dryRunFlag   = flag.Bool("dry-run", false, "list what would happen without touching anything")
)

func main() {
	flag.Parse()

	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger().Output(zerolog.ConsoleWriter{Out: os.Stdout})

	dest := helpers.ExpandPath(*destFlag)
	client := &github.Client{Token: github.TokenFromEnv()}

	repos, err := client.FetchUserRepos(*ownerFlag)
	if err != nil {
		logger.Error().Str("error", err.Error()).Str("owner", *ownerFlag).Msg("can't fetch repos from github")
		os.Exit(1)
	}
	logger.Info().Int("count", len(repos)).Str("owner", *ownerFlag).Msg("fetched repo list")

	cloned, updated, skipped, failed := 0, 0, 0, 0
	for _, repo := range repos {
		if repo.Archived && !*archivedFlag {
			skipped++
			continue
		}
		url := repo.CloneURL
		if *protocolFlag == "ssh" && repo.SSHURL != "" {
			url = repo.SSHURL
		}
		repoPath := filepath.Join(dest, repo.Name)

		if *dryRunFlag {
			logger.Info().Str("repo", repo.FullName).Str("path", repoPath).Msg("would sync")
			continue
		}
		action, err := cloneOrUpdate(repoPath, url)
		if err != nil {
			logger.Error().Str("error", err.Error()).Str("repo", repo.FullName).Msg("sync failed")
			failed++
			continue
		}
		switch action {
		case "cloned":
			cloned++
			logger.Info().Str("repo", repo.FullName).Msg("cloned")
		case "updated":
			updated++
			logger.Debug().Str("repo", repo.FullName).Msg("updated")
		}
	}
	logger.Info().
		Int("cloned", cloned).
		Int("updated", updated).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("done")
	if failed > 0 {
		os.Exit(1)
	}
}

func cloneOrUpdate(repoPath, url string) (string, error) {
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		if err := os.MkdirAll(repoPath, 0755); err != nil {
			return "", err
		}
		if _, err := git.PlainClone(repoPath, false, &git.CloneOptions{URL: url}); err != nil {
			return "", err
		}
		return "cloned", nil
	}
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", err
	}
	if err := repository.Fetch(&git.FetchOptions{Force: true}); err != nil && err != git.NoErrAlreadyUpToDate {
		return "", err
	}
	return "updated", nil
}
