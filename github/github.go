package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// RepoInfo is the slice of repository metadata the rest of the code
// cares about.
type RepoInfo struct {
	Name     string
	FullName string
	CloneURL string
	SSHURL   string
	HTMLURL  string
	Private  bool
	Archived bool
}

type Issue struct {
	Number    int
	Title     string
	State     string
	URL       string
	CreatedAt time.Time
}

type Client struct {
	Token  string
	client *github.Client
}

// TokenFromEnv picks up the usual token variables so the daemon works
// with whatever the gh CLI already configured.
func TokenFromEnv() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}

func (c *Client) connect() {
	if c.client == nil {
		c.client = github.NewClient(c.getTokenClient())
	}
}

// FetchUserRepos lists every repository of the authenticated user, or of
// userName when the token belongs to someone else.
func (c *Client) FetchUserRepos(userName string) ([]RepoInfo, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	c.connect()
	ctx := context.Background()
	var repoList []RepoInfo
	for {
		repos, resp, err := c.client.Repositories.List(ctx, userName, opts)
		if err != nil {
			return repoList, err
		}
		for _, repo := range repos {
			repoList = append(repoList, convertRepo(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repoList, nil
}

// OpenIssues returns the open issues of owner/name with pull requests
// filtered out; the issues API reports PRs as issues too.
func (c *Client) OpenIssues(owner, name string) ([]Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	c.connect()
	ctx := context.Background()
	var issues []Issue
	for {
		list, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
		if err != nil {
			return issues, err
		}
		for _, issue := range list {
			if issue.PullRequestLinks != nil {
				continue
			}
			issues = append(issues, Issue{
				Number:    issue.GetNumber(),
				Title:     issue.GetTitle(),
				State:     issue.GetState(),
				URL:       issue.GetHTMLURL(),
				CreatedAt: issue.GetCreatedAt(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return issues, nil
}

// CreateIssue opens a new issue and returns its number and URL.
func (c *Client) CreateIssue(owner, name, title, body string) (Issue, error) {
	if c.Token == "" {
		return Issue{}, fmt.Errorf("github token is required to create issues")
	}
	c.connect()
	request := &github.IssueRequest{Title: &title}
	if body != "" {
		request.Body = &body
	}
	issue, _, err := c.client.Issues.Create(context.Background(), owner, name, request)
	if err != nil {
		return Issue{}, err
	}
	return Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt(),
	}, nil
}

func convertRepo(repo *github.Repository) RepoInfo {
	return RepoInfo{
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		CloneURL: repo.GetCloneURL(),
		SSHURL:   repo.GetSSHURL(),
		HTMLURL:  repo.GetHTMLURL(),
		Private:  repo.GetPrivate(),
		Archived: repo.GetArchived(),
	}
}

func (c *Client) getTokenClient() *http.Client {
	if c.Token == "" {
		return nil
	}
	return oauth2.NewClient(
		context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token}),
	)
}
