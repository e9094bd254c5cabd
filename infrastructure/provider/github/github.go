package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/depscout/depscout/domain"
)

const (
	providerName = "github"
	perPage      = 100
)

// backoffSchedule is the retry delay ladder for transient API failures.
// Rate-limit responses override it with the platform's own reset time.
var backoffSchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
	32 * time.Second,
	64 * time.Second,
}

// Provider implements domain.Provider for GitHub.
type Provider struct {
	token  string
	client *gh.Client
}

// New creates a new GitHub provider with the given token.
func New(token string) domain.Provider {
	client := gh.NewClient(nil).WithAuthToken(token)
	return &Provider{
		token:  token,
		client: client,
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) AuthToken() string { return p.token }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "github.com")
}

// DiscoverRepositories lists all repositories in a GitHub
// organization or user account.
func (p *Provider) DiscoverRepositories(
	ctx context.Context,
	org string,
) ([]domain.Repository, error) {
	var allRepos []domain.Repository
	opts := &gh.RepositoryListByOrgOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		var repos []*gh.Repository
		var resp *gh.Response
		err := p.withRetry(ctx, "list org repositories", func() (*gh.Response, error) {
			var callErr error
			repos, resp, callErr = p.client.Repositories.ListByOrg(ctx, org, opts)
			return resp, callErr
		})
		if err != nil {
			// Fall back to listing user repos if org listing fails
			return p.discoverUserRepos(ctx, org)
		}

		for _, r := range repos {
			allRepos = append(allRepos, mapRepository(r, org))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// SearchRepositoriesByLanguage uses the search API to list the organization's
// repositories whose primary language matches the given one.
func (p *Provider) SearchRepositoriesByLanguage(
	ctx context.Context,
	org string,
	language string,
) ([]domain.Repository, error) {
	if language == "" {
		return p.DiscoverRepositories(ctx, org)
	}

	query := fmt.Sprintf("org:%s language:%s", org, language)
	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var allRepos []domain.Repository
	for {
		var result *gh.RepositoriesSearchResult
		var resp *gh.Response
		err := p.withRetry(ctx, "search repositories", func() (*gh.Response, error) {
			var callErr error
			result, resp, callErr = p.client.Search.Repositories(ctx, query, opts)
			return resp, callErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search repositories for %q: %w", query, err)
		}

		for _, r := range result.Repositories {
			allRepos = append(allRepos, mapRepository(r, org))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

func (p *Provider) discoverUserRepos(
	ctx context.Context,
	user string,
) ([]domain.Repository, error) {
	var allRepos []domain.Repository
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
		Type:        "owner",
	}

	for {
		var repos []*gh.Repository
		var resp *gh.Response
		err := p.withRetry(ctx, "list user repositories", func() (*gh.Response, error) {
			var callErr error
			repos, resp, callErr = p.client.Repositories.ListByUser(ctx, user, opts)
			return resp, callErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list repos for %q: %w", user, err)
		}

		for _, r := range repos {
			allRepos = append(allRepos, mapRepository(r, user))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

func (p *Provider) GetFileContent(
	ctx context.Context,
	repo domain.Repository,
	path string,
) (string, error) {
	var fileContent *gh.RepositoryContent
	err := p.withRetry(ctx, "get file content", func() (*gh.Response, error) {
		var callErr error
		var resp *gh.Response
		fileContent, _, resp, callErr = p.client.Repositories.GetContents(
			ctx, repo.Organization, repo.Name, path,
			&gh.RepositoryContentGetOptions{},
		)
		return resp, callErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to get file %q: %w", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %q is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode file content: %w", err)
	}

	return content, nil
}

func (p *Provider) ListFiles(
	ctx context.Context,
	repo domain.Repository,
	pattern string,
) ([]domain.File, error) {
	var tree *gh.Tree
	err := p.withRetry(ctx, "get repository tree", func() (*gh.Response, error) {
		var callErr error
		var resp *gh.Response
		tree, resp, callErr = p.client.Git.GetTree(
			ctx, repo.Organization, repo.Name,
			strings.TrimPrefix(repo.DefaultBranch, "refs/heads/"),
			true, // recursive
		)
		return resp, callErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get repo tree: %w", err)
	}

	var files []domain.File
	for _, entry := range tree.Entries {
		if pattern != "" && !strings.HasSuffix(entry.GetPath(), pattern) {
			continue
		}
		files = append(files, domain.File{
			Path:     entry.GetPath(),
			ObjectID: entry.GetSHA(),
			IsDir:    entry.GetType() == "tree",
		})
	}

	return files, nil
}

func (p *Provider) HasFile(
	ctx context.Context,
	repo domain.Repository,
	path string,
) bool {
	_, err := p.GetFileContent(ctx, repo, path)
	return err == nil
}

// LatestCommit returns the newest commit on the default branch, or nil for
// empty repositories.
func (p *Provider) LatestCommit(
	ctx context.Context,
	repo domain.Repository,
) (*domain.Commit, error) {
	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	}

	var commits []*gh.RepositoryCommit
	err := p.withRetry(ctx, "list commits", func() (*gh.Response, error) {
		var callErr error
		var resp *gh.Response
		commits, resp, callErr = p.client.Repositories.ListCommits(
			ctx, repo.Organization, repo.Name, opts,
		)
		return resp, callErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if len(commits) == 0 {
		return nil, nil
	}

	newest := commits[0]
	return &domain.Commit{
		SHA:    newest.GetSHA(),
		Author: newest.GetCommit().GetAuthor().GetName(),
		Date:   newest.GetCommit().GetAuthor().GetDate().Time,
	}, nil
}

// withRetry runs the API call with the exponential backoff schedule, honoring
// the platform's rate-limit reset time when one is reported.
func (p *Provider) withRetry(
	ctx context.Context,
	operation string,
	call func() (*gh.Response, error),
) error {
	var lastErr error

	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		if attempt > 0 {
			delay := retryDelay(lastErr, backoffSchedule[attempt-1])
			logger.Warnf(
				"[github] %s failed (%v), retrying in %s",
				operation, lastErr, delay,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err, resp) {
			return err
		}
	}

	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// retryDelay picks the wait before the next attempt: the platform's reset or
// retry-after hint when rate limited, otherwise the backoff schedule value.
func retryDelay(err error, scheduled time.Duration) time.Duration {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		if delay := time.Until(rateErr.Rate.Reset.Time) + time.Second; delay > scheduled {
			return delay
		}
		return scheduled
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		return *abuseErr.RetryAfter
	}

	return scheduled
}

func isRetryable(err error, resp *gh.Response) bool {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}
	if resp == nil {
		// Transport-level failure (timeout, connection reset)
		return true
	}
	return resp.StatusCode == http.StatusAccepted || resp.StatusCode >= http.StatusInternalServerError
}

func mapRepository(r *gh.Repository, org string) domain.Repository {
	defaultBranch := "main"
	if r.DefaultBranch != nil {
		defaultBranch = *r.DefaultBranch
	}
	return domain.Repository{
		ID:            strconv.FormatInt(r.GetID(), 10),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Organization:  org,
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		RemoteURL:     r.GetCloneURL(),
		SSHURL:        r.GetSSHURL(),
		DefaultBranch: "refs/heads/" + defaultBranch,
		Language:      r.GetLanguage(),
		Private:       r.GetPrivate(),
		Stars:         r.GetStargazersCount(),
		Watchers:      r.GetWatchersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Size:          r.GetSize(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
		PushedAt:      r.GetPushedAt().Time,
		ProviderName:  providerName,
	}
}
