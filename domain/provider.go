package domain

import "context"

// Provider abstracts a Git hosting service (GitHub, GitLab, etc.).
// Each implementation handles authentication, repository discovery, and
// read-only file access for its platform.
type Provider interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// MatchesURL returns true if the given remote URL belongs to this provider.
	MatchesURL(url string) bool

	// DiscoverRepositories lists all repositories in an organization or group.
	DiscoverRepositories(ctx context.Context, org string) ([]Repository, error)

	// SearchRepositoriesByLanguage lists the repositories in an organization
	// whose primary language matches the given one. An empty language behaves
	// like DiscoverRepositories.
	SearchRepositoriesByLanguage(ctx context.Context, org, language string) ([]Repository, error)

	// GetFileContent reads the content of a file from a repository's default branch.
	GetFileContent(ctx context.Context, repo Repository, path string) (string, error)

	// ListFiles returns the list of files in a repository, optionally filtered by a
	// path suffix pattern. When pattern is empty the entire tree is returned.
	ListFiles(ctx context.Context, repo Repository, pattern string) ([]File, error)

	// HasFile checks whether a file exists at the given path in a repository.
	HasFile(ctx context.Context, repo Repository, path string) bool

	// LatestCommit returns the newest commit on the repository's default branch,
	// or nil when the repository has no commits.
	LatestCommit(ctx context.Context, repo Repository) (*Commit, error)

	// AuthToken returns the authentication token configured for this provider.
	AuthToken() string
}
