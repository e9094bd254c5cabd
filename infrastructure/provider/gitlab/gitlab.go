package gitlab

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/depscout/depscout/domain"
)

const (
	providerName = "gitlab"
	perPage      = 100
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// Provider implements domain.Provider for GitLab.
type Provider struct {
	token  string
	client *gl.Client
}

// New creates a new GitLab provider with the given token.
func New(token string) domain.Provider {
	client, err := gl.NewClient(token)
	if err != nil {
		// Return a provider that will fail on use rather than panicking at construction
		return &Provider{token: token, client: nil}
	}
	return &Provider{
		token:  token,
		client: client,
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) AuthToken() string { return p.token }

func (p *Provider) MatchesURL(rawURL string) bool {
	return strings.Contains(rawURL, "gitlab.com")
}

// DiscoverRepositories lists all projects in a GitLab group.
func (p *Provider) DiscoverRepositories(
	ctx context.Context,
	group string,
) ([]domain.Repository, error) {
	return p.listGroupProjects(ctx, group, "")
}

// SearchRepositoriesByLanguage lists the group's projects filtered by
// programming language, using the API's own language filter.
func (p *Provider) SearchRepositoriesByLanguage(
	ctx context.Context,
	group string,
	language string,
) ([]domain.Repository, error) {
	return p.listGroupProjects(ctx, group, language)
}

func (p *Provider) listGroupProjects(
	ctx context.Context,
	group string,
	language string,
) ([]domain.Repository, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allRepos []domain.Repository
	// The group projects API has no language filter, so the filtering
	// happens client-side against each project's dominant language.
	opts := &gl.ListGroupProjectsOptions{
		ListOptions:      gl.ListOptions{PerPage: perPage},
		IncludeSubGroups: gl.Ptr(true),
	}

	for {
		projects, resp, err := p.client.Groups.ListGroupProjects(
			group, opts, gl.WithContext(ctx),
		)
		if err != nil {
			// Fall back to listing user projects
			return p.discoverUserProjects(ctx, group, language)
		}

		for _, proj := range projects {
			repo := mapProject(proj, group, language)
			if language != "" {
				if primary, err := p.primaryLanguage(ctx, proj.ID); err == nil {
					repo.Language = primary
					if !repo.MatchesLanguage(language) {
						continue
					}
				}
			}
			allRepos = append(allRepos, repo)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// primaryLanguage returns the language with the largest share of the project.
func (p *Provider) primaryLanguage(ctx context.Context, projectID int64) (string, error) {
	languages, _, err := p.client.Projects.GetProjectLanguages(
		strconv.FormatInt(projectID, 10), gl.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get project languages: %w", err)
	}

	var primary string
	var share float32
	for name, percent := range *languages {
		if percent > share {
			primary, share = name, percent
		}
	}
	return primary, nil
}

func (p *Provider) discoverUserProjects(
	ctx context.Context,
	user string,
	language string,
) ([]domain.Repository, error) {
	var allRepos []domain.Repository
	opts := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}
	if language != "" {
		opts.WithProgrammingLanguage = gl.Ptr(language)
	}

	for {
		projects, resp, err := p.client.Projects.ListUserProjects(
			user, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects for %q: %w", user, err)
		}

		for _, proj := range projects {
			allRepos = append(allRepos, mapProject(proj, user, language))
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
	if p.client == nil {
		return "", errClientNotInitialized
	}

	branch := strings.TrimPrefix(repo.DefaultBranch, "refs/heads/")
	raw, _, err := p.client.RepositoryFiles.GetRawFile(
		projectPath(repo), path,
		&gl.GetRawFileOptions{Ref: gl.Ptr(branch)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get file %q: %w", path, err)
	}

	return string(raw), nil
}

func (p *Provider) ListFiles(
	ctx context.Context,
	repo domain.Repository,
	pattern string,
) ([]domain.File, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	branch := strings.TrimPrefix(repo.DefaultBranch, "refs/heads/")
	recursive := true
	var allFiles []domain.File
	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Ref:         gl.Ptr(branch),
		Recursive:   &recursive,
	}

	for {
		nodes, resp, err := p.client.Repositories.ListTree(
			projectPath(repo),
			opts,
			gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list tree: %w", err)
		}

		for _, node := range nodes {
			if pattern != "" && !strings.HasSuffix(node.Path, pattern) {
				continue
			}
			allFiles = append(allFiles, domain.File{
				Path:     node.Path,
				ObjectID: node.ID,
				IsDir:    node.Type == "tree",
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
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
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	branch := strings.TrimPrefix(repo.DefaultBranch, "refs/heads/")
	opts := &gl.ListCommitsOptions{
		ListOptions: gl.ListOptions{PerPage: 1},
		RefName:     gl.Ptr(branch),
	}

	commits, _, err := p.client.Commits.ListCommits(
		projectPath(repo), opts, gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if len(commits) == 0 {
		return nil, nil
	}

	newest := commits[0]
	var date time.Time
	if newest.AuthoredDate != nil {
		date = *newest.AuthoredDate
	}
	return &domain.Commit{
		SHA:    newest.ID,
		Author: newest.AuthorName,
		Date:   date,
	}, nil
}

// projectPath identifies a project by its full namespace path. Projects in
// subgroups are listed with IncludeSubGroups, so the group plus the project
// name alone would miss the subgroup segments.
func projectPath(repo domain.Repository) string {
	if repo.FullName != "" {
		return repo.FullName
	}
	return repo.Organization + "/" + repo.Name
}

func mapProject(proj *gl.Project, group, language string) domain.Repository {
	defaultBranch := "main"
	if proj.DefaultBranch != "" {
		defaultBranch = proj.DefaultBranch
	}

	var createdAt, updatedAt time.Time
	if proj.CreatedAt != nil {
		createdAt = *proj.CreatedAt
	}
	if proj.LastActivityAt != nil {
		updatedAt = *proj.LastActivityAt
	}

	return domain.Repository{
		ID:            strconv.FormatInt(proj.ID, 10),
		Name:          proj.Path,
		FullName:      proj.PathWithNamespace,
		Organization:  group,
		Description:   proj.Description,
		HTMLURL:       proj.WebURL,
		RemoteURL:     proj.HTTPURLToRepo,
		SSHURL:        proj.SSHURLToRepo,
		DefaultBranch: "refs/heads/" + defaultBranch,
		Language:      language, // GitLab reports languages per project, not a single primary one
		Private:       proj.Visibility != gl.PublicVisibility,
		Stars:         int(proj.StarCount),
		Forks:         int(proj.ForksCount),
		OpenIssues:    int(proj.OpenIssuesCount),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		PushedAt:      updatedAt,
		ProviderName:  providerName,
	}
}
