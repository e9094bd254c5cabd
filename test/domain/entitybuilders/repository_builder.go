package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/depscout/depscout/domain"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RepositoryBuilder helps create test repositories with a fluent interface.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	name          string
	organization  string
	language      string
	defaultBranch string
	private       bool
	stars         int
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	return &RepositoryBuilder{
		BaseBuilder:   testkit.NewBaseBuilder(),
		name:          "test-repo",
		organization:  "test-org",
		language:      "Go",
		defaultBranch: "refs/heads/main",
		private:       false,
		stars:         0,
	}
}

// WithName sets the repository name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// WithOrganization sets the owning organization.
func (b *RepositoryBuilder) WithOrganization(org string) *RepositoryBuilder {
	b.organization = org
	return b
}

// WithLanguage sets the primary language.
func (b *RepositoryBuilder) WithLanguage(language string) *RepositoryBuilder {
	b.language = language
	return b
}

// WithDefaultBranch sets the default branch ref.
func (b *RepositoryBuilder) WithDefaultBranch(branch string) *RepositoryBuilder {
	b.defaultBranch = branch
	return b
}

// WithPrivate sets the visibility flag.
func (b *RepositoryBuilder) WithPrivate(private bool) *RepositoryBuilder {
	b.private = private
	return b
}

// WithStars sets the star count.
func (b *RepositoryBuilder) WithStars(stars int) *RepositoryBuilder {
	b.stars = stars
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() domain.Repository {
	return domain.Repository{
		Name:          b.name,
		FullName:      b.organization + "/" + b.name,
		Organization:  b.organization,
		HTMLURL:       "https://example.com/" + b.organization + "/" + b.name,
		RemoteURL:     "https://example.com/" + b.organization + "/" + b.name + ".git",
		DefaultBranch: b.defaultBranch,
		Language:      b.language,
		Private:       b.private,
		Stars:         b.stars,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-repo"
	b.organization = "test-org"
	b.language = "Go"
	b.defaultBranch = "refs/heads/main"
	b.private = false
	b.stars = 0
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	return &RepositoryBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:          b.name,
		organization:  b.organization,
		language:      b.language,
		defaultBranch: b.defaultBranch,
		private:       b.private,
		stars:         b.stars,
	}
}
