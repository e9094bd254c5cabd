// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"strings"

	"github.com/depscout/depscout/domain"
)

// ---------------------------------------------------------------------------
// SpyProvider
// ---------------------------------------------------------------------------

// SpyProvider implements domain.Provider as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyProvider struct {
	// --- identity ---
	ProviderName string
	Token        string

	// --- DiscoverRepositories ---
	Repositories []domain.Repository
	DiscoverErr  error
	// spy: orgs that were requested
	DiscoveredOrgs []string

	// --- SearchRepositoriesByLanguage ---
	SearchErr error
	// spy: languages that were requested
	SearchedLanguages []string

	// --- GetFileContent ---
	FileContents   map[string]string // path -> content
	FileContentErr error
	// spy: paths that were fetched
	FetchedPaths []string

	// --- ListFiles ---
	Files       []domain.File
	ListFileErr error

	// --- HasFile ---
	ExistingFiles map[string]bool // path -> exists

	// --- LatestCommit ---
	Commit          *domain.Commit
	LatestCommitErr error
	// spy: repos that were asked for their newest commit
	CommitRepos []domain.Repository
}

var _ domain.Provider = (*SpyProvider)(nil)

func (p *SpyProvider) Name() string { return p.ProviderName }

func (p *SpyProvider) AuthToken() string { return p.Token }

func (p *SpyProvider) MatchesURL(_ string) bool { return false }

func (p *SpyProvider) DiscoverRepositories(
	_ context.Context,
	org string,
) ([]domain.Repository, error) {
	p.DiscoveredOrgs = append(p.DiscoveredOrgs, org)
	return p.Repositories, p.DiscoverErr
}

func (p *SpyProvider) SearchRepositoriesByLanguage(
	_ context.Context,
	org string,
	language string,
) ([]domain.Repository, error) {
	p.DiscoveredOrgs = append(p.DiscoveredOrgs, org)
	p.SearchedLanguages = append(p.SearchedLanguages, language)
	if p.SearchErr != nil {
		return nil, p.SearchErr
	}
	if language == "" {
		return p.Repositories, p.DiscoverErr
	}
	var matched []domain.Repository
	for _, repo := range p.Repositories {
		if repo.MatchesLanguage(language) {
			matched = append(matched, repo)
		}
	}
	return matched, p.DiscoverErr
}

func (p *SpyProvider) GetFileContent(
	_ context.Context,
	_ domain.Repository,
	path string,
) (string, error) {
	p.FetchedPaths = append(p.FetchedPaths, path)
	if p.FileContents != nil {
		if content, ok := p.FileContents[path]; ok {
			return content, nil
		}
	}
	if p.FileContentErr != nil {
		return "", p.FileContentErr
	}
	return "", fmt.Errorf("file not found: %s", path)
}

func (p *SpyProvider) ListFiles(
	_ context.Context,
	_ domain.Repository,
	pattern string,
) ([]domain.File, error) {
	if p.ListFileErr != nil {
		return nil, p.ListFileErr
	}
	if pattern == "" {
		return p.Files, nil
	}
	var matched []domain.File
	for _, file := range p.Files {
		if strings.HasSuffix(file.Path, pattern) {
			matched = append(matched, file)
		}
	}
	return matched, nil
}

func (p *SpyProvider) HasFile(
	_ context.Context,
	_ domain.Repository,
	path string,
) bool {
	if p.ExistingFiles != nil {
		return p.ExistingFiles[path]
	}
	return false
}

func (p *SpyProvider) LatestCommit(
	_ context.Context,
	repo domain.Repository,
) (*domain.Commit, error) {
	p.CommitRepos = append(p.CommitRepos, repo)
	return p.Commit, p.LatestCommitErr
}

// ---------------------------------------------------------------------------
// SpyEcosystem
// ---------------------------------------------------------------------------

// SpyEcosystem implements domain.Ecosystem as a configurable spy.
type SpyEcosystem struct {
	// --- identity ---
	EcosystemName     string
	EcosystemLanguage string

	// --- Detect ---
	DetectResult bool
	// spy: file listings that were checked
	DetectedListings [][]domain.File

	// --- Scan ---
	Manifests []domain.Manifest
	ScanErr   error
	// spy: repos that were scanned
	ScannedRepos []domain.Repository
}

var _ domain.Ecosystem = (*SpyEcosystem)(nil)

func (e *SpyEcosystem) Name() string { return e.EcosystemName }

func (e *SpyEcosystem) Language() string { return e.EcosystemLanguage }

func (e *SpyEcosystem) Detect(files []domain.File) bool {
	e.DetectedListings = append(e.DetectedListings, files)
	return e.DetectResult
}

func (e *SpyEcosystem) Scan(
	_ context.Context,
	_ domain.Provider,
	repo domain.Repository,
	_ []domain.File,
) ([]domain.Manifest, error) {
	e.ScannedRepos = append(e.ScannedRepos, repo)
	return e.Manifests, e.ScanErr
}

// ---------------------------------------------------------------------------
// DummyProvider — satisfies the interface but does nothing (for compile checks)
// ---------------------------------------------------------------------------

// DummyProvider is a no-op implementation of domain.Provider.
// Use it only for interface compliance tests or as a placeholder.
type DummyProvider struct{}

var _ domain.Provider = (*DummyProvider)(nil)

func (d *DummyProvider) Name() string             { return "dummy" }
func (d *DummyProvider) MatchesURL(_ string) bool { return false }
func (d *DummyProvider) AuthToken() string        { return "" }

func (d *DummyProvider) DiscoverRepositories(
	_ context.Context,
	_ string,
) ([]domain.Repository, error) {
	return nil, nil
}

func (d *DummyProvider) SearchRepositoriesByLanguage(
	_ context.Context,
	_ string,
	_ string,
) ([]domain.Repository, error) {
	return nil, nil
}

func (d *DummyProvider) GetFileContent(
	_ context.Context,
	_ domain.Repository,
	_ string,
) (string, error) {
	return "", nil
}

func (d *DummyProvider) ListFiles(
	_ context.Context,
	_ domain.Repository,
	_ string,
) ([]domain.File, error) {
	return nil, nil
}

func (d *DummyProvider) HasFile(
	_ context.Context,
	_ domain.Repository,
	_ string,
) bool {
	return false
}

func (d *DummyProvider) LatestCommit(
	_ context.Context,
	_ domain.Repository,
) (*domain.Commit, error) {
	return nil, nil //nolint:nilnil // dummy no-op
}
