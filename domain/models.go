package domain

import (
	"strings"
	"time"
)

// Repository represents a Git repository on any hosting provider, carrying the
// metadata reported by the platform's API.
type Repository struct {
	ID            string
	Name          string
	FullName      string
	Organization  string
	Description   string
	HTMLURL       string
	RemoteURL     string
	SSHURL        string
	DefaultBranch string
	Language      string // Primary language as reported by the platform
	Private       bool
	Stars         int
	Watchers      int
	Forks         int
	OpenIssues    int
	Size          int // Size in KB as reported by the platform
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PushedAt      time.Time
	ProviderName  string
}

// MatchesLanguage reports whether the repository's primary language matches the
// requested one. An empty request matches every repository; comparison is
// case-insensitive, following the hosting platforms' own search semantics.
func (r Repository) MatchesLanguage(language string) bool {
	if language == "" {
		return true
	}
	return strings.EqualFold(r.Language, language)
}

// Commit holds the details of a single commit.
type Commit struct {
	SHA    string
	Author string
	Date   time.Time
}

// File represents a file entry within a repository tree.
type File struct {
	Path     string
	ObjectID string
	IsDir    bool
}

// Dependency represents a declared dependency found in a manifest.
type Dependency struct {
	Name     string // Dependency name or module label
	Source   string // Source URL/path (without version ref), when distinct from the name
	Version  string // Declared version or version constraint
	FilePath string // Manifest file where this dependency was declared
	Line     int    // Line number in the file, 0 when unknown
}

// Manifest represents one dependency manifest found in a repository.
type Manifest struct {
	Ecosystem    string // Ecosystem identifier (e.g. "python", "golang")
	System       string // Dependency management system (e.g. "pip", "poetry", "npm")
	Path         string // Manifest path within the repository
	Dependencies []Dependency
}

// Report is the inventory result for a single repository.
type Report struct {
	Repository Repository
	Commit     *Commit // Newest commit on the default branch; nil for empty repos
	Manifests  []Manifest
}

// Fallback values reported when a repository has no recognized manifest.
const (
	UnknownSystem   = "Unknown"
	NoManifestFound = "None"
)

// DependencySystem returns the dependency management system of the first
// manifest found, or UnknownSystem when the repository has none.
func (r Report) DependencySystem() string {
	if len(r.Manifests) == 0 {
		return UnknownSystem
	}
	return r.Manifests[0].System
}

// ManifestPath returns the path of the first manifest found, or
// NoManifestFound when the repository has none.
func (r Report) ManifestPath() string {
	if len(r.Manifests) == 0 {
		return NoManifestFound
	}
	return r.Manifests[0].Path
}

// DependencyCount returns the total number of dependencies across all manifests.
func (r Report) DependencyCount() int {
	total := 0
	for _, m := range r.Manifests {
		total += len(m.Dependencies)
	}
	return total
}
