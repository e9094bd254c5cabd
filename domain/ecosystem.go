package domain

import "context"

// Ecosystem abstracts a dependency ecosystem (Python, Go modules, JavaScript,
// Terraform, etc.). Each implementation knows which manifest files its
// ecosystem uses and how to parse them.
//
// Detection and scanning both work off a repository tree listing fetched once
// by the caller, so inspecting a repository for every ecosystem costs a single
// tree API call.
type Ecosystem interface {
	// Name returns the ecosystem identifier (e.g. "python", "golang").
	Name() string

	// Language returns the language name as reported by hosting platforms
	// (e.g. "Python", "Go"). Empty for ecosystems without a platform language,
	// such as Terraform configurations.
	Language() string

	// Detect returns true if the tree listing contains any of this
	// ecosystem's manifest files.
	Detect(files []File) bool

	// Scan reads and parses every manifest of this ecosystem found in the tree
	// listing, returning one Manifest per file.
	Scan(ctx context.Context, provider Provider, repo Repository, files []File) ([]Manifest, error)
}
