package javascript

import (
	"context"
	"encoding/json"
	"path"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/depscout/depscout/domain"
	"github.com/depscout/depscout/infrastructure/ecosystem"
	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

const ecosystemName = "javascript"

// Package manager identifiers.
const (
	pkgMgrNpm  = "npm"
	pkgMgrYarn = "yarn"
	pkgMgrPnpm = "pnpm"
)

// Ecosystem implements domain.Ecosystem for JavaScript/Node.js projects.
// package.json is the manifest; lockfiles in the same directory determine the
// package manager the way the platform tooling itself picks one.
type Ecosystem struct {
	definition definitions.Definition
}

// New creates the JavaScript ecosystem.
func New() domain.Ecosystem {
	return &Ecosystem{definition: definitions.MustForName(ecosystemName)}
}

func (e *Ecosystem) Name() string     { return ecosystemName }
func (e *Ecosystem) Language() string { return e.definition.Language }

// Detect returns true if the tree contains a package.json. Lockfiles alone do
// not count: Scan parses nothing without a manifest next to them.
func (e *Ecosystem) Detect(files []domain.File) bool {
	for _, f := range ecosystem.MatchFiles(e.definition, files) {
		if path.Base(f.Path) == "package.json" {
			return true
		}
	}
	return false
}

// Scan parses every package.json in the tree listing.
func (e *Ecosystem) Scan(
	ctx context.Context,
	provider domain.Provider,
	repo domain.Repository,
	files []domain.File,
) ([]domain.Manifest, error) {
	var manifests []domain.Manifest
	for _, f := range ecosystem.MatchFiles(e.definition, files) {
		if path.Base(f.Path) != "package.json" {
			continue // lockfiles mark the package manager, not a manifest
		}

		content, err := provider.GetFileContent(ctx, repo, f.Path)
		if err != nil {
			logger.Warnf("[javascript] Failed to read %s: %v", f.Path, err)
			continue
		}

		manifest := ParseManifest(f.Path, content)
		manifest.System = DetectPackageManager(f.Path, files)
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

// DetectPackageManager picks the package manager for a package.json based on
// the lockfile sitting next to it: pnpm-lock.yaml -> pnpm, yarn.lock -> yarn,
// anything else -> npm.
func DetectPackageManager(manifestPath string, files []domain.File) string {
	dir := path.Dir(manifestPath)
	lockfiles := map[string]string{
		path.Join(dir, "pnpm-lock.yaml"): pkgMgrPnpm,
		path.Join(dir, "yarn.lock"):      pkgMgrYarn,
	}
	for _, f := range files {
		if mgr, ok := lockfiles[f.Path]; ok {
			return mgr
		}
	}
	return pkgMgrNpm
}

// ParseManifest parses a package.json into a manifest. Unparseable files
// still yield a manifest without dependencies.
func ParseManifest(filePath, content string) domain.Manifest {
	manifest := domain.Manifest{
		Ecosystem: ecosystemName,
		System:    pkgMgrNpm,
		Path:      filePath,
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		logger.Debugf("[javascript] Failed to parse %s: %v", filePath, err)
		return manifest
	}

	manifest.Dependencies = append(
		mapDependencies(pkg.Dependencies, filePath),
		mapDependencies(pkg.DevDependencies, filePath)...,
	)

	return manifest
}

func mapDependencies(entries map[string]string, filePath string) []domain.Dependency {
	deps := make([]domain.Dependency, 0, len(entries))
	for name, version := range entries {
		deps = append(deps, domain.Dependency{
			Name:     name,
			Version:  version,
			FilePath: filePath,
		})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}
