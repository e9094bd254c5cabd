package golang

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"

	"github.com/depscout/depscout/domain"
	"github.com/depscout/depscout/infrastructure/ecosystem"
	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

const (
	ecosystemName = "golang"
	systemName    = "go modules"
)

// Ecosystem implements domain.Ecosystem for Go modules.
type Ecosystem struct {
	definition definitions.Definition
}

// New creates the Go modules ecosystem.
func New() domain.Ecosystem {
	return &Ecosystem{definition: definitions.MustForName(ecosystemName)}
}

func (e *Ecosystem) Name() string     { return ecosystemName }
func (e *Ecosystem) Language() string { return e.definition.Language }

// Detect returns true if the tree contains a go.mod file.
func (e *Ecosystem) Detect(files []domain.File) bool {
	return len(ecosystem.MatchFiles(e.definition, files)) > 0
}

// Scan parses every go.mod in the tree listing, covering multi-module repos.
func (e *Ecosystem) Scan(
	ctx context.Context,
	provider domain.Provider,
	repo domain.Repository,
	files []domain.File,
) ([]domain.Manifest, error) {
	var manifests []domain.Manifest
	for _, f := range ecosystem.MatchFiles(e.definition, files) {
		content, err := provider.GetFileContent(ctx, repo, f.Path)
		if err != nil {
			logger.Warnf("[golang] Failed to read %s: %v", f.Path, err)
			continue
		}
		manifests = append(manifests, ParseManifest(f.Path, content))
	}
	return manifests, nil
}

// ParseManifest parses a go.mod file into a manifest. Unparseable files still
// yield a manifest (the file's presence is the signal), just without
// dependencies.
func ParseManifest(filePath, content string) domain.Manifest {
	manifest := domain.Manifest{
		Ecosystem: ecosystemName,
		System:    systemName,
		Path:      filePath,
	}

	parsed, err := modfile.Parse(filePath, []byte(content), nil)
	if err != nil {
		logger.Debugf("[golang] Failed to parse %s: %v", filePath, err)
		return manifest
	}

	for _, req := range parsed.Require {
		if req.Indirect {
			continue
		}
		line := 0
		if req.Syntax != nil {
			line = req.Syntax.Start.Line
		}
		manifest.Dependencies = append(manifest.Dependencies, domain.Dependency{
			Name:     req.Mod.Path,
			Version:  req.Mod.Version,
			FilePath: filePath,
			Line:     line,
		})
	}

	return manifest
}
