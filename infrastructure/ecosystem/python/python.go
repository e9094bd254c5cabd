package python

import (
	"context"
	"path"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/depscout/depscout/domain"
	"github.com/depscout/depscout/infrastructure/ecosystem"
	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

const ecosystemName = "python"

// specifier operators, longest first so "==" wins over "=".
var specifierOperators = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}

// Ecosystem implements domain.Ecosystem for Python dependency manifests.
// It recognizes requirements.txt (pip), pyproject.toml (poetry or the declared
// build backend), Pipfile (pipenv), and setup.py (setuptools).
type Ecosystem struct {
	definition definitions.Definition
}

// New creates the Python ecosystem.
func New() domain.Ecosystem {
	return &Ecosystem{definition: definitions.MustForName(ecosystemName)}
}

func (e *Ecosystem) Name() string     { return ecosystemName }
func (e *Ecosystem) Language() string { return e.definition.Language }

// Detect returns true if the tree contains any Python manifest.
func (e *Ecosystem) Detect(files []domain.File) bool {
	return len(ecosystem.MatchFiles(e.definition, files)) > 0
}

// Scan parses every Python manifest in the tree listing.
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
			logger.Warnf("[python] Failed to read %s: %v", f.Path, err)
			continue
		}
		manifests = append(manifests, ParseManifest(f.Path, content))
	}
	return manifests, nil
}

// ParseManifest builds the manifest for a single Python dependency file.
func ParseManifest(filePath, content string) domain.Manifest {
	switch path.Base(filePath) {
	case "requirements.txt":
		return domain.Manifest{
			Ecosystem:    ecosystemName,
			System:       "pip",
			Path:         filePath,
			Dependencies: ParseRequirements(content, filePath),
		}
	case "pyproject.toml":
		return domain.Manifest{
			Ecosystem:    ecosystemName,
			System:       ClassifyPyproject(content),
			Path:         filePath,
			Dependencies: ParsePyproject(content, filePath),
		}
	case "Pipfile":
		return domain.Manifest{
			Ecosystem:    ecosystemName,
			System:       "pipenv",
			Path:         filePath,
			Dependencies: parsePipfile(content, filePath),
		}
	default: // setup.py
		return domain.Manifest{
			Ecosystem: ecosystemName,
			System:    "setuptools",
			Path:      filePath,
		}
	}
}

// ParseRequirements extracts dependencies from requirements.txt content.
// Comment lines, includes (-r/-c), and pip flags are skipped.
func ParseRequirements(content, filePath string) []domain.Dependency {
	var deps []domain.Dependency

	for lineIdx, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		// Strip environment markers and trailing comments
		if idx := strings.Index(line, ";"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}
		if idx := strings.Index(line, " #"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}

		name, version := splitSpecifier(line)
		if name == "" {
			continue
		}

		deps = append(deps, domain.Dependency{
			Name:     name,
			Version:  version,
			FilePath: filePath,
			Line:     lineIdx + 1,
		})
	}

	return deps
}

// splitSpecifier splits "requests[socks]>=2.31,<3" into name and constraint.
func splitSpecifier(requirement string) (string, string) {
	opIdx := -1
	for _, op := range specifierOperators {
		if idx := strings.Index(requirement, op); idx != -1 && (opIdx == -1 || idx < opIdx) {
			opIdx = idx
		}
	}

	name := requirement
	version := ""
	if opIdx != -1 {
		name = requirement[:opIdx]
		version = strings.TrimSpace(requirement[opIdx:])
	}

	// Drop extras from the name: "requests[socks]" -> "requests"
	if idx := strings.Index(name, "["); idx != -1 {
		name = name[:idx]
	}

	return strings.TrimSpace(name), version
}

// ClassifyPyproject determines the dependency-management system a
// pyproject.toml belongs to: poetry when a [tool.poetry] table is present,
// otherwise the declared build backend, falling back to "pep517".
func ClassifyPyproject(content string) string {
	if strings.Contains(content, "[tool.poetry]") {
		return "poetry"
	}

	backends := map[string]string{
		"hatchling":  "hatch",
		"setuptools": "setuptools",
		"flit":       "flit",
		"pdm":        "pdm",
		"maturin":    "maturin",
	}
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "build-backend") {
			continue
		}
		for marker, system := range backends {
			if strings.Contains(line, marker) {
				return system
			}
		}
	}

	return "pep517"
}

// ParsePyproject extracts dependencies from a pyproject.toml, covering both
// the PEP 621 `dependencies = [...]` array and [tool.poetry.dependencies]
// tables. The format is TOML but both shapes are line-oriented enough for a
// section-aware line parser, which keeps the ecosystem free of a TOML
// dependency nothing else needs.
func ParsePyproject(content, filePath string) []domain.Dependency {
	var deps []domain.Dependency

	section := ""
	inDependencyArray := false
	for lineIdx, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		lineNo := lineIdx + 1

		if strings.HasPrefix(line, "[") {
			section = strings.Trim(line, "[]")
			inDependencyArray = false
			continue
		}

		switch {
		case section == "project" && strings.HasPrefix(line, "dependencies"):
			inDependencyArray = true
			// Entries may start on the same line: dependencies = ["requests"]
			deps = append(deps, parseRequirementStrings(line, filePath, lineNo)...)
			if strings.Contains(line, "]") {
				inDependencyArray = false
			}
		case section == "project" && inDependencyArray:
			deps = append(deps, parseRequirementStrings(line, filePath, lineNo)...)
			if strings.Contains(line, "]") {
				inDependencyArray = false
			}
		case strings.HasPrefix(section, "tool.poetry.dependencies") ||
			strings.HasPrefix(section, "tool.poetry.group"):
			if dep, ok := parsePoetryEntry(line, filePath, lineNo); ok {
				deps = append(deps, dep)
			}
		}
	}

	return deps
}

// parseRequirementStrings pulls quoted PEP 508 requirement strings out of an
// array line and parses each like a requirements.txt entry.
func parseRequirementStrings(line, filePath string, lineNo int) []domain.Dependency {
	var deps []domain.Dependency
	rest := line
	for {
		start := strings.IndexAny(rest, `"'`)
		if start == -1 {
			break
		}
		quote := rest[start]
		end := strings.IndexByte(rest[start+1:], quote)
		if end == -1 {
			break
		}
		requirement := rest[start+1 : start+1+end]
		rest = rest[start+2+end:]

		name, version := splitSpecifier(requirement)
		if name == "" {
			continue
		}
		deps = append(deps, domain.Dependency{
			Name:     name,
			Version:  version,
			FilePath: filePath,
			Line:     lineNo,
		})
	}
	return deps
}

// parsePoetryEntry parses a `name = "^1.2"` table line; python itself is the
// interpreter constraint, not a dependency.
func parsePoetryEntry(line, filePath string, lineNo int) (domain.Dependency, bool) {
	if line == "" || strings.HasPrefix(line, "#") {
		return domain.Dependency{}, false
	}

	name, value, found := strings.Cut(line, "=")
	if !found {
		return domain.Dependency{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "python" {
		return domain.Dependency{}, false
	}

	version := strings.Trim(strings.TrimSpace(value), `"'`)
	if strings.HasPrefix(version, "{") {
		// Inline table ({ version = "...", extras = [...] }); keep it raw
		version = strings.TrimSpace(value)
	}

	return domain.Dependency{
		Name:     name,
		Version:  version,
		FilePath: filePath,
		Line:     lineNo,
	}, true
}

// parsePipfile extracts entries from [packages] and [dev-packages] sections.
func parsePipfile(content, filePath string) []domain.Dependency {
	var deps []domain.Dependency

	section := ""
	for lineIdx, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if strings.HasPrefix(line, "[") {
			section = strings.Trim(line, "[]")
			continue
		}
		if section != "packages" && section != "dev-packages" {
			continue
		}
		if dep, ok := parsePoetryEntry(line, filePath, lineIdx+1); ok {
			deps = append(deps, dep)
		}
	}

	return deps
}
