package terraform

import (
	"context"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/depscout/depscout/domain"
	"github.com/depscout/depscout/infrastructure/ecosystem"
	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

const (
	ecosystemName = "terraform"
	systemName    = "terraform"
	minMatchLen   = 6
)

// Ecosystem implements domain.Ecosystem for Terraform configurations. Every
// .tf file is a manifest; Git-sourced module blocks with a ?ref= pin are
// reported as dependencies.
type Ecosystem struct {
	definition definitions.Definition
}

// New creates the Terraform ecosystem.
func New() domain.Ecosystem {
	return &Ecosystem{definition: definitions.MustForName(ecosystemName)}
}

func (e *Ecosystem) Name() string     { return ecosystemName }
func (e *Ecosystem) Language() string { return e.definition.Language }

// Detect returns true if the tree contains .tf files.
func (e *Ecosystem) Detect(files []domain.File) bool {
	return len(ecosystem.MatchFiles(e.definition, files)) > 0
}

// Scan reads every .tf file and extracts Git-based module dependencies.
// Files without module blocks are not reported; a pile of plain resource
// files is not a dependency manifest.
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
			logger.Warnf("[terraform] Failed to read %s: %v", f.Path, err)
			continue
		}

		deps := ScanFile(content, f.Path)
		if len(deps) == 0 {
			continue
		}
		manifests = append(manifests, domain.Manifest{
			Ecosystem:    ecosystemName,
			System:       systemName,
			Path:         f.Path,
			Dependencies: deps,
		})
	}
	return manifests, nil
}

// ScanFile parses a Terraform file and extracts Git-based module
// dependencies, falling back to regex parsing when HCL parsing fails.
func ScanFile(content, filePath string) []domain.Dependency {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(content), filePath)
	if diags.HasErrors() {
		return scanWithRegex(content, filePath)
	}

	body := file.Body
	if body == nil {
		return nil
	}

	bodyContent, _, partialDiags := body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if partialDiags.HasErrors() {
		return scanWithRegex(content, filePath)
	}

	var deps []domain.Dependency
	for _, block := range bodyContent.Blocks {
		if block.Type != "module" {
			continue
		}

		moduleName := ""
		if len(block.Labels) > 0 {
			moduleName = block.Labels[0]
		}

		attrs, _ := block.Body.JustAttributes()
		sourceAttr, hasSource := attrs["source"]
		if !hasSource {
			continue
		}

		sourceVal, sourceDiags := sourceAttr.Expr.Value(&hcl.EvalContext{})
		if sourceDiags.HasErrors() || sourceVal.Type() != cty.String {
			continue
		}

		source := sourceVal.AsString()
		if !isGitModule(source) {
			continue
		}

		version := extractVersion(source)
		if version == "" {
			continue
		}

		cleanSource := removeVersionFromSource(source)
		deps = append(deps, domain.Dependency{
			Name:     moduleName,
			Source:   cleanSource,
			Version:  version,
			FilePath: filePath,
			Line:     block.DefRange.Start.Line,
		})
	}

	return deps
}

// scanWithRegex is a fallback parser for files HCL cannot handle.
func scanWithRegex(content, filePath string) []domain.Dependency {
	var deps []domain.Dependency

	modulePattern := regexp.MustCompile(
		`(?s)module\s+"([^"]+)"\s*\{[^}]*source\s*=\s*"([^"]+)"`,
	)
	matches := modulePattern.FindAllStringSubmatchIndex(content, -1)

	for _, match := range matches {
		if len(match) < minMatchLen {
			continue
		}

		moduleName := content[match[2]:match[3]]
		source := content[match[4]:match[5]]

		if !isGitModule(source) {
			continue
		}

		version := extractVersion(source)
		if version == "" {
			continue
		}

		cleanSource := removeVersionFromSource(source)
		lineNum := strings.Count(content[:match[0]], "\n") + 1

		deps = append(deps, domain.Dependency{
			Name:     moduleName,
			Source:   cleanSource,
			Version:  version,
			FilePath: filePath,
			Line:     lineNum,
		})
	}

	return deps
}

// --- source helpers ---

func isGitModule(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "git@") ||
		strings.Contains(source, "github.com") ||
		strings.Contains(source, "gitlab.com") ||
		strings.Contains(source, "bitbucket.org") ||
		strings.Contains(source, "dev.azure.com") ||
		strings.Contains(source, "_git/")
}

func extractVersion(source string) string {
	refPattern := regexp.MustCompile(`\?ref=([^&\s]+)`)
	if matches := refPattern.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	refPattern2 := regexp.MustCompile(`ref=([^&\s"]+)`)
	if matches := refPattern2.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func removeVersionFromSource(source string) string {
	refPattern := regexp.MustCompile(`\?ref=[^&\s"]+`)
	return refPattern.ReplaceAllString(source, "")
}
