package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/depscout/depscout/domain"
)

const (
	maxNameWidth     = 40
	maxManifestWidth = 40
)

// PrintTable writes a human-readable summary of the reports.
func PrintTable(w io.Writer, reports []domain.Report) {
	nameW := len("Repository")
	langW := len("Language")
	systemW := len("System")
	manifestW := len("Manifest")

	for _, r := range reports {
		nameW = maxWidth(nameW, len(r.Repository.FullName), maxNameWidth)
		langW = maxWidth(langW, len(r.Repository.Language), maxNameWidth)
		systemW = maxWidth(systemW, len(r.DependencySystem()), maxNameWidth)
		manifestW = maxWidth(manifestW, len(r.ManifestPath()), maxManifestWidth)
	}

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
		nameW, "Repository",
		langW, "Language",
		systemW, "System",
		manifestW, "Manifest",
		"Deps")
	fmt.Fprintln(w, strings.Repeat("-", nameW+langW+systemW+manifestW+14))

	for _, r := range reports {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %d\n",
			nameW, truncate(r.Repository.FullName, nameW),
			langW, truncate(r.Repository.Language, langW),
			systemW, truncate(r.DependencySystem(), systemW),
			manifestW, truncate(r.ManifestPath(), manifestW),
			r.DependencyCount())
	}

	withManifests := 0
	for _, r := range reports {
		if len(r.Manifests) > 0 {
			withManifests++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d repositories, %d with dependency manifests\n",
		len(reports), withManifests)
}

func maxWidth(current, candidate, limit int) int {
	if candidate > current {
		current = candidate
	}
	if current > limit {
		return limit
	}
	return current
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
