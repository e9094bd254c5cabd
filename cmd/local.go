package cmd

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/infrastructure/localscan"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var localCmd = &cobra.Command{
	Use:   "local [path]",
	Short: "Inventory the dependency manifests of a local repository",
	Long: `Scan a repository checked out on the local filesystem instead of
querying a Git hosting provider. The same ecosystem scanners run
against the working tree, and the result is printed to stdout.

Needs no configuration or token.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocalScan,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(localCmd)
}

func runLocalScan(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	result, err := localscan.Scan(ctx, dir, buildEcosystemRegistry().All())
	if err != nil {
		return fmt.Errorf("local scan failed: %w", err)
	}

	logger.Infof("Scanned %s", result.Path)
	if result.Branch != "" {
		logger.Infof("Branch: %s", result.Branch)
	}
	if result.RemoteURL != "" {
		logger.Infof("Remote: %s", result.RemoteURL)
	}

	if len(result.Manifests) == 0 {
		fmt.Println("No dependency manifests found.")
		return nil
	}

	for _, manifest := range result.Manifests {
		fmt.Printf("%s (%s)\n", manifest.Path, manifest.System)
		for _, dep := range manifest.Dependencies {
			if dep.Version != "" {
				fmt.Printf("  %s %s\n", dep.Name, dep.Version)
			} else {
				fmt.Printf("  %s\n", dep.Name)
			}
		}
		fmt.Println()
	}

	systems := make([]string, 0, len(result.Manifests))
	seen := map[string]bool{}
	for _, manifest := range result.Manifests {
		if !seen[manifest.System] {
			seen[manifest.System] = true
			systems = append(systems, manifest.System)
		}
	}
	fmt.Printf("Total: %d manifests (%s)\n", len(result.Manifests), strings.Join(systems, ", "))

	return nil
}
