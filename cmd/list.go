package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/application"
	"github.com/depscout/depscout/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var outputFormat string

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List matching repositories without inspecting their contents",
	Long: `List the repositories of the configured organizations, filtered by
language, without fetching file trees or manifests. Useful for a
quick look at what a full scan would cover.`,
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	listCmd.Flags().StringVar(
		&providerFilter, "provider", "",
		"Only process this provider (github, gitlab)",
	)
	listCmd.Flags().StringVar(
		&orgOverride, "org", "",
		"Only process this organization/group",
	)
	listCmd.Flags().StringVar(
		&outputFormat, "format", "table",
		"Output format: table, json, or markdown",
	)
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := injectInventoryService()

	reports, err := svc.ListRepositories(ctx, cfg, application.RunOptions{
		ProviderName: providerFilter,
		OrgOverride:  orgOverride,
		Language:     languageFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No matching repositories found.")
		return nil
	}

	switch outputFormat {
	case "json":
		return printRepositoriesJSON(reports)
	case "markdown":
		printRepositoriesMarkdown(reports)
	default:
		printRepositoriesTable(reports)
	}

	return nil
}

func printRepositoriesTable(reports []domain.Report) {
	nameW := len("Repository")
	langW := len("Language")
	branchW := len("Branch")

	for _, r := range reports {
		if len(r.Repository.FullName) > nameW {
			nameW = len(r.Repository.FullName)
		}
		if len(r.Repository.Language) > langW {
			langW = len(r.Repository.Language)
		}
		if b := displayBranch(r.Repository); len(b) > branchW {
			branchW = len(b)
		}
	}
	if nameW > 50 {
		nameW = 50
	}

	fmt.Printf("%-*s  %-*s  %-*s  %8s  %s\n",
		nameW, "Repository", langW, "Language", branchW, "Branch", "Stars", "URL")
	fmt.Println(strings.Repeat("-", nameW+langW+branchW+40))

	for _, r := range reports {
		fmt.Printf("%-*s  %-*s  %-*s  %8d  %s\n",
			nameW, r.Repository.FullName,
			langW, r.Repository.Language,
			branchW, displayBranch(r.Repository),
			r.Repository.Stars,
			r.Repository.HTMLURL)
	}

	fmt.Println()
	fmt.Printf("Total: %d repositories\n", len(reports))
}

func printRepositoriesMarkdown(reports []domain.Report) {
	fmt.Println("| Repository | Language | Branch | Stars | URL |")
	fmt.Println("|------------|----------|--------|-------|-----|")
	for _, r := range reports {
		fmt.Printf("| %s | %s | %s | %d | %s |\n",
			r.Repository.FullName,
			r.Repository.Language,
			displayBranch(r.Repository),
			r.Repository.Stars,
			r.Repository.HTMLURL)
	}
}

func printRepositoriesJSON(reports []domain.Report) error {
	repos := make([]domain.Repository, 0, len(reports))
	for _, r := range reports {
		repos = append(repos, r.Repository)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(repos); err != nil {
		return fmt.Errorf("failed to encode repositories: %w", err)
	}
	return nil
}

func displayBranch(repo domain.Repository) string {
	return strings.TrimPrefix(repo.DefaultBranch, "refs/heads/")
}
