package cmd

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	providerFilter  string
	orgOverride     string
	ecosystemFilter string
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory repositories and their dependency manifests",
	Long: `Discover repositories, inspect each one for dependency manifests,
and write CSV reports.

This is the main command intended for recurring inventory jobs.
It reads the configuration (file or environment variables),
discovers the repositories of each configured provider and
organization, filters them by language, then runs every
registered ecosystem scanner against each repository.`,
	RunE: runScan,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	scanCmd.Flags().StringVar(
		&providerFilter, "provider", "",
		"Only process this provider (github, gitlab)",
	)
	scanCmd.Flags().StringVar(
		&orgOverride, "org", "",
		"Only process this organization/group",
	)
	scanCmd.Flags().StringVar(
		&ecosystemFilter, "ecosystem", "",
		"Only run this ecosystem scanner (python, golang, javascript, terraform)",
	)
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := injectInventoryService()

	logger.Info("Starting inventory run...")

	return svc.Run(ctx, cfg, application.RunOptions{
		Verbose:       verbose,
		ProviderName:  providerFilter,
		OrgOverride:   orgOverride,
		Language:      languageFlag,
		EcosystemName: ecosystemFilter,
		OutputDir:     outputDir,
	})
}
