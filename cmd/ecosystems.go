package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/infrastructure/ecosystem/definitions"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var ecosystemsCmd = &cobra.Command{
	Use:   "ecosystems",
	Short: "Show the supported ecosystems and their manifest files",
	RunE:  runEcosystems,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(ecosystemsCmd)
}

func runEcosystems(_ *cobra.Command, _ []string) error {
	defs, err := definitions.All()
	if err != nil {
		return fmt.Errorf("failed to load ecosystem definitions: %w", err)
	}

	for _, def := range defs {
		language := def.Language
		if language == "" {
			language = "(any)"
		}
		fmt.Printf("%s (language: %s)\n", def.Name, language)
		for _, rule := range def.Manifests {
			fmt.Printf("  %-20s -> %s\n", rule.File, rule.System)
		}
		fmt.Println()
	}

	return nil
}
