package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	// Global flags
	configPath   string
	tokenFlag    string
	languageFlag string
	outputDir    string
	verbose      bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "depscout",
	Short: "Multi-provider repository and dependency inventory",
	Long: `A CLI tool that discovers the repositories of an organization,
filters them by programming language, and inspects each one for
dependency manifests (pip, poetry, go modules, npm, terraform, ...).

This tool helps answer "what do we run and what does it depend on" by:
- Discovering all repositories of the configured organizations
- Filtering repositories by their primary language
- Detecting which dependency-management system each repository uses
- Writing CSV reports with repository metadata and manifest findings`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", "",
		"Path to config file (default: auto-detect, then environment variables)",
	)
	rootCmd.PersistentFlags().StringVar(
		&tokenFlag, "token", "",
		"Auth token for the Git provider (overrides config and env vars)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&languageFlag, "language", "l", "",
		"Only inventory repositories with this primary language",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputDir, "output", "O", "",
		"Directory to write CSV reports to (default: current directory)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Enable verbose output",
	)
}

// loadConfig resolves the configuration in order of precedence:
// explicit --config path, auto-detected config file, then environment
// variables. The --token flag overrides every provider token.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath, _ = config.FindConfigFile()
	}

	if cfgPath != "" {
		logger.Infof("Using config file: %s", cfgPath)
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		logger.Debug("No config file found, falling back to environment variables")
		loaded, err := config.FromEnvironment()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found and environment incomplete: %w\n"+
					"Specify one with --config, create depscout.yaml, "+
					"or set ORGANIZATION and GITHUB_TOKEN",
				err,
			)
		}
		cfg = loaded
	}

	if tokenFlag != "" {
		for i := range cfg.Providers {
			cfg.Providers[i].Token = tokenFlag
		}
	}

	return cfg, nil
}
