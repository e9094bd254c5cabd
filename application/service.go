package application

import (
	"context"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/depscout/depscout/config"
	"github.com/depscout/depscout/domain"
	ecosystemPkg "github.com/depscout/depscout/infrastructure/ecosystem"
	providerPkg "github.com/depscout/depscout/infrastructure/provider"
	reportPkg "github.com/depscout/depscout/infrastructure/report"
)

// InventoryService orchestrates the full inventory flow:
// discover repositories -> inspect manifests -> write reports.
type InventoryService struct {
	providerRegistry  *providerPkg.Registry
	ecosystemRegistry *ecosystemPkg.Registry
}

// NewInventoryService creates a new service with the given registries.
func NewInventoryService(
	providerRegistry *providerPkg.Registry,
	ecosystemRegistry *ecosystemPkg.Registry,
) *InventoryService {
	return &InventoryService{
		providerRegistry:  providerRegistry,
		ecosystemRegistry: ecosystemRegistry,
	}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	Verbose       bool
	ProviderName  string    // If set, only process this provider (CLI override)
	OrgOverride   string    // If set, only process this org (CLI override)
	Language      string    // If set, overrides the configured language filter
	EcosystemName string    // If set, only run this ecosystem (CLI override)
	OutputDir     string    // If set, overrides the configured report directory
	Out           io.Writer // Summary table destination, defaults to stdout
}

// Run executes the full inventory cycle using the provided configuration.
func (s *InventoryService) Run(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	language := runOpts.Language
	if language == "" {
		language = cfg.Language
	}
	outputDir := runOpts.OutputDir
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}
	if outputDir == "" {
		outputDir = "."
	}
	out := runOpts.Out
	if out == nil {
		out = os.Stdout
	}

	var allReports []domain.Report
	totalRepos := 0
	totalManifests := 0
	totalErrors := 0

	for _, provCfg := range cfg.Providers {
		// Skip if CLI filter is set and doesn't match
		if runOpts.ProviderName != "" && provCfg.Type != runOpts.ProviderName {
			continue
		}

		provider, err := s.providerRegistry.Get(provCfg.Type, provCfg.Token)
		if err != nil {
			logger.Errorf("Failed to initialize provider %q: %v", provCfg.Type, err)
			totalErrors++
			continue
		}

		logger.Infof("Processing provider: %s", provider.Name())

		for _, org := range provCfg.Organizations {
			// Skip if CLI filter is set and doesn't match
			if runOpts.OrgOverride != "" && org != runOpts.OrgOverride {
				continue
			}

			logger.Infof("Discovering repositories in %q...", org)

			repos, discoverErr := provider.SearchRepositoriesByLanguage(ctx, org, language)
			if discoverErr != nil {
				logger.Errorf("Failed to discover repos in %q: %v", org, discoverErr)
				totalErrors++
				continue
			}

			logger.Infof("Found %d repositories in %q", len(repos), org)

			var orgReports []domain.Report
			for _, repo := range repos {
				totalRepos++
				repoReport, errCount := s.inspectRepository(ctx, provider, repo, runOpts.EcosystemName)
				totalManifests += len(repoReport.Manifests)
				totalErrors += errCount
				orgReports = append(orgReports, repoReport)
			}

			path, writeErr := reportPkg.WriteRepositories(outputDir, org, language, orgReports)
			if writeErr != nil {
				logger.Errorf("Failed to write repository report for %q: %v", org, writeErr)
				totalErrors++
			} else {
				logger.Infof("Wrote repository report: %s", path)
			}

			allReports = append(allReports, orgReports...)
		}
	}

	path, writeErr := reportPkg.WriteManifests(outputDir, allReports)
	if writeErr != nil {
		logger.Errorf("Failed to write dependency report: %v", writeErr)
		totalErrors++
	} else {
		logger.Infof("Wrote dependency report: %s", path)
	}

	reportPkg.PrintTable(out, allReports)

	logger.Infof(
		"Run complete: %d repos processed, %d manifests found, %d errors",
		totalRepos, totalManifests, totalErrors,
	)
	return nil
}

// ListRepositories discovers matching repositories without inspecting their
// contents, for listing-only commands.
func (s *InventoryService) ListRepositories(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) ([]domain.Report, error) {
	language := runOpts.Language
	if language == "" {
		language = cfg.Language
	}

	var reports []domain.Report
	for _, provCfg := range cfg.Providers {
		if runOpts.ProviderName != "" && provCfg.Type != runOpts.ProviderName {
			continue
		}

		provider, err := s.providerRegistry.Get(provCfg.Type, provCfg.Token)
		if err != nil {
			return nil, err
		}

		for _, org := range provCfg.Organizations {
			if runOpts.OrgOverride != "" && org != runOpts.OrgOverride {
				continue
			}

			repos, discoverErr := provider.SearchRepositoriesByLanguage(ctx, org, language)
			if discoverErr != nil {
				logger.Errorf("Failed to discover repos in %q: %v", org, discoverErr)
				continue
			}
			for _, repo := range repos {
				reports = append(reports, domain.Report{Repository: repo})
			}
		}
	}

	return reports, nil
}

// inspectRepository resolves the newest commit and runs every applicable
// ecosystem against a single repository. Failures are logged and counted so a
// broken repository never aborts the run.
func (s *InventoryService) inspectRepository(
	ctx context.Context,
	provider domain.Provider,
	repo domain.Repository,
	ecosystemFilter string,
) (domain.Report, int) {
	repoReport := domain.Report{Repository: repo}
	errorCount := 0

	commit, commitErr := provider.LatestCommit(ctx, repo)
	if commitErr != nil {
		logger.Warnf("Failed to resolve newest commit for %s/%s: %v",
			repo.Organization, repo.Name, commitErr)
		errorCount++
	}
	repoReport.Commit = commit

	files, listErr := provider.ListFiles(ctx, repo, "")
	if listErr != nil {
		logger.Warnf("Failed to list files for %s/%s: %v",
			repo.Organization, repo.Name, listErr)
		return repoReport, errorCount + 1
	}

	for _, eco := range s.ecosystemRegistry.All() {
		// Skip if CLI filter is set and doesn't match
		if ecosystemFilter != "" && eco.Name() != ecosystemFilter {
			continue
		}

		if !eco.Detect(files) {
			continue
		}

		logger.Infof("[%s] Detected in %s/%s", eco.Name(), repo.Organization, repo.Name)

		manifests, scanErr := eco.Scan(ctx, provider, repo, files)
		if scanErr != nil {
			logger.Errorf("[%s] Failed to scan %s/%s: %v",
				eco.Name(), repo.Organization, repo.Name, scanErr)
			errorCount++
			continue
		}
		repoReport.Manifests = append(repoReport.Manifests, manifests...)
	}

	return repoReport, errorCount
}
