package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/depscout/depscout/domain"
)

// ManifestsFileName is the combined report with dependency-manifest columns.
const ManifestsFileName = "repos_with_dependencies.csv"

var repositoryHeader = []string{
	"name",
	"full_name",
	"html_url",
	"description",
	"created_at",
	"updated_at",
	"pushed_at",
	"stargazers_count",
	"watchers_count",
	"forks_count",
	"language",
	"owner",
	"private",
	"size",
	"open_issues_count",
	"default_branch",
	"most_recent_commit_sha",
	"most_recent_commit_author",
	"most_recent_commit_date",
}

var manifestHeader = append(
	append([]string{}, repositoryHeader...),
	"dependency_management_system",
	"dependency_file",
)

// RepositoriesFileName names the per-run repository report, e.g.
// "acme_Python_repos.csv". An empty language becomes "all".
func RepositoriesFileName(org, language string) string {
	if language == "" {
		language = "all"
	}
	return fmt.Sprintf("%s_%s_repos.csv", org, language)
}

// WriteRepositories writes the repository metadata report to dir.
func WriteRepositories(dir, org, language string, reports []domain.Report) (string, error) {
	path := filepath.Join(dir, RepositoriesFileName(org, language))
	return path, writeCSV(path, repositoryHeader, reports, repositoryRow)
}

// WriteManifests writes the combined repository + dependency-manifest report
// to dir. Repositories without a recognized manifest are reported with the
// Unknown/None fallback values.
func WriteManifests(dir string, reports []domain.Report) (string, error) {
	path := filepath.Join(dir, ManifestsFileName)
	return path, writeCSV(path, manifestHeader, reports, manifestRow)
}

func writeCSV(
	path string,
	header []string,
	reports []domain.Report,
	row func(domain.Report) []string,
) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeErr := writer.Write(header); writeErr != nil {
		return fmt.Errorf("failed to write header: %w", writeErr)
	}
	for _, report := range reports {
		if writeErr := writer.Write(row(report)); writeErr != nil {
			return fmt.Errorf("failed to write row for %q: %w", report.Repository.FullName, writeErr)
		}
	}

	writer.Flush()
	if flushErr := writer.Error(); flushErr != nil {
		return fmt.Errorf("failed to flush report %q: %w", path, flushErr)
	}
	return nil
}

func repositoryRow(report domain.Report) []string {
	repo := report.Repository

	commitSHA, commitAuthor, commitDate := "", "", ""
	if report.Commit != nil {
		commitSHA = report.Commit.SHA
		commitAuthor = report.Commit.Author
		commitDate = formatTime(report.Commit.Date)
	}

	return []string{
		repo.Name,
		repo.FullName,
		repo.HTMLURL,
		repo.Description,
		formatTime(repo.CreatedAt),
		formatTime(repo.UpdatedAt),
		formatTime(repo.PushedAt),
		strconv.Itoa(repo.Stars),
		strconv.Itoa(repo.Watchers),
		strconv.Itoa(repo.Forks),
		repo.Language,
		repo.Organization,
		strconv.FormatBool(repo.Private),
		strconv.Itoa(repo.Size),
		strconv.Itoa(repo.OpenIssues),
		repo.DefaultBranch,
		commitSHA,
		commitAuthor,
		commitDate,
	}
}

func manifestRow(report domain.Report) []string {
	return append(
		repositoryRow(report),
		report.DependencySystem(),
		report.ManifestPath(),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
