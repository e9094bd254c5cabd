// Package localscan inventories the dependency manifests of a repository
// checked out on the local filesystem. The working tree is exposed through a
// filesystem-backed domain.Provider so the same ecosystem scanners used for
// remote repositories run unchanged against local code.
package localscan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/depscout/depscout/domain"
)

// Result describes one scanned local repository.
type Result struct {
	Path      string
	RemoteURL string // origin remote, empty when not a Git repository
	Branch    string // current branch, empty when not a Git repository
	Manifests []domain.Manifest
}

// Directories that never contain first-party manifests.
var skippedDirs = map[string]bool{
	".git":         true,
	".terraform":   true,
	".venv":        true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
}

// Scan walks the working tree rooted at dir and runs every given ecosystem
// against it. The directory does not have to be a Git repository; when it is,
// the result carries the origin remote and current branch.
func Scan(ctx context.Context, dir string, ecosystems []domain.Ecosystem) (*Result, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if info, statErr := os.Stat(absDir); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	result := &Result{Path: absDir}
	describeRepository(absDir, result)

	files, err := listFiles(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absDir, err)
	}

	provider := &fsProvider{root: absDir}
	repo := domain.Repository{
		Name:      filepath.Base(absDir),
		RemoteURL: result.RemoteURL,
	}

	for _, eco := range ecosystems {
		if !eco.Detect(files) {
			continue
		}
		manifests, scanErr := eco.Scan(ctx, provider, repo, files)
		if scanErr != nil {
			logger.Errorf("[%s] Failed to scan %s: %v", eco.Name(), absDir, scanErr)
			continue
		}
		result.Manifests = append(result.Manifests, manifests...)
	}

	return result, nil
}

// describeRepository fills in remote and branch info when dir is a Git
// repository. A plain directory is fine, it just scans without them.
func describeRepository(dir string, result *Result) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			logger.Debugf("%s is not a git repository, scanning as plain directory", dir)
		} else {
			logger.Warnf("Failed to open git repository at %s: %v", dir, err)
		}
		return
	}

	if head, headErr := repo.Head(); headErr == nil {
		result.Branch = head.Name().Short()
	}
	if remote, remoteErr := repo.Remote(git.DefaultRemoteName); remoteErr == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			result.RemoteURL = urls[0]
		}
	}
}

func listFiles(root string) ([]domain.File, error) {
	var files []domain.File
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if p != root && skippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		files = append(files, domain.File{Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

var errNotSupported = errors.New("operation not supported for local scans")

// fsProvider adapts a local working tree to the provider interface so the
// ecosystem scanners can read manifest contents from disk.
type fsProvider struct {
	root string
}

var _ domain.Provider = (*fsProvider)(nil)

func (p *fsProvider) Name() string             { return "local" }
func (p *fsProvider) AuthToken() string        { return "" }
func (p *fsProvider) MatchesURL(_ string) bool { return false }

func (p *fsProvider) DiscoverRepositories(
	_ context.Context,
	_ string,
) ([]domain.Repository, error) {
	return nil, errNotSupported
}

func (p *fsProvider) SearchRepositoriesByLanguage(
	_ context.Context,
	_ string,
	_ string,
) ([]domain.Repository, error) {
	return nil, errNotSupported
}

func (p *fsProvider) GetFileContent(
	_ context.Context,
	_ domain.Repository,
	path string,
) (string, error) {
	content, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

func (p *fsProvider) ListFiles(
	_ context.Context,
	_ domain.Repository,
	pattern string,
) ([]domain.File, error) {
	files, err := listFiles(p.root)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return files, nil
	}
	var matched []domain.File
	for _, file := range files {
		if strings.HasSuffix(file.Path, pattern) {
			matched = append(matched, file)
		}
	}
	return matched, nil
}

func (p *fsProvider) HasFile(
	_ context.Context,
	_ domain.Repository,
	path string,
) bool {
	info, err := os.Stat(filepath.Join(p.root, filepath.FromSlash(path)))
	return err == nil && !info.IsDir()
}

func (p *fsProvider) LatestCommit(
	_ context.Context,
	_ domain.Repository,
) (*domain.Commit, error) {
	repo, err := git.PlainOpen(p.root)
	if err != nil {
		return nil, nil //nolint:nilnil // plain directories have no commits
	}
	head, err := repo.Head()
	if err != nil {
		return nil, nil //nolint:nilnil // unborn branch
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD commit: %w", err)
	}
	return &domain.Commit{
		SHA:    commit.Hash.String(),
		Author: commit.Author.Name,
		Date:   commit.Author.When,
	}, nil
}
