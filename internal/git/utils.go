package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
)

// findGitRepositoryPath walks up from sourceFolder until it reaches a directory holding git metadata.
func findGitRepositoryPath(sourceFolder string) (string, error) {
	if sourceFolder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	for {
		_, err := git.PlainOpen(sourceFolder)
		if err == nil {
			return sourceFolder, nil
		}
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("failed to open repository at %q: %w", sourceFolder, err)
		}

		parent := filepath.Dir(sourceFolder)
		if parent == sourceFolder {
			break
		}
		sourceFolder = parent
	}

	return "", ErrNotFound
}

// remoteURL returns the first URL of "origin", falling back to the alphabetically first remote.
func remoteURL(repo *git.Repository) (string, error) {
	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 && cfg.URLs[0] != "" {
			return cfg.URLs[0], nil
		}
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", fmt.Errorf("failed to list remotes: %w", err)
	}

	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].Config().Name < remotes[j].Config().Name
	})
	for _, remote := range remotes {
		if cfg := remote.Config(); len(cfg.URLs) > 0 && cfg.URLs[0] != "" {
			return cfg.URLs[0], nil
		}
	}

	return "", ErrNoRemote
}
