package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// RepositoryMetadata describes the repository a workspace belongs to.
type RepositoryMetadata struct {
	RepoRootFolder string
	RemoteURL      string
	BranchName     *string
	CommitHash     *string
	UserEmail      string
}

func open(root string) (*git.Repository, string, error) {
	repoRoot, err := findGitRepositoryPath(root)
	if err != nil {
		return nil, "", err
	}

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, filepath.Clean(repoRoot), nil
}

// RemoteURL returns the configured remote URL of the repository containing root.
// It returns ErrNotFound when there is no git metadata at or above root and
// ErrNoRemote when the repository has no remote URL.
func RemoteURL(root string) (string, error) {
	repo, _, err := open(root)
	if err != nil {
		return "", err
	}
	return remoteURL(repo)
}

// UserEmail returns user.email from the repository config merged with the global one.
// An empty string means the email is not configured.
func UserEmail(root string) string {
	repo, _, err := open(root)
	if err != nil {
		return ""
	}
	return userEmail(repo)
}

func userEmail(repo *git.Repository) string {
	cfg, err := repo.ConfigScoped(gitconfig.GlobalScope)
	if err != nil {
		return ""
	}
	return cfg.User.Email
}

// CollectRepositoryMetadata gathers the remote URL, HEAD and committer email for root.
// Missing HEAD or email are not errors; a missing remote is.
func CollectRepositoryMetadata(root string) (*RepositoryMetadata, error) {
	repo, repoRoot, err := open(root)
	if err != nil {
		return nil, err
	}

	md := &RepositoryMetadata{RepoRootFolder: repoRoot}

	if md.RemoteURL, err = remoteURL(repo); err != nil {
		return md, err
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	md.UserEmail = userEmail(repo)

	return md, nil
}
