package reconcile

import (
	"errors"
	"fmt"

	"github.com/scan-io-git/portal-lens/internal/assets"
	"github.com/scan-io-git/portal-lens/internal/fetcher"
	"github.com/scan-io-git/portal-lens/internal/git"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/pkg/shared/vcsurl"
)

// Stage names the step of a pass that failed.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageMatch   Stage = "match"
	StageFetch   Stage = "fetch"
	StageAnchor  Stage = "anchor"
	StageStore   Stage = "store"
)

// PassError wraps the error that ended a pass.
type PassError struct {
	Stage      Stage
	Repository string
	Err        error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// Cleared reports whether the failure emptied the store.
func (e *PassError) Cleared() bool {
	return errors.Is(e.Err, assets.ErrNoAssetFound) ||
		errors.Is(e.Err, assets.ErrNoVerifiedFindings) ||
		errors.Is(e.Err, fetcher.ErrNoFindings)
}

// UserMessage turns a pass or mutation error into the one line shown to the user.
func UserMessage(err error) string {
	repository := ""
	var passErr *PassError
	if errors.As(err, &passErr) {
		repository = passErr.Repository
	}

	var statusErr *portal.StatusError
	var validationErr *portal.ValidationError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, portal.ErrNotConfigured):
		return err.Error()
	case errors.Is(err, git.ErrNotFound):
		return "Failed to find a git repository in the workspace"
	case errors.Is(err, git.ErrNoRemote):
		return "Failed to extract repository remote URL from .git/config"
	case errors.Is(err, vcsurl.ErrParse):
		return fmt.Sprintf("Failed to parse repository remote URL %q", repository)
	case errors.Is(err, assets.ErrNoAssetFound):
		return fmt.Sprintf("Repository %s is not found in portal", repository)
	case errors.Is(err, assets.ErrNoVerifiedFindings):
		return fmt.Sprintf("No verified findings for repository %s", repository)
	case errors.Is(err, fetcher.ErrNoFindings):
		return fmt.Sprintf("No findings to show for repository %s", repository)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Portal request failed: %s", statusErr)
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Portal returned an unexpected response: %s", validationErr)
	default:
		return fmt.Sprintf("Error: %s", err)
	}
}
