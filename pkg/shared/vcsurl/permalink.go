package vcsurl

import (
	"errors"
	"fmt"
	"strings"
)

// Permalink builder errors
var (
	ErrMissingNamespace = errors.New("namespace is required")
	ErrMissingProject   = errors.New("project is required")
	ErrMissingRef       = errors.New("ref (branch, tag, or commit SHA) is required")
	ErrMissingFile      = errors.New("file path is required")
	ErrMissingHost      = errors.New("host is required for Generic/Unknown VCS type (no default available)")
)

var defaultHosts = map[VCSType]string{
	Github:    "github.com",
	Gitlab:    "gitlab.com",
	Bitbucket: "bitbucket.org",
}

// PermalinkParams holds parameters for building VCS file permalinks.
type PermalinkParams struct {
	VCSType   VCSType
	Host      string // Optional: defaults to public host for VCSType
	Namespace string
	Project   string
	Ref       string // Branch, tag, or commit SHA
	File      string // Repository-relative file path (forward slashes)
	Line      int    // 1-based, 0 means no line anchor
}

func validatePermalinkParams(p PermalinkParams) error {
	switch {
	case p.Namespace == "":
		return ErrMissingNamespace
	case p.Project == "":
		return ErrMissingProject
	case p.Ref == "":
		return ErrMissingRef
	case p.File == "":
		return ErrMissingFile
	}
	return nil
}

// BuildPermalink generates a link to a single line of a file at a given ref:
//   - GitHub/Generic: https://{host}/{ns}/{proj}/blob/{ref}/{file}#L{line}
//   - GitLab:         https://{host}/{ns}/{proj}/-/blob/{ref}/{file}#L{line}
//   - Bitbucket:      https://{host}/projects/{ns}/repos/{proj}/browse/{file}?at={ref}#{line}
func BuildPermalink(p PermalinkParams) (string, error) {
	if err := validatePermalinkParams(p); err != nil {
		return "", err
	}

	host := p.Host
	if host == "" {
		var ok bool
		if host, ok = defaultHosts[p.VCSType]; !ok {
			return "", ErrMissingHost
		}
	}

	file := strings.TrimLeft(strings.ReplaceAll(p.File, "\\", "/"), "/")

	switch p.VCSType {
	case Gitlab:
		return fmt.Sprintf("https://%s/%s/%s/-/blob/%s/%s", host, p.Namespace, p.Project, p.Ref, file) + lineAnchor("#L", p.Line), nil
	case Bitbucket:
		return fmt.Sprintf("https://%s/projects/%s/repos/%s/browse/%s?at=%s", host, p.Namespace, p.Project, file, p.Ref) + lineAnchor("#", p.Line), nil
	default:
		return fmt.Sprintf("https://%s/%s/%s/blob/%s/%s", host, p.Namespace, p.Project, p.Ref, file) + lineAnchor("#L", p.Line), nil
	}
}

func lineAnchor(prefix string, line int) string {
	if line <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%d", prefix, line)
}

// PermalinkForRemote links a finding anchor to the web view of the repository the remote points to.
func PermalinkForRemote(ref RemoteRef, commit, file string, line int) (string, error) {
	return BuildPermalink(PermalinkParams{
		VCSType:   ref.VCSType(),
		Host:      ref.Hostname(),
		Namespace: ref.Namespace(),
		Project:   ref.Repository(),
		Ref:       commit,
		File:      file,
		Line:      line,
	})
}
