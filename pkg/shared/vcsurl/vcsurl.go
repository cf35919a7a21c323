package vcsurl

import (
	"errors"
	"fmt"
	"strings"
)

type VCSType int

const (
	UnknownVCS VCSType = iota // UnknownVCS means that the type of VCS is unknown and should be determined from the host
	GenericVCS                // GenericVCS is any self-hosted or unrecognised git server
	Github
	Gitlab
	Bitbucket
)

// Scheme is the accepted prefix of a remote URL.
type Scheme string

const (
	SchemeSCP   Scheme = "git@"
	SchemeHTTPS Scheme = "https://"
	SchemeSSH   Scheme = "ssh://"
	SchemeGit   Scheme = "git://"
)

// Parse errors. Every error returned by ParseRemote wraps ErrParse.
var (
	ErrParse             = errors.New("unable to parse remote URL")
	ErrUnsupportedScheme = fmt.Errorf("%w: unsupported scheme", ErrParse)
	ErrMalformedRemote   = fmt.Errorf("%w: missing host or path", ErrParse)
)

// RemoteRef is a normalized repository location taken from a git remote URL.
// Domain never carries a port; an explicit port of the remote is kept in Port.
type RemoteRef struct {
	Domain string
	Port   string
	Path   string
	Scheme Scheme
}

// String joins the domain and path with a single slash, the form asset values usually take.
func (r RemoteRef) String() string {
	return r.Domain + "/" + r.Path
}

// URL rebuilds a remote URL with the separator of the original scheme.
func (r RemoteRef) URL() string {
	if r.Scheme == SchemeSCP {
		return string(SchemeSCP) + r.Domain + ":" + r.Path
	}
	scheme := r.Scheme
	if scheme == "" {
		scheme = SchemeHTTPS
	}
	host := r.Domain
	if r.Port != "" {
		host += ":" + r.Port
	}
	return string(scheme) + host + "/" + r.Path
}

// Hostname returns the host the web view is served from.
func (r RemoteRef) Hostname() string {
	return r.Domain
}

// Namespace returns every path segment except the last one.
func (r RemoteRef) Namespace() string {
	if i := strings.LastIndex(r.Path, "/"); i != -1 {
		return r.Path[:i]
	}
	return ""
}

// Repository returns the last path segment.
func (r RemoteRef) Repository() string {
	return r.Path[strings.LastIndex(r.Path, "/")+1:]
}

// VCSType guesses the hosting flavour from the hostname.
func (r RemoteRef) VCSType() VCSType {
	vcsType, _ := determineVCSType(r.Hostname())
	return vcsType
}

// determineVCSType determines the VCS type based on the hostname
func determineVCSType(host string) (VCSType, error) {
	switch {
	case strings.Contains(host, "github"):
		return Github, nil
	case strings.Contains(host, "gitlab"):
		return Gitlab, nil
	case strings.Contains(host, "bitbucket"):
		return Bitbucket, nil
	default:
		return GenericVCS, fmt.Errorf("unknown VCS type for host: %q", host)
	}
}

// ParseRemote splits a git remote URL into domain and repository path. It is pure: no network
// or filesystem access. Accepted forms:
//
//	git@host:path[.git]
//	https://[user[:pass]@]host[:port]/path[.git]
//	ssh://[user@]host[:port]/path[.git]
//	git://host[:port]/path[.git]
func ParseRemote(raw string) (RemoteRef, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	var ref RemoteRef
	switch {
	case strings.HasPrefix(s, string(SchemeSCP)):
		ref.Scheme = SchemeSCP
		rest := s[len(SchemeSCP):]
		sep := strings.IndexAny(rest, ":/")
		if sep == -1 {
			return RemoteRef{}, fmt.Errorf("%w: %q", ErrMalformedRemote, raw)
		}
		ref.Domain, ref.Path = rest[:sep], rest[sep+1:]
	case strings.HasPrefix(s, string(SchemeHTTPS)):
		ref.Scheme = SchemeHTTPS
	case strings.HasPrefix(s, string(SchemeSSH)):
		ref.Scheme = SchemeSSH
	case strings.HasPrefix(s, string(SchemeGit)):
		ref.Scheme = SchemeGit
	default:
		return RemoteRef{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}

	if ref.Scheme != SchemeSCP {
		rest := s[len(ref.Scheme):]
		authority, path, _ := strings.Cut(rest, "/")
		if at := strings.LastIndex(authority, "@"); at != -1 {
			authority = authority[at+1:]
		}
		ref.Domain, ref.Port = splitPort(authority)
		ref.Path = path
	}

	ref.Path = strings.Trim(ref.Path, "/")
	if ref.Domain == "" || ref.Path == "" {
		return RemoteRef{}, fmt.Errorf("%w: %q", ErrMalformedRemote, raw)
	}
	return ref, nil
}

// splitPort separates a numeric port from host. Anything else after the last colon stays in host.
func splitPort(authority string) (string, string) {
	i := strings.LastIndex(authority, ":")
	if i == -1 || i == len(authority)-1 {
		return strings.TrimSuffix(authority, ":"), ""
	}
	port := authority[i+1:]
	for _, c := range port {
		if c < '0' || c > '9' {
			return authority, ""
		}
	}
	return authority[:i], port
}
