package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/annotate"
	"github.com/scan-io-git/portal-lens/internal/assets"
	"github.com/scan-io-git/portal-lens/internal/fetcher"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/git"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/internal/state"
	"github.com/scan-io-git/portal-lens/internal/store"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
	"github.com/scan-io-git/portal-lens/pkg/shared/vcsurl"
)

// BinaryName is shown in usage strings and reject hints.
const BinaryName = "portal-lens"

// ResolveRoot picks the workspace root: the flag, then workspace.root, then the working directory.
func ResolveRoot(cfg *config.Config, flagValue string) (string, error) {
	root := flagValue
	if root == "" && cfg != nil {
		root = cfg.Workspace.Root
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}

	expanded, err := files.ExpandPath(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid workspace root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid workspace root: %q is not a directory", abs)
	}
	return abs, nil
}

// Environment is the per-workspace state every command works on.
type Environment struct {
	Config *config.Config
	Logger hclog.Logger
	Root   string
	State  *state.Store
	Store  *store.FindingStore
}

// OpenEnvironment opens the state database of root and loads the cached findings.
func OpenEnvironment(ctx context.Context, cfg *config.Config, logger hclog.Logger, root string) (*Environment, error) {
	statePath, err := config.GetStatePath(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path: %w", err)
	}
	st, err := state.Open(statePath, root)
	if err != nil {
		return nil, err
	}

	fs := store.New(st)
	if err := fs.Load(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load cached findings: %w", err)
	}
	logger.Debug("workspace state loaded", "root", root, "state", statePath, "findings", fs.Len())

	return &Environment{
		Config: cfg,
		Logger: logger,
		Root:   root,
		State:  st,
		Store:  fs,
	}, nil
}

func (e *Environment) Close() error {
	return e.State.Close()
}

// Portal builds the portal client from the configuration.
func (e *Environment) Portal() (portal.Client, error) {
	return portal.New(e.Logger.Named("portal"), e.Config)
}

// Pipeline wires one reconciliation pass over the workspace.
func (e *Environment) Pipeline(client portal.Client) (*reconcile.Pipeline, error) {
	opts, err := fetcher.OptionsFromConfig(e.Config)
	if err != nil {
		return nil, err
	}

	return &reconcile.Pipeline{
		Root:    e.Root,
		Remote:  git.RemoteURL,
		Matcher: assets.NewMatcher(client, e.Logger.Named("assets")).RequireVerified(onlyVerified(opts.TriageStatuses)),
		Fetcher: fetcher.New(client, opts, e.Logger.Named("fetcher")),
		Anchor:  anchor.NewResolver(e.Root, anchor.DefaultJobs, e.Logger.Named("anchor")),
		Store:   e.Store,
		State:   e.State,
		Logger:  e.Logger,
	}, nil
}

// onlyVerified reports whether the filter is covered by the verified and assigned count assets carry.
func onlyVerified(statuses []findings.TriageStatus) bool {
	for _, s := range statuses {
		if s != findings.TriageVerified && s != findings.TriageAssigned {
			return false
		}
	}
	return len(statuses) > 0
}

// Mutations wires the reject and tag path. The git user.email is used as reject tag when known.
func (e *Environment) Mutations(client portal.Client) *reconcile.Mutations {
	return reconcile.NewMutations(client, e.Store, git.UserEmail(e.Root), e.Logger.Named("mutations"))
}

// Staleness classifies the cached finding id against the live workspace. ok is false when the
// finding is not cached or has no file and line to compare.
func (e *Environment) Staleness(id int) (status annotate.Status, ok bool) {
	f, found := e.Store.Get(id)
	if !found || !f.HasAnchor() {
		return annotate.Outdated, false
	}

	var doc *anchor.File
	if abs, err := files.EnsureWithinRoot(e.Root, filepath.Join(e.Root, filepath.FromSlash(*f.FilePath))); err == nil {
		if file, err := anchor.ReadFile(abs); err == nil {
			doc = file
		}
	}
	return annotate.Classify(f, doc), true
}

// Renderer builds the hover renderer. Source permalinks are added when the workspace is a
// git checkout with a parsable remote and a HEAD commit.
func (e *Environment) Renderer(portalURL string) annotate.Renderer {
	return annotate.Renderer{
		PortalURL: portalURL,
		Permalink: e.permalinker(),
		Binary:    BinaryName,
	}
}

// PortalURL returns the configured portal web URL, or "" when none is set.
func (e *Environment) PortalURL() string {
	if e.Config == nil {
		return ""
	}
	return e.Config.Portal.URL
}

func (e *Environment) permalinker() annotate.Permalinker {
	md, err := git.CollectRepositoryMetadata(e.Root)
	if err != nil || md.CommitHash == nil {
		e.Logger.Debug("source permalinks disabled", "error", err)
		return nil
	}
	ref, err := vcsurl.ParseRemote(md.RemoteURL)
	if err != nil {
		e.Logger.Debug("source permalinks disabled", "error", err)
		return nil
	}

	// Finding paths are relative to the workspace, which may sit below the repository root.
	prefix := files.RelativeToRoot(md.RepoRootFolder, e.Root)
	if prefix == "." {
		prefix = ""
	}
	commit := *md.CommitHash

	return func(p string, line int) string {
		link, err := vcsurl.PermalinkForRemote(ref, commit, path.Join(prefix, p), line)
		if err != nil {
			return ""
		}
		return link
	}
}
