package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/internal/fetcher"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/metrics"
	"github.com/scan-io-git/portal-lens/internal/store"
	"github.com/scan-io-git/portal-lens/pkg/shared/vcsurl"
)

// RemoteResolver returns the raw remote URL of the repository at root.
type RemoteResolver func(root string) (string, error)

// AssetMatcher finds the portal assets of a repository.
type AssetMatcher interface {
	Match(ctx context.Context, ref vcsurl.RemoteRef) ([]findings.Asset, error)
}

// FindingFetcher fetches every finding page of a set of asset values.
type FindingFetcher interface {
	Fetch(ctx context.Context, assetValues []string) (fetcher.Result, error)
}

// Anchorer captures line snapshots for fetched findings.
type Anchorer interface {
	Resolve(ctx context.Context, list []findings.Finding) ([]findings.Finding, error)
}

// StateWriter remembers the repository and assets of the last pass.
type StateWriter interface {
	SetRepositoryURL(ctx context.Context, v string) error
	SetAssets(ctx context.Context, v []findings.Asset) error
}

// Result summarizes a successful pass.
type Result struct {
	PassID   string
	Remote   vcsurl.RemoteRef
	Assets   []findings.Asset
	Findings int
	Count    int
	Pages    int
}

type Pipeline struct {
	Root    string
	Remote  RemoteResolver
	Matcher AssetMatcher
	Fetcher FindingFetcher
	Anchor  Anchorer
	Store   *store.FindingStore
	State   StateWriter
	Logger  hclog.Logger
}

// Run performs one reconciliation pass. The store is only replaced once every step succeeded,
// and cleared when the repository has no asset or no findings. Any other failure leaves it as is.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	passID := uuid.NewString()
	logger := p.logger().With("pass_id", passID)

	res, err := p.run(ctx, logger, passID)

	outcome := "ok"
	var passErr *PassError
	if errors.As(err, &passErr) {
		outcome = string(passErr.Stage)
	}
	metrics.PassesTotal.WithLabelValues(outcome).Inc()
	metrics.PassDuration.Observe(time.Since(started).Seconds())
	metrics.FindingsStored.Set(float64(p.Store.Len()))

	if err != nil {
		logger.Error("pass failed", "stage", outcome, "error", err)
		return res, err
	}
	logger.Info("pass completed", "findings", res.Findings, "count", res.Count, "pages", res.Pages, "duration", time.Since(started))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, logger hclog.Logger, passID string) (Result, error) {
	res := Result{PassID: passID}

	raw, err := p.Remote(p.Root)
	if err != nil {
		return res, &PassError{Stage: StageResolve, Err: err}
	}
	logger.Info("found repository URL", "url", raw)

	ref, err := vcsurl.ParseRemote(raw)
	if err != nil {
		return res, &PassError{Stage: StageResolve, Repository: raw, Err: err}
	}
	res.Remote = ref
	p.remember(ctx, logger, func(s StateWriter) error { return s.SetRepositoryURL(ctx, raw) })

	matched, err := p.Matcher.Match(ctx, ref)
	if err != nil {
		passErr := &PassError{Stage: StageMatch, Repository: ref.String(), Err: err}
		if passErr.Cleared() {
			p.clear(ctx, logger)
		}
		return res, passErr
	}
	res.Assets = matched
	p.remember(ctx, logger, func(s StateWriter) error { return s.SetAssets(ctx, matched) })
	logger.Info("assets matched", "count", len(matched), "product", matched[0].Product)

	values := make([]string, 0, len(matched))
	for _, a := range matched {
		values = append(values, a.Value)
	}

	fetched, err := p.Fetcher.Fetch(ctx, values)
	metrics.PagesFetched.Add(float64(fetched.Pages))
	if err != nil {
		if errors.Is(err, fetcher.ErrNoFindings) {
			p.clear(ctx, logger)
		}
		return res, &PassError{Stage: StageFetch, Repository: ref.String(), Err: err}
	}
	res.Count, res.Pages = fetched.Count, fetched.Pages

	anchored, err := p.Anchor.Resolve(ctx, fetched.Findings)
	if err != nil {
		return res, &PassError{Stage: StageAnchor, Repository: ref.String(), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return res, &PassError{Stage: StageStore, Repository: ref.String(), Err: err}
	}
	if err := p.Store.Replace(ctx, anchored, fetched.Count); err != nil {
		return res, &PassError{Stage: StageStore, Repository: ref.String(), Err: err}
	}
	res.Findings = len(anchored)

	return res, nil
}

func (p *Pipeline) clear(ctx context.Context, logger hclog.Logger) {
	if err := p.Store.Clear(ctx); err != nil {
		logger.Warn("failed to clear stored findings", "error", err)
	}
	p.remember(ctx, logger, func(s StateWriter) error { return s.SetAssets(ctx, nil) })
}

func (p *Pipeline) remember(ctx context.Context, logger hclog.Logger, write func(StateWriter) error) {
	if p.State == nil {
		return
	}
	if err := write(p.State); err != nil {
		logger.Warn("failed to persist state", "error", err)
	}
}

func (p *Pipeline) logger() hclog.Logger {
	if p.Logger == nil {
		return hclog.NewNullLogger()
	}
	return p.Logger
}
