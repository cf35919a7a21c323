package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
)

// ErrNoFindings means the first page came back empty.
var ErrNoFindings = errors.New("no findings to show for repository")

// Source returns pages of findings from the portal.
type Source interface {
	GetFindings(ctx context.Context, q portal.FindingQuery) (*portal.Page[findings.Finding], error)
}

// Options are the resolved filter settings of a fetch.
type Options struct {
	Severities     []findings.Severity
	TriageStatuses []findings.TriageStatus
	MaxFindings    int
	MaxPages       int
}

// OptionsFromConfig resolves the filter directive, with defaults, into typed options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	filter := config.EffectiveFilter(cfg)

	severities, err := findings.ParseSeverities(filter.Severities)
	if err != nil {
		return Options{}, fmt.Errorf("filter.severities: %w", err)
	}
	statuses, err := findings.ParseTriageStatuses(filter.TriageStatuses)
	if err != nil {
		return Options{}, fmt.Errorf("filter.triage_statuses: %w", err)
	}

	return Options{
		Severities:     severities,
		TriageStatuses: statuses,
		MaxFindings:    filter.MaxFindings,
		MaxPages:       filter.MaxPages,
	}, nil
}

// Result is the concatenation of every fetched page, in server order.
type Result struct {
	Findings []findings.Finding
	Count    int
	Pages    int
}

type Fetcher struct {
	source Source
	opts   Options
	logger hclog.Logger
}

func New(source Source, opts Options, logger hclog.Logger) Fetcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts.MaxFindings = config.SetThen(opts.MaxFindings, config.DefaultMaxFindings)
	opts.MaxPages = config.SetThen(opts.MaxPages, config.DefaultMaxPages)
	return Fetcher{source: source, opts: opts, logger: logger}
}

// Fetch walks the finding pages of the given asset values. Nothing is returned unless every
// requested page succeeds. An empty first page yields ErrNoFindings with the reported count.
func (f Fetcher) Fetch(ctx context.Context, assetValues []string) (Result, error) {
	var (
		all       []findings.Finding
		count     int
		firstSize int
		fetched   int
	)

	for page := 1; ; page++ {
		if page > f.opts.MaxPages {
			f.logger.Warn("page limit reached, remaining pages skipped", "max_pages", f.opts.MaxPages)
			break
		}

		q := portal.FindingQuery{
			TriageStatuses: f.opts.TriageStatuses,
			Severities:     f.opts.Severities,
			Assets:         assetValues,
			Page:           page,
			Ordering:       portal.DefaultOrdering,
		}
		if page > 1 {
			q.SliceIndexes = []int{0, f.opts.MaxFindings - 1}
		}

		res, err := f.source.GetFindings(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("fetching findings page %d: %w", page, err)
		}
		fetched = page

		if page == 1 {
			count = res.Total()
			firstSize = len(res.Results)
			if firstSize == 0 {
				return Result{Count: count, Pages: 1}, ErrNoFindings
			}
		}

		all = append(all, res.Results...)
		f.logger.Debug("findings page fetched", "page", page, "pages_count", res.Pages(), "results", len(res.Results))

		if res.Pages() <= page {
			break
		}
	}

	if limit := max(firstSize, f.opts.MaxFindings); len(all) > limit {
		f.logger.Debug("findings truncated", "fetched", len(all), "limit", limit)
		all = all[:limit]
	}

	return Result{Findings: all, Count: count, Pages: fetched}, nil
}
