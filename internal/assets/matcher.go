package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/pkg/shared/vcsurl"
)

var (
	// ErrNoAssetFound means no repository asset on the portal corresponds to the remote.
	ErrNoAssetFound = errors.New("repository is not found in portal")
	// ErrNoVerifiedFindings means the primary asset reports no verified or assigned findings.
	ErrNoVerifiedFindings = errors.New("no verified findings for repository")
)

// MaxSeparator is the longest gap tolerated between the domain and the path inside an asset value.
const MaxSeparator = 1

// maxAssetPages bounds the asset listing walk.
const maxAssetPages = 10

// Source lists repository assets on the portal.
type Source interface {
	GetAssets(ctx context.Context, q portal.AssetQuery) (*portal.Page[findings.Asset], error)
}

type Matcher struct {
	source          Source
	logger          hclog.Logger
	requireVerified bool
}

func NewMatcher(source Source, logger hclog.Logger) *Matcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Matcher{source: source, logger: logger}
}

// RequireVerified makes Match fail with ErrNoVerifiedFindings when the primary asset has no
// verified or assigned findings. Only meaningful when the finding filter is limited to those statuses.
func (m *Matcher) RequireVerified(on bool) *Matcher {
	m.requireVerified = on
	return m
}

// Match searches the portal for ref and keeps the assets whose value plausibly names it.
// Accepted assets are ordered by verified and assigned finding count, highest first.
func (m *Matcher) Match(ctx context.Context, ref vcsurl.RemoteRef) ([]findings.Asset, error) {
	var candidates []findings.Asset
	for page := 1; page <= maxAssetPages; page++ {
		res, err := m.source.GetAssets(ctx, portal.AssetQuery{
			Type:   findings.AssetRepository,
			Search: ref.String(),
			Page:   page,
		})
		if err != nil {
			return nil, fmt.Errorf("searching assets for %s: %w", ref, err)
		}
		candidates = append(candidates, res.Results...)
		if res.Pages() <= page {
			break
		}
	}

	accepted := Filter(candidates, ref)
	m.logger.Debug("assets matched", "repository", ref.String(), "candidates", len(candidates), "accepted", len(accepted))

	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAssetFound, ref)
	}
	if m.requireVerified && accepted[0].VerifiedFindingsCount == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVerifiedFindings, ref)
	}
	return accepted, nil
}

// Filter keeps the repository assets whose value matches ref, ordered for use as the primary asset.
func Filter(candidates []findings.Asset, ref vcsurl.RemoteRef) []findings.Asset {
	var accepted []findings.Asset
	for _, asset := range candidates {
		if asset.AssetType != findings.AssetRepository {
			continue
		}
		if Matches(asset.Value, ref.Domain, ref.Path) {
			accepted = append(accepted, asset)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].VerifiedFindingsCount > accepted[j].VerifiedFindingsCount
	})
	return accepted
}

// Matches reports whether value contains domain followed by path with at most MaxSeparator
// characters between them. The comparison is case-sensitive and every occurrence of domain is tried.
func Matches(value, domain, path string) bool {
	if domain == "" || path == "" {
		return false
	}

	for offset := 0; offset <= len(value); {
		i := strings.Index(value[offset:], domain)
		if i == -1 {
			return false
		}
		end := offset + i + len(domain)

		rest := value[end:]
		if j := strings.Index(rest, path); j != -1 && j <= MaxSeparator {
			return true
		}
		offset += i + 1
	}
	return false
}
