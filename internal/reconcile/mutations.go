package reconcile

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/metrics"
	"github.com/scan-io-git/portal-lens/internal/store"
)

// Mutator changes findings on the portal.
type Mutator interface {
	SetStatus(ctx context.Context, id int, status findings.TriageStatus) error
	AddTag(ctx context.Context, id int, name string) error
	RemoveTag(ctx context.Context, id int, name string) error
}

// Mutations applies finding changes on the portal and mirrors confirmed rejects locally.
type Mutations struct {
	portal Mutator
	store  *store.FindingStore
	email  string
	logger hclog.Logger
}

// NewMutations creates the mutation path. email, when set, is added as a tag to rejected findings.
func NewMutations(portal Mutator, st *store.FindingStore, email string, logger hclog.Logger) *Mutations {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Mutations{portal: portal, store: st, email: email, logger: logger}
}

// Reject sets the finding to rejected and tags it, all calls in parallel. The finding is removed
// from the store only when every call succeeded; a failure leaves the store untouched.
func (m *Mutations) Reject(ctx context.Context, id int) (removed bool, err error) {
	m.logger.Info("reject finding", "id", id)

	var g errgroup.Group
	g.Go(func() error { return m.portal.SetStatus(ctx, id, findings.TriageRejected) })
	g.Go(func() error { return m.portal.AddTag(ctx, id, findings.RejectedByDeveloper) })
	if m.email != "" {
		g.Go(func() error { return m.portal.AddTag(ctx, id, m.email) })
	}

	if err := g.Wait(); err != nil {
		metrics.MutationsTotal.WithLabelValues("reject", "error").Inc()
		return false, fmt.Errorf("failed to reject finding %d: %w", id, err)
	}
	metrics.MutationsTotal.WithLabelValues("reject", "ok").Inc()

	if m.store == nil {
		return false, nil
	}
	removed, err = m.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("finding %d rejected but local state was not updated: %w", id, err)
	}
	return removed, nil
}

// Tag adds or removes a tag on a finding. Tags are not cached locally.
func (m *Mutations) Tag(ctx context.Context, id int, name string, add bool) error {
	kind, call := "tag_remove", m.portal.RemoveTag
	if add {
		kind, call = "tag_add", m.portal.AddTag
	}

	if err := call(ctx, id, name); err != nil {
		metrics.MutationsTotal.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("failed to update tag %q on finding %d: %w", name, id, err)
	}
	metrics.MutationsTotal.WithLabelValues(kind, "ok").Inc()
	m.logger.Info("finding tag updated", "id", id, "tag", name, "add", add)
	return nil
}
