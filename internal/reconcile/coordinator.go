package reconcile

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/scan-io-git/portal-lens/internal/metrics"
)

const passKey = "pass"

// Coordinator makes sure passes never overlap: a request arriving while a pass is in flight
// waits for that pass and receives its result.
type Coordinator struct {
	pipeline *Pipeline
	group    singleflight.Group
}

func NewCoordinator(p *Pipeline) *Coordinator {
	return &Coordinator{pipeline: p}
}

// Run starts a pass or joins the one in flight. shared is true when the result was
// delivered to more than one caller. A caller whose ctx ends stops waiting; the pass
// itself runs under the ctx of the caller that started it.
func (c *Coordinator) Run(ctx context.Context) (res Result, shared bool, err error) {
	ch := c.group.DoChan(passKey, func() (interface{}, error) {
		return c.pipeline.Run(ctx)
	})

	select {
	case <-ctx.Done():
		return Result{}, false, ctx.Err()
	case r := <-ch:
		if r.Shared {
			metrics.CoalescedPasses.Inc()
		}
		res, _ = r.Val.(Result)
		return res, r.Shared, r.Err
	}
}
