package provider

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// fanOutLimit bounds concurrent units inside one fan-out. Provider sites
// tolerate a handful of parallel requests; more invites rate limiting.
const fanOutLimit = 4

// fanOut runs fn over items concurrently and returns the successful results
// compacted into input order. A unit's failure never cancels its siblings;
// it is logged and converted to "no contribution". Cancellation of ctx
// still propagates into every unit.
func fanOut[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) []R {
	results := make([]*R, len(items))
	var mu sync.Mutex

	// the group context is for workers only; it is cancelled once Wait
	// returns, so the post-join filter must consult the caller's context
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				logrus.WithError(err).Debug("fan-out unit failed")
				return nil // partial success is the expected outcome
			}
			mu.Lock()
			results[i] = &r
			mu.Unlock()
			return nil
		})
	}
	g.Wait() // workers only return nil; Wait is a join

	out := make([]R, 0, len(items))
	for _, r := range results {
		if r != nil && ctx.Err() == nil {
			out = append(out, *r)
		}
	}
	return out
}

// flatten concatenates fan-out link batches preserving batch order.
func flatten[R any](batches [][]R) []R {
	var out []R
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
