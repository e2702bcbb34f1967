package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for each item in its own goroutine, at most limit at a
// time (limit <= 0 means no limit). The context passed to action is cancelled
// as soon as one action fails; ForEach returns the first error.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(context.Context, int, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			return action(gctx, i, item)
		})
	}
	return g.Wait()
}
