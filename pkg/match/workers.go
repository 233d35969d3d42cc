package match

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every index in [0, n) on at most workers goroutines.
// fn writes its result into an index-addressed slice, so output order always
// follows input order. The first error cancels the remaining work.
func forEach(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := 0; i < n; i++ {
		if groupCtx.Err() != nil {
			break
		}
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
