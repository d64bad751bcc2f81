package snapshot

import (
	"context"
	"errors"
	"io/fs"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Preloader warms a DirSnapshot's content cache before checks run, so the
// sequential check phase only touches memory. Reads are order-independent;
// the cache is keyed by path, so concurrency does not affect results.
type Preloader struct {
	Concurrency int // max parallel reads; <=0 means 4
	ReadRate    int // file reads per second; <=0 means unlimited
}

// Preload reads every listed path into the snapshot cache. Unreadable or
// missing files are skipped; checks will re-encounter and swallow those
// errors individually.
func (p *Preloader) Preload(ctx context.Context, snap *DirSnapshot, paths []string) error {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	limit := rate.Inf
	if p.ReadRate > 0 {
		limit = rate.Limit(p.ReadRate)
	}
	limiter := rate.NewLimiter(limit, concurrency)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			_, err := snap.Read(path)
			if err != nil && !errors.Is(err, ErrUnreadable) && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrPathEscape) {
				// Permission errors and the like are also per-file conditions
				// the checks tolerate; only context cancellation is fatal.
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
			return nil
		})
	}

	return g.Wait()
}
