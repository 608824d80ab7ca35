package search

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SearchAll runs one search per pattern concurrently and returns the results
// keyed by pattern. Each search is independent; the first failure cancels the
// rest and is returned.
func (c *Client) SearchAll(ctx context.Context, patterns []string, dir string, opts Options) (map[string]*Result, error) {
	results := make(map[string]*Result, len(patterns))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, pattern := range patterns {
		pattern := pattern
		g.Go(func() error {
			res, err := c.Search(gctx, pattern, dir, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results[pattern] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
