package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchItem pairs a request with the facade that should run it.
type BatchItem struct {
	Name    string
	Facade  *Facade
	Request Request
}

// AggregateBatch runs independent requests concurrently, at most limit at a
// time (limit <= 0 means unbounded). Each request still runs synchronously on
// its own goroutine. Results come back in item order. The first failure cancels
// requests that have not started and is returned; no partial batch is returned.
func AggregateBatch(ctx context.Context, items []BatchItem, limit int) ([]*AggregatedTable, error) {
	for i, item := range items {
		if item.Facade == nil {
			return nil, configErrorf("batch item %d has no facade", i)
		}
	}
	results := make([]*AggregatedTable, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := item.Facade.Aggregate(item.Request)
			if err != nil {
				name := item.Name
				if name == "" {
					name = fmt.Sprintf("#%d", i)
				}
				return fmt.Errorf("batch item %s: %w", name, err)
			}
			results[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
