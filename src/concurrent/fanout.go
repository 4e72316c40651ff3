// Package concurrent provides a small bounded fan-out helper.
package concurrent

import (
	"context"
	"sync"
)

// DefaultLimit bounds how many items run at once.
const DefaultLimit = 10

// FanOut runs fn for every item with at most DefaultLimit in flight and waits
// for all of them. Results are positional: out[i] corresponds to items[i].
// Failure is carried in R itself, so one slow or failed item never hides the
// others.
func FanOut[T, R any](ctx context.Context, items []T, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	sem := make(chan struct{}, DefaultLimit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = fn(ctx, item)
		}(i, item)
	}

	wg.Wait()
	return out
}
