// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Settle runs process for every item using at most workerCount goroutines and waits for all of them.
// A failing item never cancels its siblings; results keep the order of items.
// Items not started before ctx is done are reported with ctx.Err().
func Settle[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) (R, error),
) []Result[T, R] {
	results := make([]Result[T, R], len(items))
	if len(items) == 0 {
		return results
	}
	if workerCount <= 0 || workerCount > len(items) {
		workerCount = len(items)
	}

	tasks := make(chan int)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				item := items[idx]
				if err := ctx.Err(); err != nil {
					results[idx] = Result[T, R]{Item: item, Err: err}
					continue
				}
				value, err := process(ctx, item)
				results[idx] = Result[T, R]{Item: item, Value: value, Err: err}
			}
		}()
	}

	for idx := range items {
		tasks <- idx
	}
	close(tasks)
	wg.Wait()

	return results
}
