package service

import (
	"context"
	"sync"
	"time"

	"github.com/locvowork/inventory_workbook/internal/domain"
)

const (
	defaultFetchWorkers = 4
	fetchMaxRetries     = 2
)

func fetchBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 200 * time.Millisecond
}

type fetchResult struct {
	index int
	data  *domain.SheetData
	err   error
}

// fetchSheets runs the queries against the source with a bounded worker pool
// and returns the results in query order. Transient failures are retried with
// a linear backoff; the first error that survives its retries fails the whole
// fetch.
func fetchSheets(ctx context.Context, source domain.InventorySource, queries []domain.SheetQuery, workers int) ([]*domain.SheetData, error) {
	if workers <= 0 {
		workers = defaultFetchWorkers
	}
	if workers > len(queries) {
		workers = len(queries)
	}

	jobs := make(chan int, len(queries))
	results := make(chan fetchResult, len(queries))

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case idx, ok := <-jobs:
				if !ok {
					return
				}
				data, err := fetchWithRetry(ctx, source, queries[idx])
				select {
				case <-ctx.Done():
					return
				case results <- fetchResult{index: idx, data: data, err: err}:
				}
			}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

	for i := range queries {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*domain.SheetData, len(queries))
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		ordered[res.index] = res.data
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ordered, nil
}

func fetchWithRetry(ctx context.Context, source domain.InventorySource, query domain.SheetQuery) (*domain.SheetData, error) {
	data, err := source.FetchSheet(ctx, query)
	for attempt := 1; err != nil && attempt <= fetchMaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(fetchBackoff(attempt)):
		}
		data, err = source.FetchSheet(ctx, query)
	}
	return data, err
}
