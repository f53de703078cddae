package connectors

import (
	"context"
	"log"
	"time"
)

// PageFunc fetches one page of records (1-based page numbers) and reports
// how many pages the source claims to have in total. Sources with 0-based
// pagination translate inside their closure.
type PageFunc[T any] func(ctx context.Context, page int) (records []T, totalPages int, err error)

// Fetcher drives a paginated source call to exhaustion while respecting the
// source's rate limit. It is stateless across calls; one instance can serve
// any number of FetchAll invocations.
type Fetcher struct {
	// MinDelay is enforced before every page request, success or failure.
	MinDelay time.Duration
	// BaseRetryDelay seeds the exponential backoff (delay * 2^attempt).
	BaseRetryDelay time.Duration
	// MaxRetries bounds retries of a single page on transient errors.
	MaxRetries int
	// MaxPages truncates iteration when > 0, bounding long syncs.
	MaxPages int
}

// DefaultFetcher mirrors the rate-limit settings the sources tolerate:
// one request a second, five retries starting at five seconds.
func DefaultFetcher() Fetcher {
	return Fetcher{
		MinDelay:       time.Second,
		BaseRetryDelay: 5 * time.Second,
		MaxRetries:     5,
	}
}

// FetchAll walks every page of a source until it reports no more pages,
// returns an empty page, or the MaxPages cap is hit. Transient errors are
// retried with exponential backoff; permanent errors and exhausted retry
// budgets surface to the caller with partial results discarded.
func FetchAll[T any](ctx context.Context, f Fetcher, fetch PageFunc[T]) ([]T, error) {
	var all []T
	page := 1
	for {
		if f.MaxPages > 0 && page > f.MaxPages {
			log.Printf("fetch: stopping at page cap %d", f.MaxPages)
			return all, nil
		}
		if err := sleepCtx(ctx, f.MinDelay); err != nil {
			return all, err
		}

		records, totalPages, err := fetchWithRetry(ctx, f, fetch, page)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return all, nil
		}
		all = append(all, records...)

		if totalPages > 0 && page >= totalPages {
			return all, nil
		}
		page++
	}
}

func fetchWithRetry[T any](ctx context.Context, f Fetcher, fetch PageFunc[T], page int) ([]T, int, error) {
	var lastErr error
	for attempt := 0; attempt < f.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := f.BaseRetryDelay * (1 << (attempt - 1))
			log.Printf("fetch: transient error on page %d, retrying in %s (attempt %d/%d): %v",
				page, wait, attempt+1, f.MaxRetries, lastErr)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, 0, err
			}
		}

		records, totalPages, err := fetch(ctx, page)
		if err == nil {
			return records, totalPages, nil
		}
		if !IsTransient(err) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
