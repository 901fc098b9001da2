package market

import (
	"context"
	"log"
	"time"

	"FinAnalyst/internal/model"
)

// RetryProvider retries a SourceUnavailable failure once after a backoff.
// NotFound and RangeUnavailable are returned immediately.
type RetryProvider struct {
	Provider Provider
	Backoff  time.Duration
}

// WithRetry wraps p with a single retry on transient failures.
func WithRetry(p Provider, backoff time.Duration) *RetryProvider {
	return &RetryProvider{Provider: p, Backoff: backoff}
}

func (r *RetryProvider) Name() string { return r.Provider.Name() }

func (r *RetryProvider) Fetch(ctx context.Context, ticker string, window model.Window) ([]model.PricePoint, error) {
	points, err := r.Provider.Fetch(ctx, ticker, window)
	if err == nil || KindOf(err) != SourceUnavailable {
		return points, err
	}
	log.Printf("[WARN] %s fetch %s failed: %v, retrying in %v", r.Provider.Name(), ticker, err, r.Backoff)
	select {
	case <-ctx.Done():
		return nil, newDataError(SourceUnavailable, ticker, ctx.Err())
	case <-time.After(r.Backoff):
	}
	return r.Provider.Fetch(ctx, ticker, window)
}
