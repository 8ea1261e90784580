package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

// WithTimeout bounds every call to next by d. A non-positive d disables the bound.
func WithTimeout(next Enricher, d time.Duration) Enricher {
	if d <= 0 {
		return next
	}
	return Func(func(ctx context.Context, p projects.ClientProfile) (map[string]string, error) {
		callCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Enrich(callCtx, p)
	})
}

// WithRateLimit makes every call to next wait for a token from limiter.
func WithRateLimit(next Enricher, limiter *rate.Limiter) Enricher {
	if limiter == nil {
		return next
	}
	return Func(func(ctx context.Context, p projects.ClientProfile) (map[string]string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit: %w", ErrEnrichment, err)
		}
		return next.Enrich(ctx, p)
	})
}

// WithRetry retries failed calls up to maxRetries times with exponential backoff
// starting at backoff. Calls are never retried once ctx is done.
func WithRetry(next Enricher, maxRetries int, backoff time.Duration, logger *slog.Logger) Enricher {
	if maxRetries <= 0 {
		return next
	}
	return Func(func(ctx context.Context, p projects.ClientProfile) (map[string]string, error) {
		for attempt := 0; ; attempt++ {
			facts, err := next.Enrich(ctx, p)
			if err == nil {
				return facts, nil
			}
			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, err
			}

			wait := backoff << attempt
			logger.WarnContext(ctx, "enrichment retry", "attempt", attempt+1, "wait", wait, "error", err)

			select {
			case <-ctx.Done():
				return nil, err
			case <-time.After(wait):
			}
		}
	})
}
