package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

type timeout struct {
	next Generator
	d    time.Duration
}

// WithTimeout bounds every call to next by d. A non-positive d disables the bound.
func WithTimeout(next Generator, d time.Duration) Generator {
	if d <= 0 {
		return next
	}
	return &timeout{next: next, d: d}
}

func (t *timeout) Generate(ctx context.Context, prompt string, data map[string]string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(callCtx, prompt, data)
}

type limited struct {
	next    Generator
	limiter *rate.Limiter
}

// WithRateLimit makes every call to next wait for a token from limiter.
func WithRateLimit(next Generator, limiter *rate.Limiter) Generator {
	if limiter == nil {
		return next
	}
	return &limited{next: next, limiter: limiter}
}

func (l *limited) Generate(ctx context.Context, prompt string, data map[string]string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit: %w", ErrGeneration, err)
	}
	return l.next.Generate(ctx, prompt, data)
}

type retry struct {
	next    Generator
	max     int
	backoff time.Duration
	logger  *slog.Logger
}

// WithRetry retries failed calls up to maxRetries times with exponential
// backoff starting at backoff. Calls are never retried once ctx is done.
func WithRetry(next Generator, maxRetries int, backoff time.Duration, logger *slog.Logger) Generator {
	if maxRetries <= 0 {
		return next
	}
	return &retry{
		next:    next,
		max:     maxRetries,
		backoff: backoff,
		logger:  logger,
	}
}

func (r *retry) Generate(ctx context.Context, prompt string, data map[string]string) (string, error) {
	for attempt := 0; ; attempt++ {
		out, err := r.next.Generate(ctx, prompt, data)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil || attempt >= r.max {
			return "", err
		}

		wait := r.backoff << attempt
		r.logger.WarnContext(
			ctx, "generation retry",
			"stage", data[KeyStage],
			"attempt", attempt+1,
			"wait", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", err
		case <-time.After(wait):
		}
	}
}
