package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

type chain struct {
	sources []Enricher
	logger  *slog.Logger
}

// Chain queries every source in order and merges their facts. When two
// sources report the same fact, the earlier source wins. A failing source is
// logged and skipped; the chain fails only when every source fails.
func Chain(logger *slog.Logger, sources ...Enricher) Enricher {
	if len(sources) == 0 {
		return None()
	}
	if len(sources) == 1 {
		return sources[0]
	}
	return &chain{sources: sources, logger: logger}
}

func (c *chain) Enrich(ctx context.Context, profile projects.ClientProfile) (map[string]string, error) {
	facts := make(map[string]string)
	var errs []error

	for i, src := range c.sources {
		got, err := src.Enrich(ctx, profile)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrEnrichment, ctx.Err())
			}
			c.logger.WarnContext(ctx, "enrichment source failed", "source", i, "error", err)
			errs = append(errs, err)
			continue
		}
		for k, v := range got {
			if _, ok := facts[k]; !ok {
				facts[k] = v
			}
		}
	}

	if len(errs) == len(c.sources) {
		return nil, errors.Join(errs...)
	}
	return facts, nil
}
