// Package enrichment collects firmographic facts about a client company from
// external sources. Fact names are namespaced by the source that produced
// them, as in "website.title" or "directory.employees".
package enrichment

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

// ErrEnrichment wraps every source failure.
var ErrEnrichment = errors.New("enrichment failed")

// Enricher returns facts about the company described by profile. An empty
// result is a valid outcome when a source knows nothing about the company.
type Enricher interface {
	Enrich(ctx context.Context, profile projects.ClientProfile) (map[string]string, error)
}

// Func adapts an ordinary function to the Enricher interface.
type Func func(ctx context.Context, profile projects.ClientProfile) (map[string]string, error)

// Enrich calls f.
func (f Func) Enrich(ctx context.Context, profile projects.ClientProfile) (map[string]string, error) {
	return f(ctx, profile)
}

type none struct{}

// None returns an Enricher that never produces facts.
func None() Enricher {
	return none{}
}

func (none) Enrich(context.Context, projects.ClientProfile) (map[string]string, error) {
	return map[string]string{}, nil
}

// Sources returns the sorted, distinct source names of the facts.
func Sources(facts map[string]string) []string {
	seen := make(map[string]struct{})
	for k := range maps.Keys(facts) {
		name, _, ok := strings.Cut(k, ".")
		if !ok {
			continue
		}
		seen[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func namespaced(source string, facts map[string]string) map[string]string {
	out := make(map[string]string, len(facts))
	for k, v := range facts {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[source+"."+k] = v
	}
	return out
}
