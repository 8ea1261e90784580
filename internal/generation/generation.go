// Package generation adapts text-generation backends behind a single
// Generator capability and layers per-call timeouts, bounded retries, and
// rate limiting on top of any backend.
package generation

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
)

// ErrGeneration wraps every backend failure.
var ErrGeneration = errors.New("generation failed")

// Context keys shared by the stages and the backends that read them.
// Stage is always present; the rest are set only by the stages that use
// them. Enrichment facts use FactPrefix followed by the fact name.
const (
	KeyStage               = "stage"
	KeyTitle               = "title"
	KeyDescription         = "description"
	KeyProjectType         = "project_type"
	KeyTargetAudience      = "target_audience"
	KeyCompanyName         = "company_name"
	KeyIndustry            = "industry"
	KeySize                = "size"
	KeyPainPoints          = "pain_points"
	KeyGoals               = "goals"
	KeyDISCProfile         = "disc_profile"
	KeyDecisionMakers      = "decision_makers"
	KeyComparableCompanies = "comparable_companies"
	KeyPainPoint           = "pain_point"
	KeyBenefits            = "benefits"
	KeySolutionOverview    = "solution_overview"

	FactPrefix = "fact."
)

// Generator produces text for a composed prompt and its context fields.
type Generator interface {
	Generate(ctx context.Context, prompt string, data map[string]string) (string, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, prompt string, data map[string]string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string, data map[string]string) (string, error) {
	return f(ctx, prompt, data)
}

// Render appends the non-empty context fields to prompt as a sorted
// "key: value" block. The stage key is omitted.
func Render(prompt string, data map[string]string) string {
	keys := slices.Sorted(maps.Keys(data))

	var sb strings.Builder
	sb.WriteString(prompt)

	wrote := false
	for _, k := range keys {
		v := strings.TrimSpace(data[k])
		if k == KeyStage || v == "" {
			continue
		}
		if !wrote {
			sb.WriteString("\n\nContexto:\n")
			wrote = true
		}
		sb.WriteString("- ")
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
