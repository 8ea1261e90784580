package synthesis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/prompts"
	"github.com/JaimeStill/pitchcraft/pkg/formatting"
)

type rebuttalResponse struct {
	Objection string `json:"objection"`
	Rebuttal  string `json:"rebuttal"`
	Category  string `json:"category"`

	Confidence *float64 `json:"confidence_score"`
}

// sentenceBreak matches a terminator run followed by whitespace or the end
// of input, or a line break. Dots inside amounts and host names do not match.
var sentenceBreak = regexp.MustCompile(`[.!?;]+(?:\s+|$)|[\r\n]+`)

var categoryKeywords = []struct {
	category projects.ObjectionCategory
	keywords []string
}{
	{projects.CategoryPrice, []string{"preço", "preco", "custo", "orçamento", "orcamento", "caro"}},
	{projects.CategoryTiming, []string{"tempo", "prazo", "momento", "lento", "demora"}},
	{projects.CategoryAuthority, []string{"aprovação", "aprovacao", "decisão", "decisao", "diretoria"}},
	{projects.CategoryNeed, []string{"necessidade", "já temos", "ja temos"}},
}

// Seeds splits pain points into sentences. A sentence ends at . ! ? or ;
// followed by whitespace or the end of input, or at a line break. Blank
// pieces and case-insensitive duplicates are dropped, and at most limit seeds
// are returned in their original order.
func Seeds(painPoints string, limit int) []string {
	pieces := sentenceBreak.Split(painPoints, -1)

	seen := make(map[string]struct{})
	var seeds []string
	for _, p := range pieces {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		seeds = append(seeds, p)
		if len(seeds) == limit {
			break
		}
	}
	return seeds
}

// Categorize classifies text by keyword, falling back to CategoryOther.
func Categorize(text string) projects.ObjectionCategory {
	lower := strings.ToLower(text)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.category
			}
		}
	}
	return projects.CategoryOther
}

// Objections simulates one objection and rebuttal per pain point seed. A
// nil narrative is allowed. Failed seeds are dropped and mark the set
// partial. No seeds yields an empty set; the stage fails with
// projects.ErrAdapter only when there were seeds and every one failed.
func Objections(ctx context.Context, rt *Runtime, profile projects.ClientProfile, narrative *projects.Narrative) (projects.ObjectionSet, error) {
	seeds := Seeds(profile.PainPoints, rt.objectionCap())
	set := projects.ObjectionSet{
		Objections: []projects.Objection{},
	}

	if len(seeds) == 0 {
		set.GeneratedAt = time.Now().UTC()
		return set, nil
	}

	prompt, err := rt.library().Compose(prompts.StageRebuttal, "")
	if err != nil {
		return projects.ObjectionSet{}, err
	}

	results := make([]*projects.Objection, len(seeds))
	errs := make([]error, len(seeds))

	var g errgroup.Group
	g.SetLimit(rt.workers(len(seeds)))

	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			raw, err := rt.Generator.Generate(ctx, prompt, rebuttalContext(seed, profile, narrative))
			if err != nil {
				errs[i] = err
				return nil
			}

			if o, ok := buildObjection(seed, raw); ok {
				results[i] = &o
			} else {
				errs[i] = fmt.Errorf("%w: blank output", generation.ErrGeneration)
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return projects.ObjectionSet{}, fmt.Errorf("objections: %w", err)
	}

	var failures []error
	for i, o := range results {
		if o != nil {
			set.Objections = append(set.Objections, *o)
			continue
		}
		failures = append(failures, fmt.Errorf("seed %d: %w", i+1, errs[i]))
		rt.Logger.WarnContext(ctx, "objection seed failed", "seed", seeds[i], "error", errs[i])
	}

	if len(failures) == len(seeds) {
		return projects.ObjectionSet{}, fmt.Errorf("%w: objections: %w", projects.ErrAdapter, errors.Join(failures...))
	}

	set.Partial = len(failures) > 0
	set.GeneratedAt = time.Now().UTC()
	return set, nil
}

func rebuttalContext(seed string, profile projects.ClientProfile, narrative *projects.Narrative) map[string]string {
	data := map[string]string{
		generation.KeyStage:       string(prompts.StageRebuttal),
		generation.KeyPainPoint:   seed,
		generation.KeyCompanyName: profile.CompanyName,
	}
	if profile.Industry != "" {
		data[generation.KeyIndustry] = profile.Industry
	}
	if narrative != nil {
		if v := narrative.Get(projects.SectionBenefits); v != nil {
			data[generation.KeyBenefits] = *v
		}
		if v := narrative.Get(projects.SectionSolutionOverview); v != nil {
			data[generation.KeySolutionOverview] = *v
		}
	}
	return data
}

func buildObjection(seed, raw string) (projects.Objection, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return projects.Objection{}, false
	}

	resp, err := formatting.Parse[rebuttalResponse](raw)
	if err != nil {
		resp = rebuttalResponse{Rebuttal: raw}
	}

	rebuttal := strings.TrimSpace(resp.Rebuttal)
	if rebuttal == "" {
		return projects.Objection{}, false
	}

	objection := strings.TrimSpace(resp.Objection)
	if objection == "" {
		objection = seed
	}

	category, ok := projects.ParseCategory(resp.Category)
	if !ok {
		category = Categorize(seed)
	}

	src := seed
	return projects.Objection{
		ObjectionText:   objection,
		RebuttalText:    rebuttal,
		SourcePainPoint: &src,
		Category:        category,
		Confidence:      confidence(resp.Confidence),
	}, true
}

// confidence keeps a model score only when it lies in [0, 1].
func confidence(v *float64) *float64 {
	if v == nil || *v < 0 || *v > 1 {
		return nil
	}
	c := *v
	return &c
}
