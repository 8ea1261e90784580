package synthesis

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/prompts"
)

var comparableBySize = map[projects.ClientSize]string{
	projects.SizeStartup:    "startups em fase de crescimento acelerado",
	projects.SizeSmall:      "pequenas empresas com equipes enxutas",
	projects.SizeMedium:     "empresas de médio porte em expansão",
	projects.SizeLarge:      "grandes empresas com operações em várias regiões",
	projects.SizeEnterprise: "corporações com estruturas complexas de decisão",
}

const comparableDefault = "empresas do mesmo setor"

// Narrative generates all six sections concurrently. A section whose call
// fails or returns blank text is left absent and listed in FailedSections.
// The stage fails with projects.ErrAdapter only when every section fails.
func Narrative(ctx context.Context, rt *Runtime, project projects.Project, profile projects.ClientProfile) (projects.Narrative, error) {
	sections := projects.Sections()
	results := make([]string, len(sections))
	errs := make([]error, len(sections))

	var g errgroup.Group
	g.SetLimit(rt.workers(len(sections)))

	for i, section := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = generateSection(ctx, rt, section, project, profile)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return projects.Narrative{}, fmt.Errorf("narrative: %w", err)
	}

	n := projects.Narrative{GeneratedAt: time.Now().UTC()}
	var failures []error

	for i, section := range sections {
		if errs[i] == nil {
			n.Set(section, results[i])
		}
		if n.Get(section) != nil {
			continue
		}

		if errs[i] == nil {
			errs[i] = fmt.Errorf("%w: blank output", generation.ErrGeneration)
		}
		n.FailedSections = append(n.FailedSections, section)
		failures = append(failures, fmt.Errorf("%s: %w", section, errs[i]))

		rt.Logger.WarnContext(
			ctx, "narrative section failed",
			"project_id", project.ID,
			"section", section,
			"error", errs[i],
		)
	}

	if len(failures) == len(sections) {
		return projects.Narrative{}, fmt.Errorf("%w: narrative: %w", projects.ErrAdapter, errors.Join(failures...))
	}

	n.Partial = len(n.FailedSections) > 0
	return n, nil
}

func generateSection(ctx context.Context, rt *Runtime, section projects.Section, project projects.Project, profile projects.ClientProfile) (string, error) {
	stage := prompts.Stage(section)

	variant := ""
	if section == projects.SectionCallToAction {
		variant = string(project.ProjectType)
	}

	prompt, err := rt.library().Compose(stage, variant)
	if err != nil {
		return "", err
	}

	return rt.Generator.Generate(ctx, prompt, SectionContext(section, project, profile))
}

// SectionContext returns the context fields injected for section. Each
// section sees only the project and profile fields it needs.
func SectionContext(section projects.Section, project projects.Project, profile projects.ClientProfile) map[string]string {
	data := map[string]string{
		generation.KeyStage: string(section),
	}

	switch section {
	case projects.SectionIntroduction:
		data[generation.KeyCompanyName] = profile.CompanyName
		data[generation.KeyIndustry] = profile.Industry
		data[generation.KeyTitle] = project.Title
		data[generation.KeyTargetAudience] = project.TargetAudience
		data[generation.KeyDISCProfile] = string(profile.DISCProfile)
	case projects.SectionProblemStatement:
		data[generation.KeyCompanyName] = profile.CompanyName
		data[generation.KeyPainPoints] = profile.PainPoints
		for k, v := range profile.Enrichment.Facts {
			data[generation.FactPrefix+k] = v
		}
	case projects.SectionSolutionOverview:
		data[generation.KeyDescription] = project.Description
		data[generation.KeyTargetAudience] = project.TargetAudience
		data[generation.KeyCompanyName] = profile.CompanyName
	case projects.SectionBenefits:
		data[generation.KeyGoals] = profile.Goals
		data[generation.KeyDescription] = project.Description
		data[generation.KeyCompanyName] = profile.CompanyName
	case projects.SectionSocialProof:
		data[generation.KeyIndustry] = profile.Industry
		data[generation.KeySize] = string(profile.Size)
		data[generation.KeyComparableCompanies] = comparableFraming(profile.Size)
	case projects.SectionCallToAction:
		data[generation.KeyProjectType] = string(project.ProjectType)
		data[generation.KeyCompanyName] = profile.CompanyName
		data[generation.KeyDecisionMakers] = strings.Join(profile.DecisionMakers, ", ")
	}

	maps.DeleteFunc(data, func(_, v string) bool {
		return strings.TrimSpace(v) == ""
	})
	return data
}

func comparableFraming(size projects.ClientSize) string {
	if v, ok := comparableBySize[size]; ok {
		return v
	}
	return comparableDefault
}
