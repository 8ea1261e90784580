package synthesis

import (
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

// MinutesPerSlide is the speaking time budgeted for each slide.
const MinutesPerSlide = 2

type slideLayout struct {
	section projects.Section
	kind    projects.SlideType
	title   string
}

var layout = []slideLayout{
	{projects.SectionIntroduction, projects.SlideIntro, "Proposta Comercial Personalizada"},
	{projects.SectionProblemStatement, projects.SlideProblem, "Desafios Identificados"},
	{projects.SectionSolutionOverview, projects.SlideSolution, "Nossa Proposta de Solução"},
	{projects.SectionBenefits, projects.SlideBenefits, "Benefícios e Resultados Esperados"},
	{projects.SectionSocialProof, projects.SlideProof, "Casos de Sucesso e Referências"},
	{projects.SectionCallToAction, projects.SlideCTA, "Próximos Passos"},
}

// Compose derives a slide deck from a narrative snapshot. There is one slide
// per present section, in narrative order, and the deck carries its own copy
// of the narrative. Compose makes no generative calls and returns the same
// deck for the same inputs. ID and CreatedAt are left for the caller.
func Compose(n projects.Narrative, title string, excerptLength int) projects.Presentation {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}

	slides := make([]projects.Slide, 0, len(layout))
	for _, l := range layout {
		text := n.Get(l.section)
		if text == nil {
			continue
		}
		content := Excerpt(*text, excerptLength)
		if content == "" {
			continue
		}
		slides = append(slides, projects.Slide{
			ID:      len(slides) + 1,
			Type:    l.kind,
			Title:   l.title,
			Content: content,
		})
	}

	return projects.Presentation{
		Title:            title,
		Slides:           slides,
		TotalSlides:      len(slides),
		EstimatedMinutes: len(slides) * MinutesPerSlide,
		Narrative:        n.Clone(),
	}
}

// Excerpt collapses whitespace in text and, when the result exceeds limit
// runes, cuts it at the last word boundary within the limit and appends an
// ellipsis.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if runes[limit] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}
