package projects

import (
	"slices"
	"strings"
	"time"
)

// Section names one of the six narrative parts.
type Section string

// Narrative sections in presentation order.
const (
	SectionIntroduction     Section = "introduction"
	SectionProblemStatement Section = "problem_statement"
	SectionSolutionOverview Section = "solution_overview"
	SectionBenefits         Section = "benefits"
	SectionSocialProof      Section = "social_proof"
	SectionCallToAction     Section = "call_to_action"
)

var sections = []Section{
	SectionIntroduction,
	SectionProblemStatement,
	SectionSolutionOverview,
	SectionBenefits,
	SectionSocialProof,
	SectionCallToAction,
}

// Sections returns the narrative sections in presentation order.
func Sections() []Section {
	return sections
}

// Narrative is the six-part commercial story. A nil section is absent;
// empty strings are never stored.
type Narrative struct {
	Introduction     *string   `json:"introduction"`
	ProblemStatement *string   `json:"problem_statement"`
	SolutionOverview *string   `json:"solution_overview"`
	Benefits         *string   `json:"benefits"`
	SocialProof      *string   `json:"social_proof"`
	CallToAction     *string   `json:"call_to_action"`
	GeneratedAt      time.Time `json:"generated_at"`
	Partial          bool      `json:"partial"`
	FailedSections   []Section `json:"failed_sections,omitempty"`
}

func (n *Narrative) field(s Section) **string {
	switch s {
	case SectionIntroduction:
		return &n.Introduction
	case SectionProblemStatement:
		return &n.ProblemStatement
	case SectionSolutionOverview:
		return &n.SolutionOverview
	case SectionBenefits:
		return &n.Benefits
	case SectionSocialProof:
		return &n.SocialProof
	case SectionCallToAction:
		return &n.CallToAction
	}
	return nil
}

// Get returns the text of section s, or nil when absent.
func (n *Narrative) Get(s Section) *string {
	if f := n.field(s); f != nil {
		return *f
	}
	return nil
}

// Set stores text for section s. Blank text marks the section absent.
func (n *Narrative) Set(s Section, text string) {
	f := n.field(s)
	if f == nil {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*f = nil
		return
	}
	*f = &text
}

// Present reports how many sections have content.
func (n *Narrative) Present() int {
	count := 0
	for _, s := range sections {
		if n.Get(s) != nil {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of n.
func (n Narrative) Clone() Narrative {
	for _, s := range sections {
		if v := n.Get(s); v != nil {
			text := *v
			*n.field(s) = &text
		}
	}
	n.FailedSections = slices.Clone(n.FailedSections)
	return n
}
