package projects

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// SlideType identifies the narrative section a slide was derived from.
type SlideType string

// Slide types in deck order.
const (
	SlideIntro    SlideType = "intro"
	SlideProblem  SlideType = "problem"
	SlideSolution SlideType = "solution"
	SlideBenefits SlideType = "benefits"
	SlideProof    SlideType = "proof"
	SlideCTA      SlideType = "cta"
)

// Slide is a single deck entry. ID is its 1-based position.
type Slide struct {
	ID      int       `json:"id"`
	Type    SlideType `json:"type"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// Presentation is a slide deck derived from a narrative snapshot. The
// snapshot is copied so later narrative regeneration does not alter it.
type Presentation struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slides           []Slide   `json:"slides"`
	TotalSlides      int       `json:"total_slides"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Narrative        Narrative `json:"narrative"`
	ArchiveKey       string    `json:"archive_key,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Clone returns a deep copy of p.
func (p Presentation) Clone() Presentation {
	p.Slides = slices.Clone(p.Slides)
	p.Narrative = p.Narrative.Clone()
	return p
}
