package projects

import (
	"slices"
	"strings"
	"time"
)

// ObjectionCategory classifies the buyer concern behind an objection.
type ObjectionCategory string

// Objection categories.
const (
	CategoryPrice     ObjectionCategory = "price"
	CategoryTiming    ObjectionCategory = "timing"
	CategoryAuthority ObjectionCategory = "authority"
	CategoryNeed      ObjectionCategory = "need"
	CategoryOther     ObjectionCategory = "other"
)

var categories = []ObjectionCategory{
	CategoryPrice,
	CategoryTiming,
	CategoryAuthority,
	CategoryNeed,
	CategoryOther,
}

// ParseCategory returns the category named by s and whether it is known.
func ParseCategory(s string) (ObjectionCategory, bool) {
	v := ObjectionCategory(strings.ToLower(strings.TrimSpace(s)))
	return v, slices.Contains(categories, v)
}

// Objection is an anticipated buyer concern with its rebuttal.
type Objection struct {
	ObjectionText   string            `json:"objection_text"`
	RebuttalText    string            `json:"rebuttal_text"`
	SourcePainPoint *string           `json:"source_pain_point,omitempty"`
	Category        ObjectionCategory `json:"category"`
	Confidence      *float64          `json:"confidence_score,omitempty"`
}

// ObjectionSet is the ordered result of one objection simulation.
type ObjectionSet struct {
	Objections  []Objection `json:"objections"`
	Partial     bool        `json:"partial"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Clone returns a deep copy of s.
func (s ObjectionSet) Clone() ObjectionSet {
	s.Objections = slices.Clone(s.Objections)
	for i, o := range s.Objections {
		if o.SourcePainPoint != nil {
			src := *o.SourcePainPoint
			s.Objections[i].SourcePainPoint = &src
		}
		if o.Confidence != nil {
			c := *o.Confidence
			s.Objections[i].Confidence = &c
		}
	}
	return s
}
