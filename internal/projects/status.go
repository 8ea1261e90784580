package projects

import (
	"fmt"
	"slices"
)

// Status is the workflow stage a project has reached.
type Status string

// Workflow stages in rank order.
const (
	StatusCreated           Status = "created"
	StatusProfileSet        Status = "profile_set"
	StatusEnriched          Status = "enriched"
	StatusNarrativeReady    Status = "narrative_ready"
	StatusPresentationReady Status = "presentation_ready"
	StatusObjectionsReady   Status = "objections_ready"
)

var statuses = []Status{
	StatusCreated,
	StatusProfileSet,
	StatusEnriched,
	StatusNarrativeReady,
	StatusPresentationReady,
	StatusObjectionsReady,
}

// Statuses returns all stages in rank order.
func Statuses() []Status {
	return statuses
}

// ParseStatus validates s as a known stage.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return v, nil
}

// Rank returns the position of s in the stage order, or -1 if unknown.
func (s Status) Rank() int {
	return slices.Index(statuses, s)
}

// Advance returns the higher-ranked of s and target. Stages never regress.
func (s Status) Advance(target Status) Status {
	if target.Rank() > s.Rank() {
		return target
	}
	return s
}
