package projects

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/pkg/pagination"
)

// Record is a project with all of its owned children.
type Record struct {
	Project      Project        `json:"project"`
	Profile      *ClientProfile `json:"client_profile"`
	Narrative    *Narrative     `json:"narrative"`
	Presentation *Presentation  `json:"presentation"`
	Objections   *ObjectionSet  `json:"objections"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r.Profile != nil {
		p := r.Profile.clone()
		r.Profile = &p
	}
	if r.Narrative != nil {
		n := r.Narrative.Clone()
		r.Narrative = &n
	}
	if r.Presentation != nil {
		p := r.Presentation.Clone()
		r.Presentation = &p
	}
	if r.Objections != nil {
		o := r.Objections.Clone()
		r.Objections = &o
	}
	return r
}

// Commit is one atomic write of a project and any replaced children.
// Nil children are left as stored.
type Commit struct {
	Project      Project
	Profile      *ClientProfile
	Narrative    *Narrative
	Presentation *Presentation
	Objections   *ObjectionSet
}

// Apply writes c onto r.
func (c Commit) Apply(r *Record) {
	r.Project = c.Project
	if c.Profile != nil {
		p := c.Profile.clone()
		r.Profile = &p
	}
	if c.Narrative != nil {
		n := c.Narrative.Clone()
		r.Narrative = &n
	}
	if c.Presentation != nil {
		p := c.Presentation.Clone()
		r.Presentation = &p
	}
	if c.Objections != nil {
		o := c.Objections.Clone()
		r.Objections = &o
	}
}

// Store persists project records. Every Commit replaces the record
// atomically; readers never observe a partially written commit.
type Store interface {
	Create(ctx context.Context, p Project) error
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Project], error)
	Commit(ctx context.Context, c Commit) error
	Stats(ctx context.Context) (map[Status]int, error)
}
