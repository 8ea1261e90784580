// Package workflow is the project state machine. It owns every mutation of
// a project record: each stage checks its preconditions, calls the
// synthesis or enrichment components, and commits the artifact together
// with the stage advance in one atomic store write.
package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/internal/enrichment"
	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/synthesis"
	"github.com/JaimeStill/pitchcraft/pkg/locking"
	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/storage"
)

// System defines the public contract for project workflow operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	CreateProject(ctx context.Context, cmd projects.CreateCommand) (*projects.Project, error)
	SetClientProfile(ctx context.Context, id uuid.UUID, cmd projects.ProfileCommand) (*projects.ClientProfile, error)
	EnrichProfile(ctx context.Context, id uuid.UUID) (*projects.ClientProfile, error)
	GenerateNarrative(ctx context.Context, id uuid.UUID) (*projects.Narrative, error)
	GeneratePresentation(ctx context.Context, id uuid.UUID, title string) (*projects.Presentation, error)
	GenerateObjections(ctx context.Context, id uuid.UUID) (*projects.ObjectionSet, error)
	RunPipeline(ctx context.Context, id uuid.UUID, title string) (*View, error)

	GetProject(ctx context.Context, id uuid.UUID, expand bool) (*View, error)
	ListProjects(
		ctx context.Context,
		page pagination.PageRequest,
		filters projects.Filters,
	) (*pagination.PageResult[projects.Project], error)
	Stats(ctx context.Context) (map[projects.Status]int, error)
	ExportPresentation(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// View is a project as returned to clients. Children are present only when
// the view was expanded.
type View struct {
	projects.Project
	ClientProfile *projects.ClientProfile `json:"client_profile,omitempty"`
	Narrative     *projects.Narrative     `json:"narrative,omitempty"`
	Presentation  *projects.Presentation  `json:"presentation,omitempty"`
	Objections    *projects.ObjectionSet  `json:"objections,omitempty"`
}

// NewView builds a View from a record, including children when expand is set.
func NewView(rec projects.Record, expand bool) *View {
	v := &View{Project: rec.Project}
	if expand {
		v.ClientProfile = rec.Profile
		v.Narrative = rec.Narrative
		v.Presentation = rec.Presentation
		v.Objections = rec.Objections
	}
	return v
}

// Runtime bundles the dependencies the controller requires.
// It is constructed by higher-level composition code from Infrastructure.
type Runtime struct {
	Store     projects.Store
	Locker    locking.Locker
	Enricher  enrichment.Enricher
	Synthesis *synthesis.Runtime
	Archive   storage.System
	Logger    *slog.Logger
}
