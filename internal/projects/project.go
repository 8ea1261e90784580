// Package projects defines the PitchCraft project aggregate and the record
// stores that persist it. A project owns at most one client profile, one
// narrative, one presentation, and one objection set; each child is replaced
// wholesale when regenerated.
package projects

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectType is the kind of commercial material a project produces.
type ProjectType string

// Valid project types.
const (
	TypeSalesPitch         ProjectType = "pitch_vendas"
	TypeCommercialProposal ProjectType = "proposta_comercial"
	TypeInstitutional      ProjectType = "apresentacao_institucional"
	TypeElevatorPitch      ProjectType = "elevator_pitch"
)

var projectTypes = []ProjectType{
	TypeSalesPitch,
	TypeCommercialProposal,
	TypeInstitutional,
	TypeElevatorPitch,
}

// ProjectTypes returns the list of valid project types.
func ProjectTypes() []ProjectType {
	return projectTypes
}

// ParseProjectType validates s as a known project type.
func ParseProjectType(s string) (ProjectType, error) {
	v := ProjectType(strings.TrimSpace(s))
	if !slices.Contains(projectTypes, v) {
		return "", fmt.Errorf("%w: unknown project_type %q", ErrValidation, s)
	}
	return v, nil
}

// UnmarshalJSON rejects unknown project types.
func (t *ProjectType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseProjectType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Project is the aggregate root of the workflow.
type Project struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	ProjectType    ProjectType `json:"project_type"`
	TargetAudience string      `json:"target_audience"`
	Status         Status      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateCommand carries the client-supplied fields of a new project.
type CreateCommand struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ProjectType    string `json:"project_type"`
	TargetAudience string `json:"target_audience"`
}

// NewProject validates cmd and builds a project in the created stage.
// An empty project type defaults to pitch_vendas.
func NewProject(cmd CreateCommand, now time.Time) (Project, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return Project{}, fmt.Errorf("%w: title required", ErrValidation)
	}

	pt := TypeSalesPitch
	if strings.TrimSpace(cmd.ProjectType) != "" {
		parsed, err := ParseProjectType(cmd.ProjectType)
		if err != nil {
			return Project{}, err
		}
		pt = parsed
	}

	return Project{
		ID:             uuid.New(),
		Title:          title,
		Description:    strings.TrimSpace(cmd.Description),
		ProjectType:    pt,
		TargetAudience: strings.TrimSpace(cmd.TargetAudience),
		Status:         StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
