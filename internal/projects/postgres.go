package projects

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/query"
	"github.com/JaimeStill/pitchcraft/pkg/repository"
)

const recordColumns = `id, title, description, project_type, target_audience, status, created_at, updated_at,
	client_profile, narrative, presentation, objections`

var storeErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrValidation,
}

type postgresStore struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewPostgresStore creates a Store backed by the projects table. Children
// are stored as JSONB columns on the project row so a commit is one UPDATE.
func NewPostgresStore(db *sql.DB, logger *slog.Logger, cfg pagination.Config) Store {
	return &postgresStore{
		db:         db,
		logger:     logger.With("system", "projects", "store", "postgres"),
		pagination: cfg,
	}
}

func (s *postgresStore) Create(ctx context.Context, p Project) error {
	q := `
		INSERT INTO projects(id, title, description, project_type, target_audience, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	err := repository.InTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx, q,
			p.ID, p.Title, p.Description, string(p.ProjectType),
			p.TargetAudience, string(p.Status), p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	return storeErrors.Map(err)
}

func (s *postgresStore) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q := fmt.Sprintf("SELECT %s FROM projects WHERE id = $1", recordColumns)

	r, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanRecord)
	if err != nil {
		return nil, storeErrors.Map(err)
	}
	return &r, nil
}

func (s *postgresStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Project], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "title", "description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, s.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanProject)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *postgresStore) Commit(ctx context.Context, c Commit) error {
	sets := []string{"status = $2", "updated_at = $3"}
	args := []any{c.Project.ID, string(c.Project.Status), c.Project.UpdatedAt}

	children := []struct {
		column string
		value  any
		set    bool
	}{
		{"client_profile", c.Profile, c.Profile != nil},
		{"narrative", c.Narrative, c.Narrative != nil},
		{"presentation", c.Presentation, c.Presentation != nil},
		{"objections", c.Objections, c.Objections != nil},
	}

	for _, child := range children {
		if !child.set {
			continue
		}
		data, err := repository.JSONB(child.value)
		if err != nil {
			return fmt.Errorf("%s: %w", child.column, err)
		}
		args = append(args, data)
		sets = append(sets, fmt.Sprintf("%s = $%d", child.column, len(args)))
	}

	q := fmt.Sprintf("UPDATE projects SET %s WHERE id = $1", strings.Join(sets, ", "))

	err := repository.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, q, args...)
	})
	return storeErrors.Map(err)
}

func (s *postgresStore) Stats(ctx context.Context) (map[Status]int, error) {
	q, args := query.NewBuilder(projection).BuildGroupCount("status")

	grouped, err := repository.CountBy(ctx, s.db, q, args...)
	if err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}

	counts := make(map[Status]int, len(grouped))
	for status, n := range grouped {
		counts[Status(status)] = n
	}
	return counts, nil
}

func scanProject(s repository.Scanner) (Project, error) {
	var p Project
	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ProjectType,
		&p.TargetAudience,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r                                           Record
		profile, narrative, presentation, objection []byte
	)

	err := s.Scan(
		&r.Project.ID,
		&r.Project.Title,
		&r.Project.Description,
		&r.Project.ProjectType,
		&r.Project.TargetAudience,
		&r.Project.Status,
		&r.Project.CreatedAt,
		&r.Project.UpdatedAt,
		&profile,
		&narrative,
		&presentation,
		&objection,
	)
	if err != nil {
		return r, err
	}

	if r.Profile, err = repository.DecodeJSONB[ClientProfile](profile); err != nil {
		return r, fmt.Errorf("decode client_profile: %w", err)
	}
	if r.Narrative, err = repository.DecodeJSONB[Narrative](narrative); err != nil {
		return r, fmt.Errorf("decode narrative: %w", err)
	}
	if r.Presentation, err = repository.DecodeJSONB[Presentation](presentation); err != nil {
		return r, fmt.Errorf("decode presentation: %w", err)
	}
	if r.Objections, err = repository.DecodeJSONB[ObjectionSet](objection); err != nil {
		return r, fmt.Errorf("decode objections: %w", err)
	}
	return r, nil
}
