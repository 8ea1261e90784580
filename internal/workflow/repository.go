package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/internal/enrichment"
	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/synthesis"
	"github.com/JaimeStill/pitchcraft/pkg/locking"
	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/storage"
)

const defaultTitlePrefix = "Apresentação - "

type repo struct {
	store      projects.Store
	locker     locking.Locker
	enricher   enrichment.Enricher
	synth      *synthesis.Runtime
	archive    storage.System
	prefix     string
	autoEnrich bool
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the workflow controller implementing the System interface.
// A nil locker, enricher, or archive falls back to the in-process lock, no
// enrichment, and no archiving respectively.
func New(rt *Runtime, cfg *Config, archivePrefix string, pagination pagination.Config) System {
	locker := rt.Locker
	if locker == nil {
		locker = locking.NewMemory()
	}
	enricher := rt.Enricher
	if enricher == nil {
		enricher = enrichment.None()
	}

	return &repo{
		store:      rt.Store,
		locker:     locker,
		enricher:   enricher,
		synth:      rt.Synthesis,
		archive:    rt.Archive,
		prefix:     archivePrefix,
		autoEnrich: cfg.AutoEnrichEnabled(),
		logger:     rt.Logger.With("system", "workflow"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodySize)
}

func (r *repo) CreateProject(ctx context.Context, cmd projects.CreateCommand) (*projects.Project, error) {
	p, err := projects.NewProject(cmd, now())
	if err != nil {
		return nil, err
	}

	if err := r.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	r.logger.InfoContext(ctx, "project created", "project_id", p.ID, "project_type", p.ProjectType)
	return &p, nil
}

func (r *repo) SetClientProfile(ctx context.Context, id uuid.UUID, cmd projects.ProfileCommand) (*projects.ClientProfile, error) {
	var saved projects.ClientProfile

	err := r.mutate(ctx, id, projects.StatusProfileSet, func(ctx context.Context, rec *projects.Record, c *projects.Commit) error {
		profile, err := projects.NewClientProfile(cmd, now())
		if err != nil {
			return err
		}
		c.Profile = &profile
		saved = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !r.autoEnrich {
		return &saved, nil
	}

	enriched, err := r.EnrichProfile(ctx, id)
	if err != nil {
		r.logger.WarnContext(ctx, "automatic enrichment failed", "project_id", id, "error", err)
		return &saved, nil
	}
	return enriched, nil
}

func (r *repo) EnrichProfile(ctx context.Context, id uuid.UUID) (*projects.ClientProfile, error) {
	var enriched projects.ClientProfile

	err := r.mutate(ctx, id, projects.StatusEnriched, func(ctx context.Context, rec *projects.Record, c *projects.Commit) error {
		if rec.Profile == nil {
			return fmt.Errorf("%w: enrichment requires a client profile", projects.ErrPrecondition)
		}

		facts, err := r.enricher.Enrich(ctx, *rec.Profile)
		if err != nil {
			return fmt.Errorf("%w: enrich: %w", projects.ErrAdapter, err)
		}

		at := now()
		profile := *rec.Profile
		profile.Enrichment = projects.Enrichment{
			Facts:      facts,
			Sources:    enrichment.Sources(facts),
			EnrichedAt: &at,
		}
		if profile.Enrichment.Facts == nil {
			profile.Enrichment.Facts = map[string]string{}
		}

		if len(facts) == 0 {
			r.logger.InfoContext(ctx, "enrichment found no facts", "project_id", id)
		}

		c.Profile = &profile
		enriched = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enriched, nil
}

func (r *repo) GenerateNarrative(ctx context.Context, id uuid.UUID) (*projects.Narrative, error) {
	var result projects.Narrative

	err := r.mutate(ctx, id, projects.StatusNarrativeReady, func(ctx context.Context, rec *projects.Record, c *projects.Commit) error {
		if rec.Profile == nil {
			return fmt.Errorf("%w: narrative requires a client profile", projects.ErrPrecondition)
		}
		if rec.Profile.Enrichment.Empty() {
			r.logger.WarnContext(ctx, "generating narrative without enrichment", "project_id", id)
		}

		n, err := synthesis.Narrative(ctx, r.synth, rec.Project, *rec.Profile)
		if err != nil {
			return err
		}
		if n.Partial {
			r.logger.WarnContext(ctx, "narrative is partial", "project_id", id, "failed_sections", n.FailedSections)
		}

		c.Narrative = &n
		result = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repo) GeneratePresentation(ctx context.Context, id uuid.UUID, title string) (*projects.Presentation, error) {
	var result projects.Presentation
	var archived string

	err := r.mutate(ctx, id, projects.StatusPresentationReady, func(ctx context.Context, rec *projects.Record, c *projects.Commit) error {
		if rec.Narrative == nil {
			return fmt.Errorf("%w: presentation requires a narrative", projects.ErrPrecondition)
		}

		if title == "" {
			title = defaultTitlePrefix + rec.Project.Title
		}

		p := synthesis.Compose(*rec.Narrative, title, r.synth.ExcerptLength)
		p.ID = uuid.New()
		p.CreatedAt = now()

		if key, ok := r.archiveSnapshot(ctx, rec.Project.ID, p); ok {
			p.ArchiveKey = key
			archived = key
		}

		c.Presentation = &p
		result = p
		return nil
	})
	if err != nil {
		if archived != "" {
			r.discardSnapshot(archived)
		}
		return nil, err
	}
	return &result, nil
}

func (r *repo) GenerateObjections(ctx context.Context, id uuid.UUID) (*projects.ObjectionSet, error) {
	var result projects.ObjectionSet

	err := r.mutate(ctx, id, projects.StatusObjectionsReady, func(ctx context.Context, rec *projects.Record, c *projects.Commit) error {
		if rec.Profile == nil {
			return fmt.Errorf("%w: objections require a client profile", projects.ErrPrecondition)
		}

		set, err := synthesis.Objections(ctx, r.synth, *rec.Profile, rec.Narrative)
		if err != nil {
			return err
		}
		if set.Partial {
			r.logger.WarnContext(ctx, "objection set is partial", "project_id", id)
		}

		c.Objections = &set
		result = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repo) GetProject(ctx context.Context, id uuid.UUID, expand bool) (*View, error) {
	rec, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewView(*rec, expand), nil
}

func (r *repo) ListProjects(
	ctx context.Context,
	page pagination.PageRequest,
	filters projects.Filters,
) (*pagination.PageResult[projects.Project], error) {
	page.Normalize(r.pagination)
	return r.store.List(ctx, page, filters)
}

func (r *repo) Stats(ctx context.Context) (map[projects.Status]int, error) {
	counts, err := r.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[projects.Status]int, len(projects.Statuses()))
	for _, s := range projects.Statuses() {
		out[s] = counts[s]
	}
	return out, nil
}

func (r *repo) ExportPresentation(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rec, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Presentation == nil {
		return nil, fmt.Errorf("%w: project %s has no presentation", projects.ErrNotFound, id)
	}

	if key := rec.Presentation.ArchiveKey; key != "" && r.archive != nil {
		data, err := storage.GetBytes(ctx, r.archive, key)
		if err == nil {
			return data, nil
		}
		r.logger.WarnContext(ctx, "archived snapshot unavailable", "project_id", id, "key", key, "error", err)
	}

	data, err := json.Marshal(rec.Presentation)
	if err != nil {
		return nil, fmt.Errorf("encode presentation: %w", err)
	}
	return data, nil
}

type stageFunc func(ctx context.Context, rec *projects.Record, c *projects.Commit) error

// mutate runs one stage under the project lock: load, run fn, and commit
// the resulting children with the stage advanced to target. Nothing is
// written when fn fails or ctx is done before the commit.
func (r *repo) mutate(ctx context.Context, id uuid.UUID, target projects.Status, fn stageFunc) error {
	release, err := r.locker.TryLock(ctx, id.String())
	if err != nil {
		if errors.Is(err, locking.ErrLocked) {
			return fmt.Errorf("%w: project %s has an operation in progress", projects.ErrBusy, id)
		}
		return fmt.Errorf("lock project %s: %w", id, err)
	}
	defer release()

	rec, err := r.store.Find(ctx, id)
	if err != nil {
		return err
	}

	c := projects.Commit{Project: rec.Project}
	if err := fn(ctx, rec, &c); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	from := rec.Project.Status
	c.Project.Status = from.Advance(target)
	c.Project.UpdatedAt = now()

	if err := r.store.Commit(ctx, c); err != nil {
		return fmt.Errorf("commit %s: %w", target, err)
	}

	r.logger.InfoContext(
		ctx, "stage completed",
		"project_id", id,
		"stage", target,
		"from", from,
		"to", c.Project.Status,
	)
	return nil
}

func (r *repo) archiveSnapshot(ctx context.Context, projectID uuid.UUID, p projects.Presentation) (string, bool) {
	if r.archive == nil {
		return "", false
	}

	key := storage.Key(r.prefix, projectID.String(), p.ID.String()+".json")
	if err := storage.PutJSON(ctx, r.archive, key, p); err != nil {
		r.logger.WarnContext(ctx, "presentation snapshot not archived", "project_id", projectID, "error", err)
		return "", false
	}
	return key, true
}

func (r *repo) discardSnapshot(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.archive.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("orphaned presentation snapshot", "key", key, "error", err)
	}
}

func now() time.Time {
	return time.Now().UTC()
}
