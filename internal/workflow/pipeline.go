package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

// State keys carried through the pipeline graph.
const (
	KeyProjectID   = "project_id"
	KeyTitle       = "title"
	KeyNeedsEnrich = "needs_enrich"
)

// RunPipeline runs every remaining stage for a project through a state
// graph: prepare, enrich when never enriched, narrative, presentation,
// objections. Each node calls the public stage operation. The first failing
// stage stops the run and its error is returned unchanged.
func (r *repo) RunPipeline(ctx context.Context, id uuid.UUID, title string) (*View, error) {
	var failed error
	graph, err := r.buildGraph(&failed)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyProjectID, id)
	initial = initial.Set(KeyTitle, title)

	if _, err := graph.Execute(ctx, initial); err != nil {
		if failed != nil {
			return nil, failed
		}
		return nil, fmt.Errorf("execute pipeline: %w", err)
	}

	r.logger.InfoContext(ctx, "pipeline complete", "project_id", id)
	return r.GetProject(ctx, id, true)
}

func (r *repo) buildGraph(failed *error) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("pitchcraft-pipeline")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		run  func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error)
	}{
		{"prepare", r.prepareNode},
		{"enrich", func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error) {
			_, err := r.EnrichProfile(ctx, id)
			return s, err
		}},
		{"narrative", func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error) {
			_, err := r.GenerateNarrative(ctx, id)
			return s, err
		}},
		{"presentation", func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error) {
			title, _ := s.Get(KeyTitle)
			t, _ := title.(string)
			_, err := r.GeneratePresentation(ctx, id, t)
			return s, err
		}},
		{"objections", func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error) {
			_, err := r.GenerateObjections(ctx, id)
			return s, err
		}},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, stageNode(n.name, failed, n.run)); err != nil {
			return nil, err
		}
	}

	// prepare → enrich (when the profile has never been enriched)
	if err := graph.AddEdge("prepare", "enrich", needsEnrich); err != nil {
		return nil, err
	}

	// prepare → narrative (when enrichment already ran)
	if err := graph.AddEdge("prepare", "narrative", state.Not(needsEnrich)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("enrich", "narrative", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("narrative", "presentation", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("presentation", "objections", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("prepare"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("objections"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (r *repo) prepareNode(ctx context.Context, id uuid.UUID, s state.State) (state.State, error) {
	rec, err := r.store.Find(ctx, id)
	if err != nil {
		return s, err
	}
	if rec.Profile == nil {
		return s, fmt.Errorf("%w: pipeline requires a client profile", projects.ErrPrecondition)
	}
	return s.Set(KeyNeedsEnrich, rec.Profile.Enrichment.Empty()), nil
}

// stageNode adapts a stage to a graph node. The stage error is recorded in
// failed so the caller can return it with its sentinel intact.
func stageNode(
	name string,
	failed *error,
	run func(ctx context.Context, id uuid.UUID, s state.State) (state.State, error),
) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		val, ok := s.Get(KeyProjectID)
		if !ok {
			return s, fmt.Errorf("%s: missing %s in state", name, KeyProjectID)
		}
		id, ok := val.(uuid.UUID)
		if !ok {
			return s, fmt.Errorf("%s: %s is not uuid.UUID", name, KeyProjectID)
		}

		next, err := run(ctx, id, s)
		if err != nil {
			*failed = err
			return s, fmt.Errorf("%s: %w", name, err)
		}
		return next, nil
	})
}

func needsEnrich(s state.State) bool {
	val, ok := s.Get(KeyNeedsEnrich)
	if !ok {
		return false
	}
	needs, ok := val.(bool)
	return ok && needs
}
