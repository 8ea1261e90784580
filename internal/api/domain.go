package api

import (
	"fmt"
	"maps"
	"slices"

	"github.com/JaimeStill/pitchcraft/internal/config"
	"github.com/JaimeStill/pitchcraft/internal/enrichment"
	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/prompts"
	"github.com/JaimeStill/pitchcraft/internal/synthesis"
	"github.com/JaimeStill/pitchcraft/internal/workflow"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Workflow workflow.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	library, err := prompts.Load(cfg.Prompts.File)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	if overridden := library.Overrides(); len(overridden) > 0 {
		runtime.Logger.Info("prompt overrides loaded",
			"file", cfg.Prompts.File,
			"stages", slices.Sorted(maps.Keys(overridden)))
	}

	var agent gaconfig.AgentConfig
	if cfg.Generation.Provider == generation.ProviderAgent {
		agent, err = cfg.Agent.Build()
		if err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	enricher, err := enrichment.New(&cfg.Enrichment, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("enrichment: %w", err)
	}

	synth := &synthesis.Runtime{
		Generator:      generation.New(&cfg.Generation, agent, runtime.Logger),
		Prompts:        library,
		Logger:         runtime.Logger.With("system", "synthesis"),
		MaxConcurrency: cfg.Generation.MaxConcurrency,
		ObjectionCap:   cfg.Workflow.ObjectionCap,
		ExcerptLength:  cfg.Workflow.ExcerptLength,
	}

	workflowSystem := workflow.New(
		&workflow.Runtime{
			Store:     runtime.Store,
			Locker:    runtime.Locker,
			Enricher:  enricher,
			Synthesis: synth,
			Archive:   runtime.Storage,
			Logger:    runtime.Logger,
		},
		&cfg.Workflow,
		cfg.Storage.Prefix,
		runtime.Pagination,
	)

	return &Domain{Workflow: workflowSystem}, nil
}
