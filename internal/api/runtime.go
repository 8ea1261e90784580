package api

import (
	"fmt"

	"github.com/JaimeStill/pitchcraft/internal/config"
	"github.com/JaimeStill/pitchcraft/internal/infrastructure"
	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/workflow"
	"github.com/JaimeStill/pitchcraft/pkg/locking"
	"github.com/JaimeStill/pitchcraft/pkg/pagination"
)

// Runtime extends Infrastructure with the selected record store and project
// lock plus API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Store      projects.Store
	Locker     locking.Locker
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger. The store
// and lock backends follow the workflow config.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Redis:     infra.Redis,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
	}

	switch cfg.Workflow.Store {
	case workflow.StorePostgres:
		if infra.Database == nil {
			return nil, fmt.Errorf("postgres store requires a database")
		}
		rt.Store = projects.NewPostgresStore(infra.Database.Connection(), logger, rt.Pagination)
	case workflow.StoreRedis:
		if infra.Redis == nil {
			return nil, fmt.Errorf("redis store requires a redis client")
		}
		rt.Store = projects.NewRedisStore(infra.Redis, logger, rt.Pagination)
	default:
		rt.Store = projects.NewMemoryStore(rt.Pagination)
	}

	switch cfg.Workflow.Lock {
	case workflow.LockRedis:
		if infra.Redis == nil {
			return nil, fmt.Errorf("redis lock requires a redis client")
		}
		rt.Locker = locking.NewRedis(infra.Redis, cfg.Workflow.LockTTLDuration(), logger)
	default:
		rt.Locker = locking.NewMemory()
	}

	return rt, nil
}
