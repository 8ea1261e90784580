package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pitchcraft/internal/config"
	"github.com/JaimeStill/pitchcraft/pkg/openapi"
	"github.com/JaimeStill/pitchcraft/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	logger *slog.Logger,
) error {
	groups := []routes.Group{
		domain.Workflow.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
	}

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	if err := routes.Document(spec, cfg.API.BasePath, groups...); err != nil {
		return fmt.Errorf("document routes: %w", err)
	}
	serveSpec, err := spec.Handler()
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", serveSpec)

	for _, p := range routes.Register(mux, groups...) {
		logger.Debug("route registered", "pattern", p)
	}
	return nil
}
