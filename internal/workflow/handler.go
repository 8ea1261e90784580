package workflow

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/pkg/handlers"
	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/routes"
)

// ErrInvalidID indicates a malformed project id path parameter.
var ErrInvalidID = errors.New("invalid project id")

// Handler provides HTTP endpoints for project workflow operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxBodySize int64
}

// TitleRequest is the optional body of the presentation and pipeline endpoints.
type TitleRequest struct {
	Title string `json:"title"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and body size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "projects"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for project endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/projects",
		Tags:    []string{"Projects"},
		Schemas: schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: spec.Create},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats, OpenAPI: spec.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "PUT", Pattern: "/{id}/profile", Handler: h.SetProfile, OpenAPI: spec.SetProfile},
			{Method: "POST", Pattern: "/{id}/profile", Handler: h.SetProfile},
			{Method: "POST", Pattern: "/{id}/enrich", Handler: h.Enrich, OpenAPI: spec.Enrich},
			{Method: "POST", Pattern: "/{id}/narrative", Handler: h.Narrative, OpenAPI: spec.Narrative},
			{Method: "POST", Pattern: "/{id}/presentation", Handler: h.Presentation, OpenAPI: spec.Presentation},
			{Method: "GET", Pattern: "/{id}/presentation/export", Handler: h.Export, OpenAPI: spec.Export},
			{Method: "POST", Pattern: "/{id}/objections", Handler: h.Objections, OpenAPI: spec.Objections},
			{Method: "POST", Pattern: "/{id}/pipeline", Handler: h.Pipeline, OpenAPI: spec.Pipeline},
		},
	}
}

// List returns a paginated list of projects with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := projects.FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListProjects(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create registers a new project.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[projects.CreateCommand](h, w, r, false)
	if !ok {
		return
	}

	p, err := h.sys.CreateProject(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

// Stats returns the number of projects per status.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, counts)
}

// Find returns a single project. ?expand=true includes its children.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	expand, _ := strconv.ParseBool(r.URL.Query().Get("expand"))

	view, err := h.sys.GetProject(r.Context(), id, expand)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

// SetProfile saves the client profile, replacing any previous one.
func (h *Handler) SetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cmd, ok := decode[projects.ProfileCommand](h, w, r, false)
	if !ok {
		return
	}

	profile, err := h.sys.SetClientProfile(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

// Enrich collects firmographic facts for the client profile.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.sys.EnrichProfile(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

// Narrative generates the six-part narrative.
func (h *Handler) Narrative(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	n, err := h.sys.GenerateNarrative(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, n)
}

// Presentation composes a slide deck from the current narrative.
func (h *Handler) Presentation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	req, ok := decode[TitleRequest](h, w, r, true)
	if !ok {
		return
	}

	p, err := h.sys.GeneratePresentation(r.Context(), id, req.Title)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Export returns the archived presentation snapshot as a JSON download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	data, err := h.sys.ExportPresentation(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="presentation-`+id.String()+`.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Objections simulates buyer objections and rebuttals.
func (h *Handler) Objections(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	set, err := h.sys.GenerateObjections(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, set)
}

// Pipeline runs every remaining stage and returns the expanded project.
func (h *Handler) Pipeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	req, ok := decode[TitleRequest](h, w, r, true)
	if !ok {
		return
	}

	view, err := h.sys.RunPipeline(r.Context(), id, req.Title)
	if err != nil {
		handlers.RespondError(w, h.logger, projects.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request, allowEmpty bool) (T, bool) {
	v, err := handlers.DecodeJSON[T](w, r, h.maxBodySize, allowEmpty)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		handlers.RespondError(w, h.logger, status, err)
		return v, false
	}
	return v, true
}
