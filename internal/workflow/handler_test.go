package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/internal/projects"
	"github.com/JaimeStill/pitchcraft/internal/workflow"
	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/routes"
)

var testID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

type mockSystem struct {
	createFn       func(ctx context.Context, cmd projects.CreateCommand) (*projects.Project, error)
	profileFn      func(ctx context.Context, id uuid.UUID, cmd projects.ProfileCommand) (*projects.ClientProfile, error)
	enrichFn       func(ctx context.Context, id uuid.UUID) (*projects.ClientProfile, error)
	narrativeFn    func(ctx context.Context, id uuid.UUID) (*projects.Narrative, error)
	presentationFn func(ctx context.Context, id uuid.UUID, title string) (*projects.Presentation, error)
	objectionsFn   func(ctx context.Context, id uuid.UUID) (*projects.ObjectionSet, error)
	pipelineFn     func(ctx context.Context, id uuid.UUID, title string) (*workflow.View, error)
	getFn          func(ctx context.Context, id uuid.UUID, expand bool) (*workflow.View, error)
	listFn         func(ctx context.Context, page pagination.PageRequest, filters projects.Filters) (*pagination.PageResult[projects.Project], error)
	statsFn        func(ctx context.Context) (map[projects.Status]int, error)
	exportFn       func(ctx context.Context, id uuid.UUID) ([]byte, error)
}

func (m *mockSystem) Handler(maxBodySize int64) *workflow.Handler {
	return workflow.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, maxBodySize)
}

func (m *mockSystem) CreateProject(ctx context.Context, cmd projects.CreateCommand) (*projects.Project, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) SetClientProfile(ctx context.Context, id uuid.UUID, cmd projects.ProfileCommand) (*projects.ClientProfile, error) {
	return m.profileFn(ctx, id, cmd)
}

func (m *mockSystem) EnrichProfile(ctx context.Context, id uuid.UUID) (*projects.ClientProfile, error) {
	return m.enrichFn(ctx, id)
}

func (m *mockSystem) GenerateNarrative(ctx context.Context, id uuid.UUID) (*projects.Narrative, error) {
	return m.narrativeFn(ctx, id)
}

func (m *mockSystem) GeneratePresentation(ctx context.Context, id uuid.UUID, title string) (*projects.Presentation, error) {
	return m.presentationFn(ctx, id, title)
}

func (m *mockSystem) GenerateObjections(ctx context.Context, id uuid.UUID) (*projects.ObjectionSet, error) {
	return m.objectionsFn(ctx, id)
}

func (m *mockSystem) RunPipeline(ctx context.Context, id uuid.UUID, title string) (*workflow.View, error) {
	return m.pipelineFn(ctx, id, title)
}

func (m *mockSystem) GetProject(ctx context.Context, id uuid.UUID, expand bool) (*workflow.View, error) {
	return m.getFn(ctx, id, expand)
}

func (m *mockSystem) ListProjects(ctx context.Context, page pagination.PageRequest, filters projects.Filters) (*pagination.PageResult[projects.Project], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Stats(ctx context.Context) (map[projects.Status]int, error) {
	return m.statsFn(ctx)
}

func (m *mockSystem) ExportPresentation(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return m.exportFn(ctx, id)
}

func setupMux(sys *mockSystem, maxBody int64) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(maxBody).Routes())
	return mux
}

func sampleProject() projects.Project {
	return projects.Project{
		ID:          testID,
		Title:       "Plataforma de fretes",
		ProjectType: projects.TypeSalesPitch,
		Status:      projects.StatusCreated,
		CreatedAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "created", body: `{"title": "Plataforma de fretes"}`, wantStatus: http.StatusCreated},
		{name: "validation", body: `{"title": ""}`, err: projects.ErrValidation, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				createFn: func(_ context.Context, cmd projects.CreateCommand) (*projects.Project, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					p := sampleProject()
					p.Title = cmd.Title
					return &p, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			setupMux(sys, 1024).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				var got projects.Project
				if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
					t.Fatal(err)
				}
				if got.Title != "Plataforma de fretes" || got.ID != testID {
					t.Errorf("project = %+v", got)
				}
			}
		})
	}
}

func TestHandlerBodyTooLarge(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, projects.CreateCommand) (*projects.Project, error) {
			t.Fatal("system must not be called")
			return nil, nil
		},
	}

	body := `{"title": "` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()
	setupMux(sys, 64).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	var gotExpand bool
	sys := &mockSystem{
		getFn: func(_ context.Context, id uuid.UUID, expand bool) (*workflow.View, error) {
			if id != testID {
				return nil, projects.ErrNotFound
			}
			gotExpand = expand
			return &workflow.View{Project: sampleProject()}, nil
		},
	}
	mux := setupMux(sys, 1024)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantExpand bool
	}{
		{name: "found", path: "/projects/" + testID.String(), wantStatus: http.StatusOK},
		{name: "expanded", path: "/projects/" + testID.String() + "?expand=true", wantStatus: http.StatusOK, wantExpand: true},
		{name: "not found", path: "/projects/" + uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "invalid id", path: "/projects/not-a-uuid", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotExpand = false
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotExpand != tt.wantExpand {
				t.Errorf("expand = %v, want %v", gotExpand, tt.wantExpand)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters projects.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters projects.Filters) (*pagination.PageResult[projects.Project], error) {
			gotPage = page
			gotFilters = filters
			result := pagination.NewPageResult([]projects.Project{sampleProject()}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/projects?page=2&page_size=5&status=created,enriched&project_type=elevator_pitch", nil)
	rec := httptest.NewRecorder()
	setupMux(sys, 1024).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotPage.Page != 2 || gotPage.PageSize != 5 {
		t.Errorf("page = %+v", gotPage)
	}
	if len(gotFilters.Statuses) != 2 || gotFilters.ProjectType == nil || *gotFilters.ProjectType != projects.TypeElevatorPitch {
		t.Errorf("filters = %+v", gotFilters)
	}
}

func TestHandlerStageErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{"profile ok", http.MethodPut, "/profile", `{"company_name": "Acme"}`, nil, http.StatusOK},
		{"profile via post", http.MethodPost, "/profile", `{"company_name": "Acme"}`, nil, http.StatusOK},
		{"profile validation", http.MethodPut, "/profile", `{"company_name": ""}`, projects.ErrValidation, http.StatusBadRequest},
		{"enrich precondition", http.MethodPost, "/enrich", ``, projects.ErrPrecondition, http.StatusPreconditionFailed},
		{"narrative adapter", http.MethodPost, "/narrative", ``, projects.ErrAdapter, http.StatusBadGateway},
		{"narrative busy", http.MethodPost, "/narrative", ``, projects.ErrBusy, http.StatusConflict},
		{"presentation no body", http.MethodPost, "/presentation", ``, nil, http.StatusOK},
		{"presentation title", http.MethodPost, "/presentation", `{"title": "Deck"}`, nil, http.StatusOK},
		{"objections not found", http.MethodPost, "/objections", ``, projects.ErrNotFound, http.StatusNotFound},
		{"pipeline ok", http.MethodPost, "/pipeline", `{"title": "Deck"}`, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := func() error { return tt.err }
			sys := &mockSystem{
				profileFn: func(context.Context, uuid.UUID, projects.ProfileCommand) (*projects.ClientProfile, error) {
					if err := fail(); err != nil {
						return nil, err
					}
					return &projects.ClientProfile{CompanyName: "Acme"}, nil
				},
				enrichFn: func(context.Context, uuid.UUID) (*projects.ClientProfile, error) {
					return nil, fail()
				},
				narrativeFn: func(context.Context, uuid.UUID) (*projects.Narrative, error) {
					if err := fail(); err != nil {
						return nil, err
					}
					return &projects.Narrative{}, nil
				},
				presentationFn: func(_ context.Context, _ uuid.UUID, title string) (*projects.Presentation, error) {
					if err := fail(); err != nil {
						return nil, err
					}
					return &projects.Presentation{Title: title}, nil
				},
				objectionsFn: func(context.Context, uuid.UUID) (*projects.ObjectionSet, error) {
					return nil, fail()
				},
				pipelineFn: func(_ context.Context, _ uuid.UUID, title string) (*workflow.View, error) {
					if title != "Deck" {
						return nil, errors.New("title not forwarded")
					}
					return &workflow.View{Project: sampleProject()}, nil
				},
			}

			path := "/projects/" + testID.String() + tt.path
			req := httptest.NewRequest(tt.method, path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			setupMux(sys, 1024).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.err != nil {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
					t.Errorf("error body = %v, err = %v", body, err)
				}
			}
		})
	}
}

func TestHandlerStatsAndExport(t *testing.T) {
	sys := &mockSystem{
		statsFn: func(context.Context) (map[projects.Status]int, error) {
			return map[projects.Status]int{projects.StatusCreated: 3}, nil
		},
		exportFn: func(_ context.Context, id uuid.UUID) ([]byte, error) {
			return []byte(`{"id":"` + id.String() + `"}`), nil
		},
	}
	mux := setupMux(sys, 1024)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var counts map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil || counts["created"] != 3 {
		t.Errorf("counts = %v, err = %v", counts, err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/"+testID.String()+"/presentation/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), testID.String()) {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(rec.Body.String(), testID.String()) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
