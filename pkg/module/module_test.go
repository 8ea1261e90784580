package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pitchcraft/pkg/module"
)

func pathEcho(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(r.URL.Path))
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{"api", "/api", false},
		{"docs", "/docs", false},
		{"empty", "", true},
		{"root only", "/", true},
		{"no leading slash", "api", true},
		{"nested", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := module.ValidatePrefix(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrefix(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			}
		})
	}
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid prefix")
		}
	}()
	module.New("/api/v1", http.NewServeMux())
}

func TestModuleStripsPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", pathEcho)

	m := module.New("/api", mux)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"nested path", "/api/projects/1", "/projects/1"},
		{"module root", "/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("inner path: got %s, want %s", got, tt.want)
			}
			if req.URL.Path != tt.path {
				t.Errorf("original request mutated: got %s", req.URL.Path)
			}
		})
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handler"))
	})

	m := module.New("/api", mux)

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	m.Use(tag("outer"), tag("inner"))

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order: got %v, want [outer inner]", order)
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api" + r.URL.Path))
	})

	docsMux := http.NewServeMux()
	docsMux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("docs" + r.URL.Path))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux), module.New("/docs", docsMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"api module", "/api/projects", http.StatusOK, "api/projects"},
		{"trailing slash trimmed", "/api/projects/", http.StatusOK, "api/projects"},
		{"docs root", "/docs", http.StatusOK, "docs/"},
		{"native fallback", "/healthz", http.StatusOK, "ok"},
		{"prefix must match whole segment", "/apis/x", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterPrefixes(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/docs", http.NewServeMux()), module.New("/api", http.NewServeMux()))

	got := router.Prefixes()
	if len(got) != 2 || got[0] != "/api" || got[1] != "/docs" {
		t.Errorf("Prefixes() = %v, want [/api /docs]", got)
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
