// Package module mounts self-contained sub-applications under single-segment
// path prefixes, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/pitchcraft/pkg/middleware"
)

// Module serves an inner handler with its prefix stripped from the request path.
type Module struct {
	prefix  string
	handler http.Handler
	stack   middleware.System
	built   http.Handler
}

// New creates a Module mounted at prefix (e.g. "/api").
// Panics if prefix is not a single path segment with a leading slash.
func New(prefix string, handler http.Handler) *Module {
	if err := ValidatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:  prefix,
		handler: handler,
		stack:   middleware.New(),
	}
}

// ValidatePrefix reports whether prefix can be mounted on a Router.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1 || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}

// Prefix returns the path prefix the module is mounted at.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module stack. Middleware added after the
// first request is served has no effect.
func (m *Module) Use(mw ...func(http.Handler) http.Handler) {
	m.stack.Use(mw...)
}

// Handler returns the inner handler wrapped in the module middleware.
func (m *Module) Handler() http.Handler {
	if m.built == nil {
		m.built = m.stack.Apply(m.handler)
	}
	return m.built
}

// ServeHTTP strips the module prefix and dispatches to the wrapped handler.
func (m *Module) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	inner := r.Clone(r.Context())
	inner.URL.Path = strings.TrimPrefix(r.URL.Path, m.prefix)
	inner.URL.RawPath = ""
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	m.Handler().ServeHTTP(w, inner)
}
