// Package middleware provides the HTTP middleware stack and the handlers
// mounted on it: request IDs, access logging, panic recovery, and CORS.
package middleware

import "net/http"

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw ...func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

// Use appends middleware. The first registered runs outermost.
func (s *stack) Use(mw ...func(http.Handler) http.Handler) {
	s.layers = append(s.layers, mw...)
}

// Apply wraps handler with every registered middleware.
func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.layers) - 1; i >= 0; i-- {
		handler = s.layers[i](handler)
	}
	return handler
}
