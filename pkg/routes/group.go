// Package routes declares route groups, registers them on a ServeMux, and
// documents them in an OpenAPI spec.
package routes

import (
	"net/http"

	"github.com/JaimeStill/pitchcraft/pkg/openapi"
)

// Group collects routes under a shared prefix. Children inherit the prefix
// and, when they declare none, the tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
	Schemas  map[string]*openapi.Schema
}

// Register adds every route from groups to mux and returns the registered patterns.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	walk(groups, "", nil, func(prefix string, _ []string, r Route) {
		pattern := r.Expand(prefix)
		mux.HandleFunc(pattern, r.Handler)
		patterns = append(patterns, pattern)
	})
	return patterns
}

// Patterns lists the ServeMux patterns groups would register, without registering them.
func Patterns(groups ...Group) []string {
	var patterns []string
	walk(groups, "", nil, func(prefix string, _ []string, r Route) {
		patterns = append(patterns, r.Expand(prefix))
	})
	return patterns
}

// Document adds every documented route and group schema to spec. Paths are
// rooted at basePath. Operations without tags take their group's tags.
func Document(spec *openapi.Spec, basePath string, groups ...Group) error {
	var err error
	collectSchemas(spec, groups)
	walk(groups, basePath, nil, func(prefix string, tags []string, r Route) {
		if err != nil || r.OpenAPI == nil || r.Method == "" {
			return
		}
		op := *r.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		err = spec.AddOperation(r.Method, prefix+r.Pattern, &op)
	})
	return err
}

func collectSchemas(spec *openapi.Spec, groups []Group) {
	for _, g := range groups {
		if len(g.Schemas) > 0 {
			spec.Components.AddSchemas(g.Schemas)
		}
		collectSchemas(spec, g.Children)
	}
}

func walk(groups []Group, parent string, parentTags []string, fn func(prefix string, tags []string, r Route)) {
	for _, g := range groups {
		prefix := parent + g.Prefix
		tags := g.Tags
		if len(tags) == 0 {
			tags = parentTags
		}
		for _, r := range g.Routes {
			fn(prefix, tags, r)
		}
		walk(g.Children, prefix, tags, fn)
	}
}
