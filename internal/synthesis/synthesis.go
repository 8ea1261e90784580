// Package synthesis turns a project and its client profile into the
// generated artifacts: the six-part narrative, the slide deck derived from
// it, and the simulated objections with rebuttals.
package synthesis

import (
	"log/slog"

	"github.com/JaimeStill/pitchcraft/internal/generation"
	"github.com/JaimeStill/pitchcraft/internal/prompts"
)

// Defaults applied by Runtime when a limit is unset.
const (
	DefaultMaxConcurrency = 6
	DefaultObjectionCap   = 5
	DefaultExcerptLength  = 280
)

// Runtime holds the dependencies shared by the synthesis stages.
type Runtime struct {
	Generator      generation.Generator
	Prompts        *prompts.Library
	Logger         *slog.Logger
	MaxConcurrency int
	ObjectionCap   int
	ExcerptLength  int
}

func (rt *Runtime) workers(n int) int {
	limit := rt.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	return max(min(limit, n), 1)
}

func (rt *Runtime) objectionCap() int {
	if rt.ObjectionCap <= 0 {
		return DefaultObjectionCap
	}
	return rt.ObjectionCap
}

func (rt *Runtime) excerptLength() int {
	if rt.ExcerptLength <= 0 {
		return DefaultExcerptLength
	}
	return rt.ExcerptLength
}

func (rt *Runtime) library() *prompts.Library {
	if rt.Prompts == nil {
		return prompts.Default()
	}
	return rt.Prompts
}
