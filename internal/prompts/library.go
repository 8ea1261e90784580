package prompts

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Library resolves instructions per stage, preferring overrides loaded from
// a YAML file over the built-in defaults.
type Library struct {
	overrides map[Stage]string
}

type overrideFile struct {
	Stages map[string]struct {
		Instructions string `yaml:"instructions"`
	} `yaml:"stages"`
}

// Default returns a Library with no overrides.
func Default() *Library {
	return &Library{overrides: map[Stage]string{}}
}

// Load reads instruction overrides from a YAML file of the form
//
//	stages:
//	  introduction:
//	    instructions: "..."
//
// An empty path returns Default. Unknown stage names are rejected.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(data)
}

// Parse builds a Library from YAML override content.
func Parse(data []byte) (*Library, error) {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	lib := Default()
	for name, entry := range file.Stages {
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %q: %w", ErrLoad, name, err)
		}
		if text := strings.TrimSpace(entry.Instructions); text != "" {
			lib.overrides[stage] = text
		}
	}
	return lib, nil
}

// Overrides returns the stages whose instructions were overridden.
func (l *Library) Overrides() map[Stage]string {
	return maps.Clone(l.overrides)
}

// Instructions returns the effective instructions for stage.
func (l *Library) Instructions(stage Stage) (string, error) {
	if text, ok := l.overrides[stage]; ok {
		return text, nil
	}
	return Instructions(stage)
}

// Compose builds the prompt for stage by joining its effective instructions
// and output specification. variant is passed to Spec.
func (l *Library) Compose(stage Stage, variant string) (string, error) {
	inst, err := l.Instructions(stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := Spec(stage, variant)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(inst)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	return sb.String(), nil
}

func formatSection(length string) string {
	return fmt.Sprintf(sectionSpec, length)
}
