package enrichment

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

type directoryFile struct {
	Companies map[string]map[string]string `yaml:"companies"`
}

type directory struct {
	companies map[string]map[string]string
}

// LoadDirectory reads a YAML firmographics file of the form
//
//	companies:
//	  Acme Ltda:
//	    employees: "250"
//	    founded: "1998"
//
// Company names match case-insensitively.
func LoadDirectory(path string) (Enricher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	return ParseDirectory(data)
}

// ParseDirectory builds a directory Enricher from YAML content.
func ParseDirectory(data []byte) (Enricher, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}

	companies := make(map[string]map[string]string, len(f.Companies))
	for name, facts := range f.Companies {
		companies[directoryKey(name)] = facts
	}
	return &directory{companies: companies}, nil
}

func (d *directory) Enrich(ctx context.Context, profile projects.ClientProfile) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnrichment, err)
	}
	facts, ok := d.companies[directoryKey(profile.CompanyName)]
	if !ok {
		return map[string]string{}, nil
	}
	return namespaced("directory", facts), nil
}

func directoryKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
