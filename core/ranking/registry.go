package ranking

import (
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/calderabio/regulon/core/errors"
)

// RankingRef names one search-space ranking database of a bundle.
type RankingRef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Bundle is the resolved set of tables for one organism.
type Bundle struct {
	Organism    string       `yaml:"-"`
	Rankings    []RankingRef `yaml:"rankings"`
	Annotations string       `yaml:"annotations"`
}

// Registry maps organism tags to their database bundles. It replaces
// per-organism conditional branching: a run resolves its bundle once, at
// startup, and the bundle is validated before any stage executes.
type Registry struct {
	Organisms map[string]Bundle `yaml:"organisms"`
}

// LoadRegistry reads and validates a registry file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Configf("read registry %s: %v", path, err)
	}
	var reg Registry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, errors.Configf("parse registry %s: %v", path, err)
	}
	if len(reg.Organisms) == 0 {
		return nil, errors.Configf("registry %s lists no organisms", path)
	}
	return &reg, nil
}

// Tags returns the supported organism tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.Organisms))
	for tag := range r.Organisms {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Resolve returns the validated bundle for organism. Every referenced file
// must exist; a dangling path is a configuration error.
func (r *Registry) Resolve(organism string) (Bundle, error) {
	b, ok := r.Organisms[organism]
	if !ok {
		return Bundle{}, errors.Configf("organism %q not in registry (have %v)", organism, r.Tags())
	}
	if len(b.Rankings) == 0 {
		return Bundle{}, errors.Configf("organism %q has no ranking databases", organism)
	}
	for _, ref := range b.Rankings {
		if ref.Name == "" {
			return Bundle{}, errors.Configf("organism %q: ranking with empty name", organism)
		}
		if _, err := os.Stat(ref.Path); err != nil {
			return Bundle{}, errors.Configf("organism %q: ranking %s: %v", organism, ref.Name, err)
		}
	}
	if _, err := os.Stat(b.Annotations); err != nil {
		return Bundle{}, errors.Configf("organism %q: annotations: %v", organism, err)
	}
	b.Organism = organism
	return b, nil
}
