// Package config defines the pipeline run configuration, its defaults and
// validation.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calderabio/regulon/core/enrichment"
	"github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/pruning"
)

// Config carries every recognized pipeline option.
type Config struct {
	Modules    ModulesConfig    `yaml:"modules"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Pruning    PruningConfig    `yaml:"pruning"`
	Databases  DatabasesConfig  `yaml:"databases"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
}

type ModulesConfig struct {
	MinWeight            float64   `yaml:"min_weight"`
	SecondaryWeight      float64   `yaml:"secondary_weight"`
	TopNPerTF            int       `yaml:"top_n_per_tf"`
	TopKPerTarget        []int     `yaml:"top_k_per_target"`
	CorrelationThreshold Threshold `yaml:"correlation_threshold"`
	MinModuleSize        int       `yaml:"min_module_size"`
}

type Threshold struct {
	Positive float64 `yaml:"positive"`
	Negative float64 `yaml:"negative"`
}

type EnrichmentConfig struct {
	AUCMaxRankFraction float64 `yaml:"auc_max_rank_fraction"`
	NESCutoff          float64 `yaml:"nes_cutoff"`
}

type PruningConfig struct {
	MaxRank int `yaml:"max_rank"`
}

type DatabasesConfig struct {
	Registry  string `yaml:"registry"`
	Organism  string `yaml:"organism"`
	CacheSize int    `yaml:"cache_size"`
}

type ArtifactsConfig struct {
	// Store selects the artifact store backend: "none", "fs" or "sqlite".
	Store string `yaml:"store"`
	Path  string `yaml:"path"`
}

// Default returns the published defaults for every option.
func Default() *Config {
	return &Config{
		Modules: ModulesConfig{
			MinWeight:            0.001,
			SecondaryWeight:      0.005,
			TopNPerTF:            50,
			TopKPerTarget:        []int{5, 10, 50},
			CorrelationThreshold: Threshold{Positive: 0.03, Negative: -0.03},
			MinModuleSize:        20,
		},
		Enrichment: EnrichmentConfig{
			AUCMaxRankFraction: 0.01,
			NESCutoff:          3.0,
		},
		Pruning: PruningConfig{
			MaxRank: 5000,
		},
		Databases: DatabasesConfig{
			CacheSize: 8,
		},
		Artifacts: ArtifactsConfig{
			Store: "none",
		},
	}
}

// Load reads a yaml config over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Configf("read config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Configf("parse config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every threshold and parameter.
func (c *Config) Validate() error {
	m := c.Modules
	if m.MinWeight < 0 {
		return errors.Configf("min_weight %v is negative", m.MinWeight)
	}
	if m.SecondaryWeight <= m.MinWeight {
		return errors.Configf("secondary_weight %v must exceed min_weight %v", m.SecondaryWeight, m.MinWeight)
	}
	if m.TopNPerTF <= 0 {
		return errors.Configf("top_n_per_tf %d must be positive", m.TopNPerTF)
	}
	if len(m.TopKPerTarget) == 0 {
		return errors.Configf("top_k_per_target is empty")
	}
	for _, k := range m.TopKPerTarget {
		if k <= 0 {
			return errors.Configf("top_k_per_target tier %d must be positive", k)
		}
	}
	if m.CorrelationThreshold.Positive <= 0 {
		return errors.Configf("correlation_threshold.positive %v must be positive", m.CorrelationThreshold.Positive)
	}
	if m.CorrelationThreshold.Negative >= 0 {
		return errors.Configf("correlation_threshold.negative %v must be negative", m.CorrelationThreshold.Negative)
	}
	if m.MinModuleSize < 1 {
		return errors.Configf("min_module_size %d must be at least 1", m.MinModuleSize)
	}
	if c.Enrichment.AUCMaxRankFraction <= 0 || c.Enrichment.AUCMaxRankFraction > 1 {
		return errors.Configf("auc_max_rank_fraction %v out of (0, 1]", c.Enrichment.AUCMaxRankFraction)
	}
	if c.Enrichment.NESCutoff < 0 {
		return errors.Configf("nes_cutoff %v is negative", c.Enrichment.NESCutoff)
	}
	if c.Pruning.MaxRank <= 0 {
		return errors.Configf("pruning max_rank %d must be positive", c.Pruning.MaxRank)
	}
	if c.Databases.CacheSize <= 0 {
		return errors.Configf("database cache_size %d must be positive", c.Databases.CacheSize)
	}
	switch c.Artifacts.Store {
	case "none", "fs", "sqlite":
	default:
		return errors.Configf("artifact store %q not one of none, fs, sqlite", c.Artifacts.Store)
	}
	if c.Artifacts.Store != "none" && c.Artifacts.Path == "" {
		return errors.Configf("artifact store %q requires a path", c.Artifacts.Store)
	}
	return nil
}

// ModuleOptions converts to the module constructor's options.
func (c *Config) ModuleOptions() modules.Options {
	return modules.Options{
		SecondaryWeight: c.Modules.SecondaryWeight,
		TopNPerTF:       c.Modules.TopNPerTF,
		TopKPerTarget:   c.Modules.TopKPerTarget,
	}
}

// EnrichmentOptions converts to the enrichment engine's options.
func (c *Config) EnrichmentOptions() enrichment.Options {
	return enrichment.Options{
		AUCMaxRankFraction: c.Enrichment.AUCMaxRankFraction,
		NESCutoff:          c.Enrichment.NESCutoff,
	}
}

// PruningOptions converts to the pruner's options.
func (c *Config) PruningOptions() pruning.Options {
	return pruning.Options{MaxRank: c.Pruning.MaxRank}
}
