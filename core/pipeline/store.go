// Package pipeline composes the inference stages into one run and persists
// their intermediate artifacts through a pluggable store.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calderabio/regulon/core/config"
)

// ArtifactStore persists named stage artifacts of a run. Implementations
// must tolerate being handed any JSON-serializable artifact.
type ArtifactStore interface {
	// Begin opens the store for a run.
	Begin(runID string) error

	// Put persists one stage artifact.
	Put(stage string, artifact any) error

	Close() error
}

// OpenStore builds the configured store backend.
func OpenStore(cfg config.ArtifactsConfig) (ArtifactStore, error) {
	switch cfg.Store {
	case "none", "":
		return nullStore{}, nil
	case "fs":
		return &fsStore{root: cfg.Path}, nil
	case "sqlite":
		return openSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown artifact store %q", cfg.Store)
}

type nullStore struct{}

func (nullStore) Begin(string) error    { return nil }
func (nullStore) Put(string, any) error { return nil }
func (nullStore) Close() error          { return nil }

// fsStore writes one JSON file per stage under root/runID.
type fsStore struct {
	root string
	dir  string
}

func (s *fsStore) Begin(runID string) error {
	s.dir = filepath.Join(s.root, runID)
	return os.MkdirAll(s.dir, 0755)
}

func (s *fsStore) Put(stage string, artifact any) error {
	raw, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", stage, err)
	}
	path := filepath.Join(s.dir, stage+".json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write %s artifact: %w", stage, err)
	}
	return nil
}

func (s *fsStore) Close() error { return nil }
