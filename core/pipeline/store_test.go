package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderabio/regulon/core/config"
)

func TestOpenStoreSelectsBackend(t *testing.T) {
	s, err := OpenStore(config.ArtifactsConfig{Store: "none"})
	require.NoError(t, err)
	assert.IsType(t, nullStore{}, s)

	s, err = OpenStore(config.ArtifactsConfig{Store: "fs", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &fsStore{}, s)

	_, err = OpenStore(config.ArtifactsConfig{Store: "redis"})
	assert.Error(t, err)
}

func TestFSStoreWritesStageFiles(t *testing.T) {
	dir := t.TempDir()
	s := &fsStore{root: dir}
	require.NoError(t, s.Begin("run-1"))
	require.NoError(t, s.Put("links", []map[string]any{{"tf": "A"}}))

	raw, err := os.ReadFile(filepath.Join(dir, "run-1", "links.json"))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "A", decoded[0]["tf"])
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")
	s, err := openSQLiteStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Begin("run-7"))
	type link struct {
		TF     string  `json:"tf"`
		Target string  `json:"target"`
		Weight float64 `json:"weight"`
	}
	require.NoError(t, s.Put("links", []link{{TF: "A", Target: "g1", Weight: 0.5}}))
	require.NoError(t, s.Close())

	var loaded []link
	require.NoError(t, LoadArtifact(path, "run-7", "links", &loaded))
	require.Len(t, loaded, 1)
	assert.Equal(t, link{TF: "A", Target: "g1", Weight: 0.5}, loaded[0])

	// Unknown stage fails loudly.
	assert.Error(t, LoadArtifact(path, "run-7", "missing", &loaded))
}
