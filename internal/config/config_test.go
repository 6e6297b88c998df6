package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, 300, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.Overlap)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	assert.Equal(t, 0.7, cfg.Retriever.Threshold)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
}

func TestLoad_PartialConfigGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
chunker:
  chunk_size: 500
  overlap: 50
retriever:
  threshold: 0.5
store:
  type: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// explicit values survive
	assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	assert.Equal(t, 50, cfg.Chunker.Overlap)
	assert.Equal(t, 0.5, cfg.Retriever.Threshold)
	assert.Equal(t, "memory", cfg.Store.Type)
	// omitted ones are filled in
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.APIKeyEnv)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- nope"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "dir", "config.yaml")

	cfg := defaultConfig()
	cfg.Chunker.ChunkSize = 256
	cfg.Chunker.Overlap = 64
	cfg.Store.Type = "qdrant"
	cfg.Store.Qdrant = &QdrantConfig{URL: "http://localhost:6333", Collection: "docs"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, loaded.Chunker.ChunkSize)
	assert.Equal(t, 64, loaded.Chunker.Overlap)
	assert.Equal(t, "qdrant", loaded.Store.Type)
	require.NotNil(t, loaded.Store.Qdrant)
	assert.Equal(t, "docs", loaded.Store.Qdrant.Collection)
}
