package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain"
)

func entry(id, source, fileType string, vec []float32) domain.IndexEntry {
	return domain.IndexEntry{
		ID:     id,
		Vector: vec,
		Chunk: domain.Chunk{
			Text:        "text-" + id,
			SourceID:    source,
			StartOffset: 0,
			UploadID:    "upload-1",
			FileType:    fileType,
		},
	}
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]domain.IndexEntry{
		entry("near", "a.txt", "text", []float32{1, 0}),
		entry("far", "b.md", "markdown", []float32{0, 1}),
	}))

	res, err := s.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "near", res[0].Entry.ID)
	assert.Equal(t, "text-near", res[0].Entry.Chunk.Text)
	assert.Equal(t, "upload-1", res[0].Entry.Chunk.UploadID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]domain.IndexEntry{entry("1", "a.txt", "text", []float32{1, 0})}))
	require.NoError(t, s.Close())

	s2 := openStore(t, path)
	stats, err := s2.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)

	res, err := s2.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "1", res[0].Entry.ID)

	// the recorded dimension survives too
	require.NoError(t, s2.Init(2))
	assert.Error(t, s2.Init(3))
}

func TestStore_IncrementalAdd(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Init(2))

	require.NoError(t, s.Upsert([]domain.IndexEntry{
		entry("1", "a.txt", "text", []float32{1, 0}),
		entry("2", "a.txt", "text", []float32{0, 1}),
	}))
	require.NoError(t, s.Upsert([]domain.IndexEntry{
		entry("3", "b.md", "markdown", []float32{1, 1}),
	}))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, []string{"a.txt", "b.md"}, stats.DistinctSources)
	assert.Equal(t, map[string]int{"markdown": 1, "text": 2}, stats.CountsByFileType)
}

func TestStore_SearchEmpty(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Init(2))

	res, err := s.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStore_ClearIsDestructiveAndImmediate(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]domain.IndexEntry{entry("1", "a.txt", "text", []float32{1, 0})}))

	require.NoError(t, s.Clear())

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Empty(t, stats.DistinctSources)
	assert.Empty(t, stats.CountsByFileType)

	// after clear the store accepts a fresh dimension
	require.NoError(t, s.Init(5))
}

func TestStore_DuplicateIDFailsWhole(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]domain.IndexEntry{entry("dup", "a.txt", "text", []float32{1, 0})}))

	err := s.Upsert([]domain.IndexEntry{
		entry("new", "a.txt", "text", []float32{0, 1}),
		entry("dup", "a.txt", "text", []float32{1, 1}),
	})
	require.Error(t, err)

	// transaction rolled back: "new" was not added either
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
}
