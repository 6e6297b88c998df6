package memory

import (
	"errors"
	"sort"
	"sync"

	"ragdesk/internal/domain"
	"ragdesk/internal/vectorstore"
)

// Store is an in-process vector store using brute-force cosine
// similarity. It does not survive a restart; use the sqlite backend
// for a persisted index.
type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   []domain.IndexEntry
}

func New() *Store { return &Store{} }

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension && len(s.entries) > 0 {
		return errors.New("dimension mismatch with existing entries")
	}
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) Search(vector []float32, k int) ([]vectorstore.Scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	scored := make([]vectorstore.Scored, len(s.entries))
	for i, e := range s.entries {
		scored[i] = vectorstore.Scored{Entry: e, Score: vectorstore.Cosine(e.Vector, vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (s *Store) Stats() (domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.IndexStats{
		Count:            len(s.entries),
		CountsByFileType: make(map[string]int),
	}
	seen := make(map[string]struct{})
	for _, e := range s.entries {
		if _, ok := seen[e.Chunk.SourceID]; !ok {
			seen[e.Chunk.SourceID] = struct{}{}
			stats.DistinctSources = append(stats.DistinctSources, e.Chunk.SourceID)
		}
		stats.CountsByFileType[e.Chunk.FileType]++
	}
	sort.Strings(stats.DistinctSources)
	return stats, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dimension = 0
	return nil
}

func (s *Store) Close() error { return nil }
