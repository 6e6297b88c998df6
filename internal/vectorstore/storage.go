package vectorstore

import (
	"math"

	"ragdesk/internal/domain"
)

// Store persists index entries and supports similarity search. Every
// backend enforces a single vector dimension per store lifetime and
// keeps Upsert all-or-nothing: on error no entry is added.
type Store interface {
	// Init declares the vector dimension. Calling it again with the
	// same dimension is a no-op; a different dimension is an error
	// unless the store is empty.
	Init(dimension int) error
	Upsert(entries []domain.IndexEntry) error
	// Search returns up to k entries ordered by descending cosine
	// similarity. An empty store yields an empty result.
	Search(vector []float32, k int) ([]Scored, error)
	// Stats aggregates over current entries without touching vectors.
	Stats() (domain.IndexStats, error)
	// Clear drops all entries; the next Init may pick a new dimension.
	Clear() error
	Close() error
}

// Scored is a stored entry with its cosine similarity to a query.
type Scored struct {
	Entry domain.IndexEntry
	Score float64
}

// Cosine computes the cosine similarity of two vectors, 0 when either
// is zero-length or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
