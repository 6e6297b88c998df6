package index

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"ragdesk/internal/domain"
	"ragdesk/internal/vectorstore"
)

// DefaultTopK is the number of neighbors returned when the caller does
// not ask for a specific k.
const DefaultTopK = 3

// Index embeds chunks and stores the resulting entries. Adds are
// serialized and atomic at call granularity: chunks are embedded
// before anything touches the store, and the store-level upsert is
// all-or-nothing, so a failed Add leaves prior entries intact.
// Queries may run concurrently with each other.
type Index struct {
	mu       sync.Mutex
	store    vectorstore.Store
	embedder domain.Embedder
	inited   bool
}

func New(store vectorstore.Store, embedder domain.Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Add embeds the chunks in order and appends one entry per chunk,
// assigning entry ids. Safe to call repeatedly: the index grows
// incrementally and is never rebuilt.
func (ix *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.inited {
		dim := ix.embedder.Dimension()
		if dim == 0 && len(vectors) > 0 {
			dim = len(vectors[0])
		}
		if err := ix.store.Init(dim); err != nil {
			return err
		}
		ix.inited = true
	}
	entries := make([]domain.IndexEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = domain.IndexEntry{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Chunk:  ch,
		}
	}
	return ix.store.Upsert(entries)
}

// Query embeds the question and returns up to k entries ordered by
// descending relevance. An empty index yields an empty slice. A
// non-positive k falls back to DefaultTopK.
func (ix *Index) Query(ctx context.Context, question string, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := ix.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	scored, err := ix.store.Search(vec, k)
	if err != nil {
		return nil, err
	}
	results := make([]domain.QueryResult, len(scored))
	for i, s := range scored {
		results[i] = domain.QueryResult{
			Chunk:     s.Entry.Chunk,
			Relevance: relevance(s.Score),
		}
	}
	return results, nil
}

// Clear drops all entries immediately. The next Add behaves like
// first-time creation, including dimension selection.
func (ix *Index) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.store.Clear(); err != nil {
		return err
	}
	ix.inited = false
	return nil
}

// Stats aggregates over current entries without re-embedding anything.
func (ix *Index) Stats() (domain.IndexStats, error) {
	return ix.store.Stats()
}

// relevance maps cosine similarity in [-1,1] to [0,1]. The mapping is
// monotone decreasing in angular distance, with 1.0 at identity.
func relevance(cos float64) float64 {
	r := (cos + 1) / 2
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
