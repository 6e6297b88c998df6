package retriever

import (
	"context"
	"strings"

	"ragdesk/internal/domain"
	"ragdesk/internal/index"
)

// DefaultThreshold is the minimum relevance the best retrieved chunk
// must reach before an answer is attempted.
const DefaultThreshold = 0.7

// ContextSeparator joins retrieved chunk texts in the assembled
// context. Chosen to be visually distinct from chunk content.
const ContextSeparator = "\n\n---\n\n"

// Querier is the index surface the retriever depends on.
type Querier interface {
	Query(ctx context.Context, question string, k int) ([]domain.QueryResult, error)
}

// Retriever queries the index and applies the relevance gate: only the
// top result's score decides whether the whole batch is usable. One
// strong match is preferred over many weak ones.
type Retriever struct {
	querier   Querier
	topK      int
	threshold float64
}

func New(querier Querier, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Retriever{querier: querier, topK: topK, threshold: threshold}
}

// Retrieve returns the assembled context bundle, or NoMatchError when
// nothing is retrieved or the best match scores below the threshold.
func (r *Retriever) Retrieve(ctx context.Context, question string) (domain.ContextBundle, error) {
	results, err := r.querier.Query(ctx, question, r.topK)
	if err != nil {
		return domain.ContextBundle{}, err
	}
	if len(results) == 0 || results[0].Relevance < r.threshold {
		return domain.ContextBundle{}, &domain.NoMatchError{}
	}

	texts := make([]string, len(results))
	sources := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Chunk.Text
		src := res.Chunk.SourceID
		if src == "" {
			src = domain.UnknownSource
		}
		sources[i] = src
	}
	return domain.ContextBundle{
		ContextText: strings.Join(texts, ContextSeparator),
		Sources:     sources,
	}, nil
}
