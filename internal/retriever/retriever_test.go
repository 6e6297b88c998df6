package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain"
)

// stubQuerier returns canned results and records the requested k.
type stubQuerier struct {
	results []domain.QueryResult
	err     error
	gotK    int
}

func (s *stubQuerier) Query(_ context.Context, _ string, k int) ([]domain.QueryResult, error) {
	s.gotK = k
	return s.results, s.err
}

func result(text, source string, relevance float64) domain.QueryResult {
	return domain.QueryResult{
		Chunk:     domain.Chunk{Text: text, SourceID: source},
		Relevance: relevance,
	}
}

func TestRetrieve_EmptyResults(t *testing.T) {
	r := New(&stubQuerier{}, 3, 0.7)

	_, err := r.Retrieve(context.Background(), "question")
	var noMatch *domain.NoMatchError
	require.ErrorAs(t, err, &noMatch)
}

func TestRetrieve_GateRejectsWeakTopResult(t *testing.T) {
	q := &stubQuerier{results: []domain.QueryResult{
		result("weak best", "a.md", 0.65),
		result("weaker", "b.md", 0.60),
	}}
	r := New(q, 3, 0.7)

	_, err := r.Retrieve(context.Background(), "question")
	var noMatch *domain.NoMatchError
	require.ErrorAs(t, err, &noMatch)
}

func TestRetrieve_GatePassesOnTopResultOnly(t *testing.T) {
	// only the best result's score gates; trailing weak results ride
	// along
	q := &stubQuerier{results: []domain.QueryResult{
		result("strong", "a.md", 0.71),
		result("weak", "b.md", 0.30),
	}}
	r := New(q, 3, 0.7)

	bundle, err := r.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "strong"+ContextSeparator+"weak", bundle.ContextText)
	assert.Equal(t, []string{"a.md", "b.md"}, bundle.Sources)
}

func TestRetrieve_SourcesKeepOrderAndDuplicates(t *testing.T) {
	q := &stubQuerier{results: []domain.QueryResult{
		result("one", "doc.md", 0.95),
		result("two", "other.md", 0.90),
		result("three", "doc.md", 0.85),
	}}
	r := New(q, 3, 0.7)

	bundle, err := r.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.md", "other.md", "doc.md"}, bundle.Sources)
}

func TestRetrieve_UnknownSourceSentinel(t *testing.T) {
	q := &stubQuerier{results: []domain.QueryResult{
		result("text", "", 0.9),
	}}
	r := New(q, 3, 0.7)

	bundle, err := r.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.UnknownSource}, bundle.Sources)
}

func TestRetrieve_PropagatesQueryError(t *testing.T) {
	wantErr := &domain.EmbeddingUnavailableError{Err: errors.New("down")}
	r := New(&stubQuerier{err: wantErr}, 3, 0.7)

	_, err := r.Retrieve(context.Background(), "question")
	var unavailable *domain.EmbeddingUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestNew_Defaults(t *testing.T) {
	q := &stubQuerier{}
	r := New(q, 0, 0)
	_, _ = r.Retrieve(context.Background(), "question")
	assert.Equal(t, 3, q.gotK)
	assert.Equal(t, DefaultThreshold, r.threshold)
}
