package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain"
)

// stubCompleter records prompts and returns a canned completion.
type stubCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestAnswer_PromptShape(t *testing.T) {
	c := &stubCompleter{reply: "Paris."}
	a := New(c)

	bundle := domain.ContextBundle{
		ContextText: "France's capital is Paris.",
		Sources:     []string{"geo.md"},
	}
	res, err := a.Answer(context.Background(), "What is the capital of France?", bundle)
	require.NoError(t, err)
	assert.Equal(t, "Paris.", res.Text)
	assert.Equal(t, []string{"geo.md"}, res.Sources)

	require.Len(t, c.prompts, 1, "exactly one completion call per answer")
	prompt := c.prompts[0]
	ctxIdx := strings.Index(prompt, "France's capital is Paris.")
	qIdx := strings.LastIndex(prompt, "What is the capital of France?")
	require.GreaterOrEqual(t, ctxIdx, 0)
	require.GreaterOrEqual(t, qIdx, 0)
	// the question is repeated after the context to anchor attention
	assert.Greater(t, qIdx, ctxIdx)
	assert.Contains(t, prompt, "based only on the following context")
}

func TestAnswer_CompletionFailure(t *testing.T) {
	c := &stubCompleter{err: &domain.CompletionError{Err: errors.New("quota exceeded")}}
	a := New(c)

	_, err := a.Answer(context.Background(), "question", domain.ContextBundle{ContextText: "ctx"})
	var completionErr *domain.CompletionError
	require.ErrorAs(t, err, &completionErr)
	assert.Contains(t, completionErr.Error(), "quota exceeded")
	assert.Len(t, c.prompts, 1)
}
