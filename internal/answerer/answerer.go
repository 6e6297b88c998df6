package answerer

import (
	"context"
	"fmt"

	"ragdesk/internal/domain"
)

// promptTemplate instructs the model to answer strictly from the
// supplied context. The question is repeated after the context to
// anchor attention.
const promptTemplate = `Answer the question based only on the following context:

%s

---

Answer the question based on the above context: %s`

// Answerer formats the prompt from a context bundle and invokes the
// completion capability exactly once per call. Retries, if any, belong
// to the completion client.
type Answerer struct {
	completer domain.Completer
}

func New(completer domain.Completer) *Answerer {
	return &Answerer{completer: completer}
}

// Answer generates an answer conditioned on the bundle and returns it
// together with the bundle's sources. A completion failure propagates;
// no answer is fabricated.
func (a *Answerer) Answer(ctx context.Context, question string, bundle domain.ContextBundle) (domain.AnswerResult, error) {
	prompt := fmt.Sprintf(promptTemplate, bundle.ContextText, question)
	text, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{Text: text, Sources: bundle.Sources}, nil
}
