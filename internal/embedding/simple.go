package embedding

import "context"

// Simple is a deterministic, offline embedder based on character
// hashing. It needs no network or credentials, which makes it useful
// for tests and for trying the pipeline without an API key. Retrieval
// quality is poor compared to a real embedding model.
type Simple struct {
	dim int
}

// NewSimple returns a Simple embedder with the given dimension
// (64 when non-positive).
func NewSimple(dimension int) *Simple {
	if dimension <= 0 {
		dimension = 64
	}
	return &Simple{dim: dimension}
}

func (e *Simple) Dimension() int { return e.dim }

func (e *Simple) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for i, r := range text {
		vec[i%e.dim] += float32(r) / 1000.0
	}
	l2normalize(vec)
	return vec, nil
}

func (e *Simple) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
