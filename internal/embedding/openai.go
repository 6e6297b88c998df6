package embedding

import (
	"context"
	"errors"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"ragdesk/internal/domain"
)

// OpenAI embeds text through an OpenAI-compatible embeddings endpoint.
// Vectors are L2-normalized so that dot product equals cosine
// similarity.
type OpenAI struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dim       int
	batchSize int
	hasKey    bool
}

// Config configures the OpenAI embedder.
type Config struct {
	APIKeyEnv string
	BaseURL   string
	Model     string
	BatchSize int
}

// NewOpenAI builds the embedder. A missing API key is not an error
// here; it surfaces as EmbeddingUnavailable on the first call, so the
// rest of the pipeline can still be assembled and inspected.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	key := os.Getenv(cfg.APIKeyEnv)
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     openai.EmbeddingModel(cfg.Model),
		dim:       modelDimension(cfg.Model),
		batchSize: cfg.BatchSize,
		hasKey:    key != "",
	}
}

func modelDimension(model string) int {
	switch model {
	case string(openai.LargeEmbedding3):
		return 3072
	case string(openai.AdaEmbeddingV2), string(openai.SmallEmbedding3):
		return 1536
	}
	return 0
}

// Dimension returns the vector dimension for the configured model, or
// 0 until the first successful embedding for unknown models.
func (e *OpenAI) Dimension() int { return e.dim }

// Embed returns the embedding vector for a single text.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in request batches, preserving input order.
func (e *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.hasKey {
		return nil, &domain.EmbeddingUnavailableError{Err: errors.New("API key not set")}
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: e.model,
			Input: texts[start:end],
		})
		if err != nil {
			return nil, &domain.EmbeddingUnavailableError{Err: err}
		}
		if len(resp.Data) != end-start {
			return nil, &domain.EmbeddingUnavailableError{Err: errors.New("embedding count mismatch")}
		}
		for _, d := range resp.Data {
			v := make([]float32, len(d.Embedding))
			copy(v, d.Embedding)
			l2normalize(v)
			if e.dim == 0 {
				e.dim = len(v)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
