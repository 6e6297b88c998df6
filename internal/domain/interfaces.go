package domain

import "context"

// Loader converts raw file bytes into one or more RawUnits.
type Loader interface {
	Load(data []byte, name string) ([]RawUnit, error)
}

// Embedder converts free text into a fixed-dimension numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the vector dimension, or 0 when it is only
	// known after the first embedding call.
	Dimension() int
}

// Completer generates a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
