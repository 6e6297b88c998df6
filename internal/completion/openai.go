package completion

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"ragdesk/internal/domain"
)

// OpenAI generates completions through an OpenAI-compatible chat
// endpoint. Failures surface as CompletionError with the underlying
// message carried verbatim.
type OpenAI struct {
	client *openai.Client
	model  string
	hasKey bool
}

// Config configures the completion client.
type Config struct {
	APIKeyEnv string
	BaseURL   string
	Model     string
}

func NewOpenAI(cfg Config) *OpenAI {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	key := os.Getenv(cfg.APIKeyEnv)
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		hasKey: key != "",
	}
}

func (c *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", &domain.CompletionError{Err: errors.New("API key not set")}
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &domain.CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.CompletionError{Err: errors.New("no completion returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
