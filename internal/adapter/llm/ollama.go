package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"warehouse-assistant-bot/internal/usecase/answer"
)

// OllamaClient runs the envelope as a single prompt on a local Ollama server.
type OllamaClient struct {
	model llms.Model
}

func NewOllamaClient(serverURL, model string) (*OllamaClient, error) {
	m, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create ollama client")
	}
	return &OllamaClient{model: m}, nil
}

func (c *OllamaClient) Complete(ctx context.Context, req answer.CompletionRequest) (string, error) {
	opts := []llms.CallOption{}
	if req.MaxCompletionTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxCompletionTokens))
	}
	return llms.GenerateFromSinglePrompt(ctx, c.model, req.Prompt, opts...)
}
