package llm

import (
	"context"
	"errors"

	openaiapi "github.com/sashabaranov/go-openai"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/answer"
)

var ErrEmptyResponse = errors.New("model returned empty response")

// OpenAIClient sends the envelope as a single user message to an
// OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	api   *openaiapi.Client
	model string
}

func NewOpenAIClient(token, baseURL, model string) *OpenAIClient {
	cfg := openaiapi.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		api:   openaiapi.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req answer.CompletionRequest) (string, error) {
	apiReq := openaiapi.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: req.MaxCompletionTokens,
		Stream:              false,
		Messages: []openaiapi.ChatCompletionMessage{{
			Role:    string(domain.RoleUser),
			Content: req.Prompt,
		}},
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
