package llm

import (
	"github.com/pkg/errors"

	"warehouse-assistant-bot/internal/config"
	"warehouse-assistant-bot/internal/usecase/answer"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// New builds the model client selected by cfg.LLMProvider.
func New(cfg config.Config) (answer.Client, error) {
	switch cfg.LLMProvider {
	case ProviderOllama:
		client, err := NewOllamaClient(cfg.OllamaURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.New("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, errors.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
