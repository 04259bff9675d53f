package llm

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"warehouse-assistant-bot/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    any
		wantErr bool
	}{
		{
			name: "ollama",
			cfg:  config.Config{LLMProvider: ProviderOllama, Model: "gemma3:latest", OllamaURL: "http://localhost:11434"},
			want: &OllamaClient{},
		},
		{
			name: "openai",
			cfg:  config.Config{LLMProvider: ProviderOpenAI, Model: "gpt-4o-mini", OpenAIKey: "sk-test"},
			want: &OpenAIClient{},
		},
		{
			name: "openai compatible base url",
			cfg: config.Config{LLMProvider: ProviderOpenAI, Model: "deepseek-chat", OpenAIKey: "sk-test",
				OpenAIBaseURL: "https://api.deepseek.com"},
			want: &OpenAIClient{},
		},
		{
			name:    "openai without key",
			cfg:     config.Config{LLMProvider: ProviderOpenAI, Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "unsupported provider",
			cfg:     config.Config{LLMProvider: "bard"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Implements(t, (*interface{ StackTrace() errors.StackTrace })(nil), err)
				assert.Nil(t, client)
				return
			}
			assert.NoError(t, err)
			assert.IsType(t, tt.want, client)
		})
	}
}
