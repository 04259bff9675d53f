package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"warehouse-assistant-bot/internal/domain"
)

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Prompt              string
	MaxCompletionTokens int
}

// Result carries the answer text. Recovered marks a model failure that
// was replaced by the error sentinel; Err keeps the cause for logging.
type Result struct {
	Text      string
	Recovered bool
	Err       error
}

type Composer struct {
	client    Client
	maxTokens int
	log       *zap.Logger
}

func NewComposer(client Client, maxTokens int, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{
		client:    client,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Compose asks the model to answer question from records only. It never
// fails: model errors become the error sentinel and blank output becomes
// the data-not-available sentinel.
func (c *Composer) Compose(ctx context.Context, mode domain.Mode, records []domain.Record, question string) Result {
	resp, err := c.client.Complete(ctx, CompletionRequest{
		Prompt:              BuildEnvelope(mode, records, question),
		MaxCompletionTokens: c.maxTokens,
	})
	if err != nil {
		c.log.Warn("model invocation failed", zap.Error(err), zap.String("mode", string(mode)))
		return Result{Text: domain.ErrorAnswer, Recovered: true, Err: err}
	}

	text := strings.TrimSpace(resp)
	if text == "" {
		text = domain.DataNotAvailable
	}
	return Result{Text: text}
}
