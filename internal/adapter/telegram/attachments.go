package telegram

import (
	"context"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// maxDocumentSize matches the Bot API download limit.
const maxDocumentSize = 20 << 20

func fetchDocument(ctx context.Context, bot *tgbotapi.BotAPI, doc *tgbotapi.Document) ([]byte, error) {
	if doc.FileSize > maxDocumentSize {
		return nil, errors.Errorf("file is larger than %d MB", maxDocumentSize>>20)
	}

	url, err := bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	if len(data) > maxDocumentSize {
		return nil, errors.Errorf("file is larger than %d MB", maxDocumentSize>>20)
	}
	return data, nil
}
