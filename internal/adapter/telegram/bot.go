package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"warehouse-assistant-bot/internal/config"
	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/chat"
	"warehouse-assistant-bot/internal/usecase/inventory"
)

const (
	queueSize = 16
	// idleTimeout retires a chat's worker. It outlasts the limiter refill
	// so forgetting the chat's limiter grants nothing extra.
	idleTimeout = 10 * time.Minute
)

type Bot struct {
	api       *tgbotapi.BotAPI
	cfg       config.Config
	chat      *chat.Service
	inventory *inventory.Service
	sessions  domain.SessionStore
	limiter   *chatLimiter
	log       *zap.Logger

	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message
	idle   time.Duration

	handle func(ctx context.Context, msg *tgbotapi.Message)
	reply  func(chatID int64, replyTo int, text string)
}

func NewBot(
	cfg config.Config,
	chatSvc *chat.Service,
	inventorySvc *inventory.Service,
	sessions domain.SessionStore,
	log *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:       api,
		cfg:       cfg,
		chat:      chatSvc,
		inventory: inventorySvc,
		sessions:  sessions,
		limiter:   newChatLimiter(cfg.RateLimitPerMinute),
		log:       log.With(zap.String("component", "telegram")),
		queues:    make(map[int64]chan *tgbotapi.Message),
		idle:      idleTimeout,
	}
	b.handle = b.handleMessage
	b.reply = b.sendText
	return b, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch queues msg on its chat's worker so each chat sees its turns
// strictly in arrival order while chats run independently. It never
// blocks the update loop.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.mu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = make(chan *tgbotapi.Message, queueSize)
		b.queues[chatID] = q
		go b.worker(ctx, chatID, q)
	}
	queued := true
	select {
	case q <- msg:
	default:
		queued = false
	}
	b.mu.Unlock()

	if !queued {
		b.log.Warn("chat queue full, dropping message", zap.Int64("chat_id", chatID))
		go b.reply(chatID, msg.MessageID, "still working on your previous questions, try again shortly")
	}
}

// worker serves one chat until it has been idle for b.idle.
func (b *Bot) worker(ctx context.Context, chatID int64, q chan *tgbotapi.Message) {
	timer := time.NewTimer(b.idle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			b.handle(ctx, msg)
			timer.Reset(b.idle)
		case <-timer.C:
			if b.retire(chatID, q) {
				return
			}
			timer.Reset(b.idle)
		}
	}
}

// retire removes the chat's queue unless a message slipped in meanwhile.
func (b *Bot) retire(chatID int64, q chan *tgbotapi.Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(q) > 0 {
		return false
	}
	delete(b.queues, chatID)
	b.limiter.Forget(chatID)
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !isAllowedUser(msg.From.ID, b.cfg) {
		b.sendText(msg.Chat.ID, msg.MessageID, "access denied")
		return
	}
	if !b.limiter.Allow(msg.Chat.ID) {
		b.sendText(msg.Chat.ID, msg.MessageID, "too many requests, slow down a little")
		return
	}

	sess := b.sessions.Session(msg.Chat.ID)

	switch {
	case msg.Document != nil:
		b.handleUpload(ctx, sess, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, sess, msg)
	default:
		b.handleQuestion(ctx, sess, msg)
	}
}

func (b *Bot) handleQuestion(ctx context.Context, sess *domain.Session, msg *tgbotapi.Message) {
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatTyping)

	turn, err := b.chat.Ask(ctx, sess, msg.Text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			b.sendText(msg.Chat.ID, msg.MessageID, "ask me something about your inventory or shipments")
			return
		}
		b.log.Error("turn failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		b.sendText(msg.Chat.ID, msg.MessageID, domain.ErrorAnswer)
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, FormatTurn(turn))
}

func (b *Bot) handleCommand(ctx context.Context, sess *domain.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.sendText(chatID, msg.MessageID, helpText(sess.Mode()))
	case "mode":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			b.sendText(chatID, msg.MessageID, FormatModes(sess.Mode()))
			return
		}
		mode, err := domain.ParseMode(arg)
		if err != nil {
			b.sendText(chatID, msg.MessageID, FormatModes(sess.Mode()))
			return
		}
		b.chat.SetMode(sess, mode)
		b.sendText(chatID, msg.MessageID, fmt.Sprintf("Ask %s Assistant...", mode))
	case "clear":
		b.chat.Clear(sess)
		b.sendText(chatID, msg.MessageID, "🧹 Chat cleared")
	case "refresh":
		if err := b.chat.Refresh(ctx, sess); err != nil {
			b.sendText(chatID, msg.MessageID, "could not refresh data: "+err.Error())
			return
		}
		b.sendText(chatID, msg.MessageID, "🔄 Data cache refreshed")
	case "log":
		b.sendText(chatID, msg.MessageID, FormatActivity(b.chat.Activity(sess)))
	case "lowstock":
		items, err := b.inventory.LowStock(ctx, sess)
		if err != nil {
			b.sendText(chatID, msg.MessageID, lowStockError(err))
			return
		}
		b.sendText(chatID, msg.MessageID, FormatLowStock(items))
	case "status":
		snap, loaded := b.inventory.Current(sess)
		b.sendText(chatID, msg.MessageID, FormatStatus(sess, snap, loaded))
	default:
		b.sendText(chatID, msg.MessageID, "unknown command, try /help")
	}
}

func (b *Bot) handleUpload(ctx context.Context, sess *domain.Session, msg *tgbotapi.Message) {
	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatUploadDocument)

	data, err := fetchDocument(ctx, b.api, msg.Document)
	if err != nil {
		b.log.Warn("could not fetch document", zap.String("file", msg.Document.FileName), zap.Error(err))
		b.sendText(msg.Chat.ID, msg.MessageID, "Failed to load file: "+err.Error())
		return
	}

	snap, err := b.inventory.Upload(ctx, sess, msg.Document.FileName, bytes.NewReader(data))
	if err != nil {
		b.sendText(msg.Chat.ID, msg.MessageID, "Failed to load file: "+err.Error())
		return
	}
	b.sendText(msg.Chat.ID, msg.MessageID, FormatUpload(snap))
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	const chunkSize = 4096

	chunks := splitText(text, chunkSize)
	for idx, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if idx == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			b.log.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func (b *Bot) sendChatAction(chatID int64, action string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		b.log.Debug("failed to send chat action", zap.Error(err))
	}
}

func isAllowedUser(userID int64, cfg config.Config) bool {
	for _, id := range cfg.AdminUserIDs {
		if id == userID {
			return true
		}
	}

	if len(cfg.AllowedUserIDs) == 0 {
		return true
	}

	for _, id := range cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func lowStockError(err error) string {
	switch {
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		return "no inventory loaded yet, send a CSV file first"
	case errors.Is(err, inventory.ErrNoQuantityColumn):
		return "the loaded inventory has no Quantity column"
	}
	return "could not check stock: " + err.Error()
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
