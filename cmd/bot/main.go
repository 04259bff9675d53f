package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"warehouse-assistant-bot/internal/adapter/llm"
	"warehouse-assistant-bot/internal/adapter/memory"
	"warehouse-assistant-bot/internal/adapter/recordstore"
	"warehouse-assistant-bot/internal/adapter/telegram"
	"warehouse-assistant-bot/internal/config"
	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/observability"
	"warehouse-assistant-bot/internal/usecase/answer"
	"warehouse-assistant-bot/internal/usecase/chat"
	"warehouse-assistant-bot/internal/usecase/confidence"
	"warehouse-assistant-bot/internal/usecase/inventory"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg.LogFile, cfg.IsProduction())
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := recordstore.Open(ctx, recordstore.MemoryDSN, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer records.Close()

	inventorySvc := inventory.NewService(records, logger)
	if cfg.InventoryFile != "" {
		preloadInventory(ctx, logger, inventorySvc, cfg.InventoryFile)
	}

	factory := func(ctx context.Context) (chat.Services, error) {
		client, err := llm.New(cfg)
		if err != nil {
			return chat.Services{}, err
		}
		return chat.Services{
			Retriever: records.Retriever(cfg.RetrievalTopK),
			Composer:  answer.NewComposer(client, cfg.MaxCompletionTokens, logger),
		}, nil
	}

	chatSvc, err := chat.NewService(ctx, factory, confidence.NewScorer(nil),
		chat.WithActivityTail(cfg.ActivityTail),
		chat.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to init answer pipeline", zap.Error(err))
	}

	sessions := memory.NewStore(cfg.SessionTTL)
	sessions.OnEvicted(func(sess *domain.Session) {
		if err := inventorySvc.Release(context.Background(), sess); err != nil {
			logger.Warn("could not release session snapshot", zap.String("session_id", sess.ID), zap.Error(err))
		}
	})

	bot, err := telegram.NewBot(cfg, chatSvc, inventorySvc, sessions, logger)
	if err != nil {
		logger.Fatal("failed to init telegram bot", zap.Error(err))
	}

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("shutdown", zap.Error(err))
			return
		}
		logger.Fatal("bot stopped with error", zap.Error(err))
	}
}

// preloadInventory loads a CSV at startup as the snapshot shared by every
// chat that has not uploaded its own.
func preloadInventory(ctx context.Context, logger *zap.Logger, svc *inventory.Service, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("could not open inventory file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := svc.Preload(ctx, filepath.Base(path), f); err != nil {
		logger.Warn("could not preload inventory", zap.String("path", path), zap.Error(err))
	}
}
