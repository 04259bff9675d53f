package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	TelegramToken  string `validate:"required"`
	AdminUserIDs   []int64
	AllowedUserIDs []int64

	LLMProvider         string `validate:"oneof=ollama openai"`
	Model               string `validate:"required"`
	OllamaURL           string `validate:"omitempty,url"`
	OpenAIKey           string `validate:"required_if=LLMProvider openai"`
	OpenAIBaseURL       string `validate:"omitempty,url"`
	MaxCompletionTokens int    `validate:"gte=0"`

	RetrievalTopK      int `validate:"gte=1"`
	ActivityTail       int `validate:"gte=1"`
	SessionTTL         time.Duration
	RateLimitPerMinute int `validate:"gte=0"`
	InventoryFile      string

	Environment string `validate:"oneof=development production"`
	LogFile     string `validate:"required"`
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load reads path as a .env file (existing environment wins) and builds
// a validated Config from the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("could not read %s: %v", path, err)
	}

	cfg := Config{
		TelegramToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		LLMProvider:         strings.ToLower(getenvDefault("LLM_PROVIDER", "ollama")),
		Model:               getenvDefault("LLM_MODEL", "gemma3:latest"),
		OllamaURL:           getenvDefault("OLLAMA_URL", "http://localhost:11434"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		MaxCompletionTokens: getenvIntDefault("MAX_TOKENS", 1024),
		RetrievalTopK:       getenvIntDefault("RETRIEVAL_TOP_K", 5),
		ActivityTail:        getenvIntDefault("ACTIVITY_TAIL", 10),
		SessionTTL:          time.Duration(getenvIntDefault("SESSION_TTL_MINUTES", 240)) * time.Minute,
		RateLimitPerMinute:  getenvIntDefault("RATE_LIMIT_PER_MINUTE", 20),
		InventoryFile:       os.Getenv("INVENTORY_FILE"),
		Environment:         strings.ToLower(getenvDefault("APP_ENV", EnvDevelopment)),
		LogFile:             getenvDefault("LOG_FILE", "logs/bot.log"),
	}

	cfg.AdminUserIDs = parseIDs(os.Getenv("ADMIN_USER_IDS"))
	cfg.AllowedUserIDs = parseIDs(os.Getenv("ALLOWED_TELEGRAM_USER_IDS"))

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Printf("skipping user id %q: %v", p, err)
			continue
		}
		ids = append(ids, v)
	}
	return ids
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
