package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"ai_todo/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppVersion    string
	DatabaseURL   string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// Chat interpreter webhooks
	ChatWebhookURL     string
	ChatEnhanceURL     string
	ChatWebhookTimeout time.Duration

	// Redis (optional, rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	ChatRateLimit  int
	ChatRateWindow time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppVersion:    getEnv("APP_VERSION", "dev"),
		DatabaseURL:   dbURL,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		ChatWebhookURL:     strings.TrimSpace(os.Getenv("CHAT_WEBHOOK_URL")),
		ChatEnhanceURL:     strings.TrimSpace(os.Getenv("CHAT_ENHANCE_URL")),
		ChatWebhookTimeout: getSeconds("CHAT_WEBHOOK_TIMEOUT_SECONDS", 30*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		APIRateLimit:   getInt("API_RATE_LIMIT", 120),
		APIRateWindow:  getSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		ChatRateLimit:  getInt("CHAT_RATE_LIMIT", 20),
		ChatRateWindow: getSeconds("CHAT_RATE_WINDOW_SECONDS", time.Minute),
	}

	if cfg.ChatWebhookURL == "" {
		// чат будет отвечать заглушкой, но сервер поднимется
		logger.Warn("CHAT_WEBHOOK_URL is not set, chat relay will reply with a fallback")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getInt ignores malformed and non-positive values, except for REDIS_DB where 0 is valid.
func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || (n == 0 && key != "REDIS_DB") {
		return def
	}
	return n
}

func getSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
