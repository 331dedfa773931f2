package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig همه تنظیمات برنامه که از محیط خوانده می‌شوند
type AppConfig struct {
	Env  string
	Port string

	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AMQPURL       string
	AMQPQueue     string

	JWTSecret string

	LLMProvider  string
	GrokAPIKey   string
	GrokModel    string
	GrokBaseURL  string
	ClaudeAPIKey string
	ClaudeModel  string

	XClientID     string
	XClientSecret string
	XAPIBaseURL   string

	FreeDailyLimit  int
	RateLimitWindow time.Duration
	RateLimitMax    int

	DispatchSchedule    string
	DispatchBatch       int
	DispatchConcurrency int
	DispatchTimeout     time.Duration
}

// Load بارگذاری .env (در صورت وجود) و خواندن متغیرهای محیطی
func Load() (AppConfig, error) {
	// نبود فایل .env خطا نیست
	_ = godotenv.Load()

	cfg := AppConfig{
		Env:  envStr("APP_ENV", "development"),
		Port: envStr("APP_PORT", "8080"),

		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		AMQPURL:       os.Getenv("AMQP_URL"),
		AMQPQueue:     envStr("AMQP_QUEUE", "post.lifecycle"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LLMProvider:  strings.ToLower(envStr("LLM_PROVIDER", "grok")),
		GrokAPIKey:   os.Getenv("GROK_API_KEY"),
		GrokModel:    envStr("GROK_MODEL", "grok-3-mini"),
		GrokBaseURL:  os.Getenv("GROK_BASE_URL"),
		ClaudeAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:  envStr("CLAUDE_MODEL", "claude-3-5-haiku-latest"),

		XClientID:     os.Getenv("X_CLIENT_ID"),
		XClientSecret: os.Getenv("X_CLIENT_SECRET"),
		XAPIBaseURL:   os.Getenv("X_API_BASE_URL"),

		FreeDailyLimit:  envInt("FREE_DAILY_LIMIT", 5),
		RateLimitWindow: envDur("RATE_LIMIT_WINDOW", 24*time.Hour),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 10),

		DispatchSchedule:    envStr("DISPATCH_SCHEDULE", "@every 30s"),
		DispatchBatch:       envInt("DISPATCH_BATCH", 100),
		DispatchConcurrency: envInt("DISPATCH_CONCURRENCY", 4),
		DispatchTimeout:     envDur("DISPATCH_TIMEOUT", 2*time.Minute),
	}
	return cfg, cfg.Validate()
}

func (c AppConfig) Validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.LLMProvider != "grok" && c.LLMProvider != "claude" {
		return errors.New("LLM_PROVIDER must be grok or claude")
	}
	if c.FreeDailyLimit < 0 {
		return errors.New("FREE_DAILY_LIMIT must not be negative")
	}
	return nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
