package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string // review-server
	BotPort string // health/webhook server of the bot

	UploadBaseURL string
	UploadPath    string

	TelegramBotToken string
	WebhookURL       string // пусто — long polling
	HistoryMaxAge    time.Duration

	Reviewer     string // "skills" | "gemini"
	GeminiAPIKey string
	GeminiModel  string
	MaxUploadMB  int64
}

// LoadDotEnv подтягивает .env из рабочей директории, если он есть.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}
}

func MustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("config: bad %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: bad %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

// Load reads everything optional. Binaries call MustEnv for what they require.
func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8000"),
		BotPort: getEnv("BOT_PORT", "8080"),

		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "http://localhost:8000"),
		UploadPath:    getEnv("UPLOAD_PATH", "/upload"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		HistoryMaxAge:    getDuration("HISTORY_MAX_AGE", 720*time.Hour),

		Reviewer:     strings.ToLower(getEnv("REVIEWER", "skills")),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxUploadMB:  getInt("MAX_UPLOAD_MB", 10),
	}
}
