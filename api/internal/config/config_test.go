package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "BOT_PORT", "UPLOAD_BASE_URL", "UPLOAD_PATH", "REVIEWER", "GEMINI_MODEL", "MAX_UPLOAD_MB", "HISTORY_MAX_AGE"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "8080", cfg.BotPort)
	assert.NotEqual(t, cfg.Port, cfg.BotPort)
	assert.Equal(t, "http://localhost:8000", cfg.UploadBaseURL)
	assert.Equal(t, "/upload", cfg.UploadPath)
	assert.Equal(t, "skills", cfg.Reviewer)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, 720*time.Hour, cfg.HistoryMaxAge)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UPLOAD_BASE_URL", "https://reviews.example.com")
	t.Setenv("REVIEWER", " Gemini ")
	t.Setenv("MAX_UPLOAD_MB", "25")
	t.Setenv("HISTORY_MAX_AGE", "48h")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("BOT_PORT", "9090")
	cfg := Load()

	assert.Equal(t, "https://reviews.example.com", cfg.UploadBaseURL)
	assert.Equal(t, "gemini", cfg.Reviewer)
	assert.Equal(t, int64(25), cfg.MaxUploadMB)
	assert.Equal(t, 48*time.Hour, cfg.HistoryMaxAge)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL)
	assert.Equal(t, "9090", cfg.BotPort)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "lots")
	t.Setenv("HISTORY_MAX_AGE", "-1h")
	cfg := Load()

	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, 720*time.Hour, cfg.HistoryMaxAge)
}
