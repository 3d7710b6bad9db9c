package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "GEMINI_MODEL", "GEMINI_TIMEOUT", "POWER_CAP_MIN", "CORS_ORIGINS_OFFLINE"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 800, cfg.PowerCapMin)
	assert.Equal(t, 75, cfg.PowerCapCeiling)
	assert.Contains(t, cfg.CORSOrigins(), "http://localhost:5173")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("POWER_CAP_MIN", "750")
	t.Setenv("MAX_UPLOAD_MB", "oops")

	cfg := FromEnv()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
	assert.Equal(t, 5*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 750, cfg.PowerCapMin)
	assert.Equal(t, 10, cfg.MaxUploadMB)
}

func TestRequestTimeoutCoversRetries(t *testing.T) {
	cfg := Config{GeminiTimeout: 60 * time.Second, GeminiMaxRetries: 2}
	assert.Equal(t, 3*60*time.Second+2*8*time.Second+30*time.Second, cfg.RequestTimeout())
	assert.Greater(t, cfg.RequestTimeout(), time.Duration(cfg.GeminiMaxRetries+1)*cfg.GeminiTimeout)

	cfg.GeminiMaxRetries = -1
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout())
}
