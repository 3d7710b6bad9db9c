package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogLevel string

	BlobBasePath string // uploaded screenshots
	AffixDBPath  string // reference affix list, JSON
	MaxUploadMB  int

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Gemini extraction backend
	GoogleAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	GeminiTimeout    time.Duration
	GeminiMaxRetries int

	PowerCapMin     int
	PowerCapCeiling int
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8000"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		BlobBasePath:       envOr("BLOB_BASE_PATH", "./data/uploads"),
		AffixDBPath:        envOr("AFFIX_DB_PATH", "./data/affixes.json"),
		MaxUploadMB:        envInt("MAX_UPLOAD_MB", 10),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "*"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"),

		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:    envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout:    envDuration("GEMINI_TIMEOUT", 60*time.Second),
		GeminiMaxRetries: envInt("GEMINI_MAX_RETRIES", 2),

		PowerCapMin:     envInt("POWER_CAP_MIN", 800),
		PowerCapCeiling: envInt("POWER_CAP_CEILING", 75),
	}
}

// CORSOrigins returns the allow list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// maxRetryBackoff matches the per-retry delay ceiling of the Gemini client.
const maxRetryBackoff = 8 * time.Second

// RequestTimeout bounds one HTTP request. It covers every extraction attempt
// and the backoff between them, plus headroom for upload and scoring.
func (c Config) RequestTimeout() time.Duration {
	retries := time.Duration(max(c.GeminiMaxRetries, 0))
	return (retries+1)*c.GeminiTimeout + retries*maxRetryBackoff + 30*time.Second
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}
func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
