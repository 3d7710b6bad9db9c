package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/gearscore/internal/affixdb"
	api "github.com/mind-engage/gearscore/internal/api/http"
	"github.com/mind-engage/gearscore/internal/config"
	"github.com/mind-engage/gearscore/internal/grading"
	"github.com/mind-engage/gearscore/internal/grading/ocr"
	"github.com/mind-engage/gearscore/internal/logger"
	"github.com/mind-engage/gearscore/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger.SetLevel(cfg.LogLevel)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		logger.Errorf("blob store: %v", err)
		os.Exit(1)
	}
	affixes, err := affixdb.Open(cfg.AffixDBPath)
	if err != nil {
		logger.Errorf("affix db: %v", err)
		os.Exit(1)
	}
	if cfg.GoogleAPIKey == "" {
		logger.Warnf("GOOGLE_API_KEY is not set; /ocr and /calculate/image will fail")
	}

	gem := ocr.NewGeminiClient(cfg.GoogleAPIKey, cfg.GeminiModel)
	gem.BaseURL = cfg.GeminiBaseURL
	gem.Timeout = cfg.GeminiTimeout
	gem.MaxRetries = cfg.GeminiMaxRetries

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Scorer:         grading.NewScorer(grading.WithPowerCap(cfg.PowerCapMin, cfg.PowerCapCeiling)),
		Extractor:      gem,
		Blobs:          bs,
		Affixes:        affixes,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("listening on %s (mode=%s, classes=%d, model=%s)",
		cfg.HTTPAddr, cfg.Mode, len(affixes.Snapshot()), cfg.GeminiModel)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("server: %v", err)
		os.Exit(1)
	}
}
