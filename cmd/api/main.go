package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appanalysis "github.com/bryanwahyu/sentinel-ai/internal/application/analysis"
	"github.com/bryanwahyu/sentinel-ai/internal/config"
	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/ai/openai"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/httpserver"
	"github.com/bryanwahyu/sentinel-ai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "path", path, "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	// the service starts without a credential so it can be deployed before
	// the key is provisioned; analyze endpoints answer 500 until then
	var model domain.Model
	if cfg.ModelConfigured() {
		model = openai.NewClient(cfg.Model.APIKey, openai.Options{
			BaseURL:     cfg.Model.BaseURL,
			Model:       cfg.Model.Name,
			Temperature: &cfg.Model.Temperature,
			Timeout:     cfg.Model.Timeout,
		})
	} else {
		logger.Warn("GEMINI_API_KEY environment variable not set; analysis endpoints are disabled")
	}

	svc := appanalysis.NewService(model, logger)
	handler := httpserver.NewRouter(svc, middleware.NewMetrics(), logger, httpserver.Options{
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "model", cfg.Model.Name, "model_configured", model != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
