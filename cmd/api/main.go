package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"photostudio/internal/editing"
	"photostudio/internal/http/handlers"
	httpapi "photostudio/internal/http/httpapi"
	"photostudio/internal/infra"
	"photostudio/internal/providers/gemini"
	"photostudio/internal/session"
	"photostudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.NeedsAPIKey() {
		logger.Warn().Msg("GEMINI_API_KEY is not set; every edit will fail with a configuration error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, err := gemini.New(ctx, cfg.GeminiBackend, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: cfg.GeminiTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini backend")
	}

	gateway := editing.NewGateway(service, editing.Options{
		Limiter: editing.LimiterPerMinute(cfg.GeminiRatePerMin),
		Logger:  &logger,
	})
	ctrl := session.NewController(gateway, session.WithLogger(&logger))

	store, err := storage.NewFileStore(cfg.ExportPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare export storage")
	}

	app := handlers.NewApp(ctrl, store, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         &logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		EditsPerMinute: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("backend", cfg.GeminiBackend).
			Str("model", cfg.GeminiModel).
			Msgf("API listening on %s", server.Addr())
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
