package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/andikarip/telegram-saver-bot/internal/bot"
	"github.com/andikarip/telegram-saver-bot/internal/deliver"
	"github.com/andikarip/telegram-saver-bot/internal/descstore"
	"github.com/andikarip/telegram-saver-bot/internal/fetch"
	"github.com/andikarip/telegram-saver-bot/internal/observability"
	"github.com/andikarip/telegram-saver-bot/internal/platform/config"
	"github.com/andikarip/telegram-saver-bot/internal/rehost"
	"github.com/andikarip/telegram-saver-bot/internal/telegram"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create telegram api client")
	}

	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	client := telegram.NewClient(api, &logger)
	store := descstore.New()

	uploader := rehost.NewUploader(rehost.UploaderConfig{
		Enabled:  cfg.RehostEnabled,
		Endpoint: cfg.RehostEndpoint,
		Timeout:  cfg.RehostTimeout,
		MaxBytes: cfg.RehostMaxBytes,
		RPS:      cfg.RehostRPS,
	}, &logger)

	shortener := rehost.NewShortener(rehost.ShortenerConfig{
		Enabled:  cfg.ShortenerEnabled,
		Endpoint: cfg.ShortenerEndpoint,
		Timeout:  cfg.ShortenerTimeout,
	}, &logger)

	fetcher := fetch.New(cfg, store, uploader, shortener, &logger)
	engine := deliver.New(client, cfg.ButtonColumns, cfg.MaxAlbumButtons, &logger)
	handler := bot.New(cfg, client, fetcher, engine, store, &logger)

	health := observability.NewServer(cfg.HealthPort, &logger)

	go func() {
		if err := health.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runWebhookServer(ctx, cfg.WebhookPort, handler.Handler(), &logger); err != nil {
		logger.Fatal().Err(err).Msg("webhook server error")
	}

	logger.Info().Msg("application stopped")
}

func runWebhookServer(ctx context.Context, port int, handler http.Handler, logger *zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/api/webhook", handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("Webhook server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
