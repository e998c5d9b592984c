package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/glotbridge/glotbridge/internal/api"
	"github.com/glotbridge/glotbridge/internal/config"
	"github.com/glotbridge/glotbridge/internal/convstate"
	"github.com/glotbridge/glotbridge/internal/dedup"
	"github.com/glotbridge/glotbridge/internal/directline"
	"github.com/glotbridge/glotbridge/internal/events"
	"github.com/glotbridge/glotbridge/internal/relay"
	"github.com/glotbridge/glotbridge/internal/settings"
	"github.com/glotbridge/glotbridge/internal/telegram"
)

func main() {
	// A .env file is a local-dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("glotbridge starting", "port", cfg.Port)

	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_API_TOKEN is required")
		os.Exit(1)
	}
	if cfg.DirectLineSecret == "" {
		slog.Error("DIRECT_LINE_SECRET is required")
		os.Exit(1)
	}

	// Settings persistence: Postgres when DATABASE_URL is set, SQLite
	// otherwise.
	store, err := openSettings(cfg)
	if err != nil {
		slog.Error("failed to open settings store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Events (optional — the relay works fine without a broker).
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("failed to connect to NATS, events disabled", "error", err)
		} else {
			defer publisher.Close()
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	agent := directline.NewClient(cfg.DirectLineBase, cfg.DirectLineSecret, slog.Default())
	sender := telegram.NewSender(cfg.TelegramAPIBase, cfg.TelegramToken, slog.Default())

	orch := relay.New(
		convstate.NewStore(),
		dedup.New(cfg.DedupCapacity),
		store,
		agent,
		sender,
		publisher,
		relay.Options{
			ResponseDelay:   cfg.ResponseDelay,
			WatcherTimeout:  cfg.WatcherTimeout,
			WatcherInterval: cfg.WatcherInterval,
		},
		slog.Default(),
	)

	srv := api.NewServer(cfg.Port, orch, store, cfg.EnableGroupChat, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	publisher.Publish(events.SubjectStarted, map[string]any{
		"instance":  uuid.NewString(),
		"port":      cfg.Port,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	slog.Info("glotbridge ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	orch.Close()
	slog.Info("glotbridge stopped")
}

func openSettings(cfg config.Config) (settings.Store, error) {
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := settings.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("settings store ready", "backend", "postgres")
		return store, nil
	}

	store, err := settings.NewSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	slog.Info("settings store ready", "backend", "sqlite", "path", cfg.SQLitePath)
	return store, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
