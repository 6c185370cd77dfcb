package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agribazaar/api/internal/app"
	"agribazaar/api/internal/config"
	"agribazaar/api/internal/httpserver"
	"agribazaar/api/internal/imagecodec"
	"agribazaar/api/internal/telegram"
	"agribazaar/api/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.TelegramBotToken == "" {
		logger.Fatal("missing required env TELEGRAM_BOT_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres (опционально) ---
	db, repo, err := app.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("diagnosis cache", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	manager, err := app.BuildManager(cfg, logger, repo)
	if err != nil {
		logger.Fatal("diagnosis engines", zap.Error(err))
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false
	logger.Info("telegram authorized", zap.String("bot", bot.Self.UserName))

	r := telegram.NewRouter(bot, manager, imagecodec.Codec{MaxBytes: cfg.ImageMaxBytes}, logger)

	mux := httpserver.NewMux(dbCheck(db))
	srv := httpserver.New("0.0.0.0:"+cfg.Port, mux)

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		err = runWebhookMode(ctx, bot, r, mux, srv, webhookURL, logger)
	} else {
		err = runPollingMode(ctx, bot, r, srv, logger)
	}
	r.Wait()
	if err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("bot stopped")
}

func dbCheck(db *sql.DB) httpserver.HealthCheck {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		return nil
	}
}

// ---------------- Modes -----------------

func runWebhookMode(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, mux *http.ServeMux, srv *http.Server, baseURL string, log *zap.Logger) error {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("webhook update", zap.Error(err))
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		r.HandleUpdate(ctx, *upd)
		w.WriteHeader(http.StatusOK)
	})

	log.Info("webhook mode", zap.String("addr", srv.Addr), zap.String("path", path))
	return httpserver.Run(ctx, srv, log)
}

func runPollingMode(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, srv *http.Server, log *zap.Logger) error {
	// HTTP нужен только для healthz
	errc := make(chan error, 1)
	go func() { errc <- httpserver.Run(ctx, srv, log) }()

	// вебхук мешает getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("delete webhook", zap.Error(err))
	}

	log.Info("polling mode")
	runPolling(ctx, bot, log, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
	return <-errc
}

// лёгкий хэш для пути вебхука
func shortHash(s string) string {
	return util.SHA256Hex([]byte(s))[:16]
}
