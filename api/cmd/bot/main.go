package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"resume-review/api/internal/config"
	"resume-review/api/internal/httpserver"
	"resume-review/api/internal/store"
	"resume-review/api/internal/telegram"
	"resume-review/api/internal/upload"
	"resume-review/api/internal/util"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	token := config.MustEnv("TELEGRAM_BOT_TOKEN")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres (optional) ---
	var (
		db   *sql.DB
		repo telegram.HistoryRepo
	)
	if dsn := store.ResolveDSN(); dsn != "" {
		var err error
		db, err = store.Open(ctx, dsn)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		rr := store.NewReviewRepo(db)
		if err := rr.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		log.Printf("db connected: %s", store.SafeDSNSummary(dsn))
		repo = rr
		go purgeLoop(ctx, rr, cfg.HistoryMaxAge)
	} else {
		log.Printf("DATABASE_URL / POSTGRES_PASSWORD not set: review history is off")
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	up := upload.NewClient(cfg.UploadBaseURL, upload.WithPath(cfg.UploadPath))
	r := telegram.NewRouter(bot, up, repo)
	log.Printf("bot @%s uploads to %s", bot.Self.UserName, up.Endpoint())

	// ListenForWebhook регистрирует обработчик на DefaultServeMux, поэтому healthz туда же
	var ping func(context.Context) error
	if db != nil {
		ping = db.PingContext
	}
	http.HandleFunc("/healthz", httpserver.Healthz(ping))

	addr := "0.0.0.0:" + cfg.BotPort
	go func() {
		if err := httpserver.Serve(ctx, addr, http.DefaultServeMux); err != nil {
			log.Fatal(err)
		}
	}()

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		runWebhook(ctx, bot, r, webhookURL)
	} else {
		telegram.RunPolling(ctx, bot, r.HandleUpdate)
	}

	// дожидаемся загрузок, которые уже в пути
	r.Wait()
	log.Printf("bot stopped")
}

func runWebhook(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	// секретный путь вебхука
	path := "/webhook/" + util.ShortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := bot.ListenForWebhook(path)
	log.Printf("webhook listening on %s", path)
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				log.Printf("webhook updates channel closed")
				return
			}
			r.HandleUpdate(upd)
		}
	}
}

// purgeLoop drops history rows older than maxAge once an hour.
func purgeLoop(ctx context.Context, repo *store.ReviewRepo, maxAge time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := repo.PurgeOlderThan(pctx, maxAge)
		cancel()
		switch {
		case err != nil:
			log.Printf("history purge: %v", err)
		case n > 0:
			log.Printf("history purge: %d rows older than %s", n, maxAge)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
