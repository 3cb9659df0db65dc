package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"resume-review/api/internal/config"
	"resume-review/api/internal/httpserver"
	"resume-review/api/internal/review"
	"resume-review/api/internal/review/gemini"
	"resume-review/api/internal/review/skills"
	"resume-review/api/internal/upload"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	var rev review.Reviewer
	switch cfg.Reviewer {
	case "gemini":
		rev = gemini.New(config.MustEnv("GEMINI_API_KEY"), cfg.GeminiModel)
	case "skills":
		rev = skills.New()
	default:
		log.Fatalf("unknown REVIEWER %q (want skills or gemini)", cfg.Reviewer)
	}

	h := review.NewHandler(rev, cfg.MaxUploadMB<<20)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(nil))
	mux.HandleFunc(upload.DefaultPath, h.Upload)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("review-server: reviewer=%s max_upload=%dMB", rev.Name(), cfg.MaxUploadMB)
	if err := httpserver.Serve(ctx, ":"+cfg.Port, mux); err != nil {
		log.Fatal(err)
	}
}
