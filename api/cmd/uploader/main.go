// Command uploader sends one resume to the review endpoint and prints the detailed review.
//
//	uploader [-url http://localhost:8000] [-path /upload] [FILE]
//
// Without FILE it sends an empty "file" part, the same as submitting the form with nothing selected.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"resume-review/api/internal/config"
	"resume-review/api/internal/store"
	"resume-review/api/internal/upload"
)

func main() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code: 0 ok, 1 upload failed, 2 bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", cfg.UploadBaseURL, "review service base URL")
	path := fs.String("path", cfg.UploadPath, "upload endpoint path")
	timeout := fs.Duration("timeout", 0, "give up after this long (0 = wait forever)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: uploader [flags] [FILE]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	logger := log.New(stderr, "uploader: ", 0)
	opts := []upload.HandlerOption{upload.WithLogger(logger), upload.WithSource("cli")}
	if dsn := store.ResolveDSN(); dsn != "" {
		repo, err := openHistory(ctx, dsn)
		if err != nil {
			logger.Printf("history disabled: %v", err)
		} else {
			defer repo.DB.Close()
			opts = append(opts, upload.WithHistory(repo))
		}
	}

	var f *upload.File
	if fs.NArg() == 1 {
		name := fs.Arg(0)
		fh, err := os.Open(name)
		if err != nil {
			logger.Print(err)
			return 1
		}
		defer fh.Close()
		f = &upload.File{Name: filepath.Base(name), Body: fh}
	}

	c := upload.NewClient(*baseURL, upload.WithPath(*path))
	h := upload.NewHandler(c, upload.NewWriterDisplay(stdout), opts...)

	rv, err := h.Handle(ctx, f)
	if err != nil {
		if errors.Is(err, upload.ErrMalformedResponse) {
			logger.Printf("endpoint %s answered with something that is not JSON", c.Endpoint())
		}
		return 1
	}
	if !rv.Present {
		logger.Printf("no detailed_review in reply (HTTP %d)", rv.Status)
	}
	return 0
}

func openHistory(ctx context.Context, dsn string) (*store.ReviewRepo, error) {
	octx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := store.Open(octx, dsn)
	if err != nil {
		return nil, err
	}
	repo := store.NewReviewRepo(db)
	if err := repo.EnsureSchema(octx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
