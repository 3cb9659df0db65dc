package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"resume-review/api/internal/store"
	"resume-review/api/internal/upload"
)

// BotAPI is the part of *tgbotapi.BotAPI the router needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// HistoryRepo is satisfied by *store.ReviewRepo.
type HistoryRepo interface {
	upload.History
	Recent(ctx context.Context, source string, limit int) ([]store.Row, error)
}

type Router struct {
	Bot      BotAPI
	Uploader upload.Uploader
	Repo     HistoryRepo // nil — история выключена
	Log      *log.Logger

	httpc *http.Client
	wg    sync.WaitGroup
}

func NewRouter(bot BotAPI, up upload.Uploader, repo HistoryRepo) *Router {
	return &Router{
		Bot:      bot,
		Uploader: up,
		Repo:     repo,
		Log:      log.New(os.Stderr, "", log.LstdFlags),
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

const historyLimit = 5

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send me your resume as a file (PDF or text) and I will reply with a detailed review.\nCommands: /history, /health")
	case "health":
		r.send(cid, "✅ OK")
	case "history":
		r.sendHistory(cid)
	default:
		r.send(cid, "Unknown command")
	}
}

// HandleUpdate dispatches one update. Document uploads run on their own goroutine;
// Wait blocks until they are done.
func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case msg.Document != nil:
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.acceptDocument(context.Background(), *msg)
		}()
	case len(msg.Photo) > 0:
		r.send(msg.Chat.ID, "Please send the resume as a file, not as a photo.")
	}
}

func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Printf("telegram send chat=%d: %v", chatID, err)
	}
}

func (r *Router) sendHistory(chatID int64) {
	if r.Repo == nil {
		r.send(chatID, "History is disabled.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.Repo.Recent(ctx, Source(chatID), historyLimit)
	if err != nil {
		r.logger().Printf("history chat=%d: %v", chatID, err)
		r.send(chatID, "History is unavailable right now.")
		return
	}
	r.send(chatID, formatHistory(rows))
}

func (r *Router) logger() *log.Logger {
	if r.Log != nil {
		return r.Log
	}
	return log.Default()
}

// Source is the history label of a chat.
func Source(chatID int64) string { return fmt.Sprintf("tg:%d", chatID) }

func trimText(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
