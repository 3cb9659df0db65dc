package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"resume-review/api/internal/upload"
)

const maxReplyRunes = 3900

// chatDisplay is the "result" element of a chat: each review becomes a reply.
type chatDisplay struct {
	r       *Router
	chatID  int64
	replyTo int
}

func (d chatDisplay) Show(text string) {
	if strings.TrimSpace(text) == "" {
		text = "(empty review)"
	}
	msg := tgbotapi.NewMessage(d.chatID, trimText(text, maxReplyRunes))
	msg.ReplyToMessageID = d.replyTo
	if _, err := d.r.Bot.Send(msg); err != nil {
		d.r.logger().Printf("telegram send chat=%d: %v", d.chatID, err)
	}
}

// acceptDocument забирает файл из Telegram и отправляет его на /upload.
// Ошибки только логируются: пользователь ответа не получает.
func (r *Router) acceptDocument(ctx context.Context, msg tgbotapi.Message) {
	cid := msg.Chat.ID
	doc := msg.Document

	url, err := r.Bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		r.logger().Printf("telegram file url chat=%d file=%s: %v", cid, doc.FileName, err)
		return
	}
	data, err := r.download(ctx, url)
	if err != nil {
		r.logger().Printf("telegram download chat=%d file=%s: %v", cid, doc.FileName, err)
		return
	}

	h := upload.NewHandler(r.Uploader,
		chatDisplay{r: r, chatID: cid, replyTo: msg.MessageID},
		upload.WithLogger(r.logger()),
		upload.WithSource(Source(cid)),
		upload.WithHistory(r.history()),
	)
	_, _ = h.Handle(ctx, &upload.File{Name: doc.FileName, Body: bytes.NewReader(data)})
}

func (r *Router) history() upload.History {
	if r.Repo == nil {
		return nil
	}
	return r.Repo
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	hc := r.httpc
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
