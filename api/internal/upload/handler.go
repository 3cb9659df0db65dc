package upload

import (
	"context"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Display is the text node the review is written into. Every Show overwrites it.
type Display interface {
	Show(text string)
}

// History receives one Entry per finished invocation, successful or not.
type History interface {
	Record(ctx context.Context, e Entry) error
}

type Entry struct {
	ID        uuid.UUID
	Source    string
	FileName  string
	Size      int64
	Status    int
	Review    string
	Present   bool
	Err       string
	StartedAt time.Time
	Duration  time.Duration
}

const historyTimeout = 5 * time.Second

// Handler ties an Uploader to a Display. Failures go to the logger only; the
// display keeps its previous text.
type Handler struct {
	up      Uploader
	display Display
	log     *log.Logger
	history History
	source  string

	inflight atomic.Int64
}

type HandlerOption func(*Handler)

// WithLogger sets the diagnostic channel. Defaults to stderr.
func WithLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func WithHistory(hs History) HandlerOption {
	return func(h *Handler) { h.history = hs }
}

// WithSource labels history entries, e.g. "cli" or "tg:<chat id>".
func WithSource(src string) HandlerOption {
	return func(h *Handler) { h.source = src }
}

func NewHandler(up Uploader, display Display, opts ...HandlerOption) *Handler {
	h := &Handler{
		up:      up,
		display: display,
		log:     log.New(os.Stderr, "", log.LstdFlags),
		source:  "default",
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handle uploads f and waits for the reply. On success the display is overwritten
// with the review text; on failure a diagnostic is logged and the error returned.
func (h *Handler) Handle(ctx context.Context, f *File) (Review, error) {
	h.inflight.Add(1)
	defer h.inflight.Add(-1)
	return h.handle(ctx, f)
}

// InFlight reports how many invocations are awaiting a reply.
func (h *Handler) InFlight() int64 { return h.inflight.Load() }

func (h *Handler) handle(ctx context.Context, f *File) (Review, error) {
	started := time.Now()
	rv, err := h.up.Upload(ctx, f)
	if err != nil {
		h.log.Printf("upload failed: %s: %v", fileName(f), err)
	} else {
		h.display.Show(rv.Text)
	}
	h.record(ctx, f, rv, err, started)
	return rv, err
}

func (h *Handler) record(ctx context.Context, f *File, rv Review, uerr error, started time.Time) {
	if h.history == nil {
		return
	}
	e := Entry{
		ID:        uuid.New(),
		Source:    h.source,
		FileName:  fileName(f),
		Size:      rv.Size,
		Status:    rv.Status,
		Review:    rv.Text,
		Present:   rv.Present,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if uerr != nil {
		e.Err = uerr.Error()
	}
	// история пишется даже если вызов отменили
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := h.history.Record(hctx, e); err != nil {
		h.log.Printf("history record %s: %v", e.ID, err)
	}
}

func fileName(f *File) string {
	if f == nil || f.Name == "" {
		return "(none)"
	}
	return f.Name
}
