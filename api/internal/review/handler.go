package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resume-review/api/internal/util"
)

const (
	FieldFile           = "file"
	FieldJobDescription = "job_description"

	defaultDeadline = 180 * time.Second
)

type Handler struct {
	rev      Reviewer
	maxBytes int64
}

func NewHandler(rev Reviewer, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{rev: rev, maxBytes: maxBytes}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// Upload serves POST /upload: one multipart file part named "file" and an
// optional job_description field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	// запас на заголовки частей и job_description
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad multipart: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[FieldFile]
	if len(files) == 0 {
		if _, ok := r.MultipartForm.Value[FieldFile]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	fh := files[0]
	if strings.TrimSpace(fh.Filename) == "" || fh.Size == 0 {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if fh.Size > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "open file: "+err.Error())
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}

	mt := util.SniffMIME(data)
	if !h.rev.Accepts(mt) {
		writeError(w, http.StatusUnsupportedMediaType, "Invalid file type: "+util.BaseMIME(mt))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), deadline(r))
	defer cancel()

	doc := Document{
		FileName:       fh.Filename,
		MIME:           mt,
		Data:           data,
		JobDescription: strings.TrimSpace(r.FormValue(FieldJobDescription)),
	}
	started := time.Now()
	rep, err := h.rev.Review(ctx, doc)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		if errors.Is(err, ErrUnreadable) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Printf("review %s (%s, %d bytes) via %s: %v", fh.Filename, util.BaseMIME(mt), len(data), h.rev.Name(), err)
		writeError(w, http.StatusBadGateway, "review error: "+err.Error())
		return
	}
	log.Printf("reviewed %s (%s, %d bytes) via %s in %s", fh.Filename, util.BaseMIME(mt), len(data), h.rev.Name(), time.Since(started).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, rep)
}

func deadline(r *http.Request) time.Duration {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return defaultDeadline
}
