package review_test

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review/api/internal/review"
	"resume-review/api/internal/review/skills"
	"resume-review/api/internal/testpdf"
	"resume-review/api/internal/upload"
)

func newReviewService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", review.NewHandler(skills.New(), 1<<20).Upload)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadAgainstReviewService(t *testing.T) {
	srv := newReviewService(t)
	display := upload.NewTextDisplay("")
	var logs bytes.Buffer
	h := upload.NewHandler(upload.NewClient(srv.URL), display, upload.WithLogger(log.New(&logs, "", 0)))

	rv, err := h.Handle(context.Background(), &upload.File{
		Name: "cv.txt",
		Body: strings.NewReader("Backend engineer at Initech Inc. Python, SQL, Teamwork."),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rv.Status)
	assert.True(t, strings.HasPrefix(display.Text(), "Identified Skills (3): Python, SQL, Teamwork"))
	assert.Contains(t, display.Text(), "Identified Experience (1): Initech Inc")
	assert.Empty(t, logs.String())
}

func TestUploadAgainstReviewService_NoFileSelected(t *testing.T) {
	srv := newReviewService(t)
	display := upload.NewTextDisplay("previous review")
	h := upload.NewHandler(upload.NewClient(srv.URL), display)

	rv, err := h.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rv.Status)
	assert.False(t, rv.Present)
	assert.Equal(t, "", display.Text())
}

func TestUploadAgainstReviewService_PDF(t *testing.T) {
	srv := newReviewService(t)
	display := upload.NewTextDisplay("previous review")
	h := upload.NewHandler(upload.NewClient(srv.URL), display)

	rv, err := h.Handle(context.Background(), &upload.File{
		Name: "cv.pdf",
		Body: bytes.NewReader(testpdf.New("Python SQL Teamwork at Initech Inc.")),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rv.Status)
	assert.True(t, rv.Present)
	assert.True(t, strings.HasPrefix(display.Text(), "Identified Skills (3): Python, SQL, Teamwork"))
	assert.Contains(t, display.Text(), "Identified Experience (1): Initech Inc")
}

func TestUploadAgainstReviewService_ScannedPDF(t *testing.T) {
	srv := newReviewService(t)
	display := upload.NewTextDisplay("previous review")
	h := upload.NewHandler(upload.NewClient(srv.URL), display)

	rv, err := h.Handle(context.Background(), &upload.File{Name: "scan.pdf", Body: bytes.NewReader(testpdf.New())})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rv.Status)
	assert.False(t, rv.Present)
	assert.Equal(t, "", display.Text())
}

func TestUploadAgainstReviewService_UnsupportedType(t *testing.T) {
	srv := newReviewService(t)
	display := upload.NewTextDisplay("previous review")
	h := upload.NewHandler(upload.NewClient(srv.URL), display)

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	rv, err := h.Handle(context.Background(), &upload.File{Name: "cv.png", Body: bytes.NewReader(png)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, rv.Status)
	assert.Equal(t, "", display.Text())
}
