package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noHistory(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PASSWORD", "")
}

func reviewServer(t *testing.T, body string) (*httptest.Server, <-chan string) {
	t.Helper()
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if f, _, err := r.FormFile("file"); err == nil {
			b, _ := io.ReadAll(f)
			content = string(b)
		}
		select {
		case got <- content:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestRun_PrintsReview(t *testing.T) {
	noHistory(t)
	srv, got := reviewServer(t, `{"detailed_review":"Identified Skills (1): Go"}`)
	name := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(name, []byte("Go developer"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", srv.URL, name}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Identified Skills (1): Go\n", stdout.String())
	assert.Equal(t, "Go developer", <-got)
	assert.Empty(t, stderr.String())
}

func TestRun_NoFileSelected(t *testing.T) {
	noHistory(t)
	srv, _ := reviewServer(t, `{"error":"No selected file"}`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", srv.URL}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "\n", stdout.String())
	assert.Contains(t, stderr.String(), "no detailed_review")
}

func TestRun_Failures(t *testing.T) {
	noHistory(t)
	srv, _ := reviewServer(t, `<html>oops</html>`)
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	name := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantLog  string
	}{
		{"missing file", []string{"-url", srv.URL, filepath.Join(t.TempDir(), "nope.txt")}, 1, "nope.txt"},
		{"not json", []string{"-url", srv.URL, name}, 1, "not JSON"},
		{"unreachable", []string{"-url", dead.URL, name}, 1, "upload failed"},
		{"too many args", []string{name, name}, 2, "usage:"},
		{"bad flag", []string{"-nope"}, 2, "-nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr.String(), tt.wantLog)
			assert.Empty(t, stdout.String())
		})
	}
}
