package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	DefaultPath = "/upload"
	// FieldName — единственная часть multipart-тела.
	FieldName = "file"
	// ReviewField is the only key read from the reply.
	ReviewField = "detailed_review"
)

var (
	ErrTransport         = errors.New("upload: transport failure")
	ErrMalformedResponse = errors.New("upload: malformed response")
)

// File is the user's selected file. A nil *File means nothing was selected.
type File struct {
	Name string
	Body io.Reader
}

// Review is what came back from the endpoint.
// Present is false when the reply had no usable detailed_review; Text is "" then.
type Review struct {
	Text    string
	Present bool
	Status  int
	Size    int64
}

// Uploader sends one file and returns the parsed review.
type Uploader interface {
	Upload(ctx context.Context, f *File) (Review, error)
}

type Client struct {
	BaseURL string
	Path    string
	httpc   *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

func WithPath(p string) Option {
	return func(c *Client) {
		if p = strings.TrimSpace(p); p != "" {
			if !strings.HasPrefix(p, "/") {
				p = "/" + p
			}
			c.Path = p
		}
	}
}

// NewClient builds a client for baseURL. The default http.Client has no timeout;
// bound a call through its context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Path:    DefaultPath,
		httpc:   &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.BaseURL + c.Path }

// Upload posts f as the single multipart part "file" and reads detailed_review
// from the JSON reply. The HTTP status is not checked: any parseable JSON body is
// treated as a reply.
func (c *Client) Upload(ctx context.Context, f *File) (Review, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	cr := &countingReader{}
	written := make(chan struct{})

	go func() {
		defer close(written)
		pw.CloseWithError(writeFilePart(mw, f, cr))
	}()
	// the writer goroutine must be gone before cr.n is read
	finish := func() int64 {
		_ = pr.Close()
		<-written
		return cr.n
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), pr)
	if err != nil {
		return Review{Size: finish()}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		// часть файла могла уйти до обрыва
		return Review{Size: finish()}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	out := Review{Status: resp.StatusCode, Size: finish()}
	if err != nil {
		return out, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	text, present, err := reviewField(body)
	if err != nil {
		return out, fmt.Errorf("%w: status %d: %w", ErrMalformedResponse, resp.StatusCode, err)
	}
	out.Text, out.Present = text, present
	return out, nil
}

func writeFilePart(mw *multipart.Writer, f *File, cr *countingReader) error {
	name := ""
	if f != nil {
		name = f.Name
	}
	part, err := mw.CreateFormFile(FieldName, name)
	if err != nil {
		return err
	}
	if f != nil && f.Body != nil {
		cr.r = f.Body
		if _, err := io.Copy(part, cr); err != nil {
			return err
		}
	}
	return mw.Close()
}

// reviewField pulls detailed_review out of any JSON document. Non-object documents
// and a missing or null field are accepted and give ("", false).
func reviewField(body []byte) (string, bool, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", false, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false, nil
	}
	v, ok := obj[ReviewField]
	if !ok || v == nil {
		return "", false, nil
	}
	if s, ok := v.(string); ok {
		return s, true, nil
	}
	// не строка — показываем как есть, в JSON-виде
	b, _ := json.Marshal(v)
	return string(b), true, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
