package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review/api/internal/review"
)

type fakeModel struct {
	errs  []error
	reply string
	calls int
	parts []genai.Part
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.parts = parts
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(f.reply)}}},
	}}, nil
}

func TestRun_DecodesJSON(t *testing.T) {
	m := &fakeModel{reply: "```json\n{\"detailed_review\":\"Good fit\",\"ats_score\":140,\"skills\":[\"Go\"]}\n```"}
	rep, err := run(context.Background(), m, review.Document{FileName: "cv.txt", MIME: "text/plain", Data: []byte("Go dev")}, time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "Good fit", rep.DetailedReview)
	require.NotNil(t, rep.ATSScore)
	assert.Equal(t, 100.0, *rep.ATSScore)
	assert.Equal(t, []string{"Go"}, rep.Skills)
	assert.Equal(t, 1, m.calls)
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("503"), errors.New("503")}, reply: `{"detailed_review":"ok"}`}
	rep, err := run(context.Background(), m, review.Document{MIME: "text/plain"}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "ok", rep.DetailedReview)
	assert.Equal(t, 3, m.calls)
}

func TestRun_GivesUpAfterThreeAttempts(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	_, err := run(context.Background(), m, review.Document{MIME: "text/plain"}, time.Millisecond)
	assert.EqualError(t, err, "c")
	assert.Equal(t, 3, m.calls)
}

func TestRun_StopsBackoffOnCancel(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("503"), errors.New("503")}, reply: `{"detailed_review":"ok"}`}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := run(ctx, m, review.Document{MIME: "text/plain"}, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 1, m.calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_EmptyResponse(t *testing.T) {
	m := &fakeModel{reply: ""}
	_, err := run(context.Background(), m, review.Document{MIME: "text/plain"}, time.Millisecond)
	assert.Error(t, err)
}

func TestDecodeReport_ProseFallback(t *testing.T) {
	rep := decodeReport("The resume is fine overall.")
	assert.Equal(t, "The resume is fine overall.", rep.DetailedReview)
	assert.Nil(t, rep.ATSScore)

	rep = decodeReport(`{"skills":["Go"]}`)
	assert.Equal(t, `{"skills":["Go"]}`, rep.DetailedReview)
}

func TestBuildParts(t *testing.T) {
	text := buildParts(review.Document{FileName: "cv.txt", MIME: "text/plain; charset=utf-8", Data: []byte("hello"), JobDescription: "Go"})
	require.Len(t, text, 2)
	assert.Contains(t, string(text[0].(genai.Text)), "JOB DESCRIPTION:\nGo")
	assert.Equal(t, genai.Text("RESUME:\nhello"), text[1])

	pdf := buildParts(review.Document{FileName: "cv.pdf", MIME: "application/pdf", Data: []byte("%PDF-1.4")})
	require.Len(t, pdf, 2)
	assert.Contains(t, string(pdf[0].(genai.Text)), "No job description given")
	blob, ok := pdf[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", blob.MIMEType)
}

func TestReviewer_Guards(t *testing.T) {
	r := New("", "gemini-2.5-flash")
	_, err := r.Review(context.Background(), review.Document{MIME: "application/pdf"})
	assert.EqualError(t, err, "GEMINI_API_KEY is empty")

	r = New("key", "gemini-2.5-flash")
	_, err = r.Review(context.Background(), review.Document{MIME: "application/zip"})
	assert.ErrorIs(t, err, review.ErrUnsupported)

	assert.True(t, r.Accepts("application/pdf"))
	assert.True(t, r.Accepts("image/png"))
	assert.False(t, r.Accepts("application/zip"))
}
