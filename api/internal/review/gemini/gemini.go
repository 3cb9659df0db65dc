package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"resume-review/api/internal/review"
	"resume-review/api/internal/util"
)

const systemPrompt = `You are a recruiter reviewing a RESUME for an applicant tracking system.
1) Identify concrete skills (technical and soft) present in the resume.
2) Identify work experience: employers, products, notable projects.
3) If a JOB DESCRIPTION is given, list the skills it requires and estimate an ATS match score 0..100.
4) Give short, actionable suggestions to improve the resume.
Return STRICT JSON:
{
  "detailed_review": string,      // human-readable review, plain text, several lines
  "ats_score": number | null,     // only when a job description was given
  "skills": [string],
  "experience": [string],
  "required_skills": [string],
  "suggestions": [string]
}
No text outside JSON.`

// generator is the part of *genai.GenerativeModel we call.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Reviewer struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Reviewer {
	return &Reviewer{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (r *Reviewer) Name() string { return "gemini" }

func (r *Reviewer) Accepts(mime string) bool {
	return util.IsText(mime) || util.IsPDF(mime) || util.IsImage(mime)
}

func (r *Reviewer) Review(ctx context.Context, doc review.Document) (review.Report, error) {
	if r.APIKey == "" {
		return review.Report{}, errors.New("GEMINI_API_KEY is empty")
	}
	if !r.Accepts(doc.MIME) {
		return review.Report{}, fmt.Errorf("%w: %s", review.ErrUnsupported, util.BaseMIME(doc.MIME))
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(r.APIKey))
	if err != nil {
		return review.Report{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(r.Model)
	if m == nil {
		return review.Report{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(util.LoadPrompt("review", systemPrompt))},
	}
	return run(ctx, m, doc, 300*time.Millisecond)
}

// run делает до 3 попыток на транзиентных ошибках.
func run(ctx context.Context, m generator, doc review.Document, backoff time.Duration) (review.Report, error) {
	parts := buildParts(doc)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if attempt == 3 {
				break
			}
			t := time.NewTimer(time.Duration(attempt) * backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return review.Report{}, fmt.Errorf("gemini review: %w (last error: %v)", ctx.Err(), lastErr)
			case <-t.C:
			}
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return review.Report{}, fmt.Errorf("gemini review: empty response")
		}
		return decodeReport(txt), nil
	}
	return review.Report{}, lastErr
}

func buildParts(doc review.Document) []genai.Part {
	var intro strings.Builder
	fmt.Fprintf(&intro, "File name: %q.", doc.FileName)
	if jd := strings.TrimSpace(doc.JobDescription); jd != "" {
		intro.WriteString("\nJOB DESCRIPTION:\n")
		intro.WriteString(jd)
	} else {
		intro.WriteString("\nNo job description given: leave ats_score null and required_skills empty.")
	}

	parts := []genai.Part{genai.Text(intro.String())}
	if util.IsText(doc.MIME) {
		parts = append(parts, genai.Text("RESUME:\n"+string(doc.Data)))
	} else {
		parts = append(parts, genai.Blob{MIMEType: util.BaseMIME(doc.MIME), Data: doc.Data})
	}
	return parts
}

// decodeReport parses the model output. If the model answered with prose instead
// of JSON, the prose becomes the review.
func decodeReport(txt string) review.Report {
	txt = util.StripCodeFences(strings.TrimSpace(txt))
	var rep review.Report
	if err := json.Unmarshal([]byte(txt), &rep); err != nil || strings.TrimSpace(rep.DetailedReview) == "" {
		return review.Report{DetailedReview: txt}
	}
	if rep.ATSScore != nil {
		s := *rep.ATSScore
		if s < 0 {
			s = 0
		}
		if s > 100 {
			s = 100
		}
		rep.ATSScore = &s
	}
	return rep
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
