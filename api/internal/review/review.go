package review

import (
	"context"
	"errors"
)

var (
	ErrUnsupported = errors.New("review: unsupported document type")
	// ErrUnreadable: the type is accepted but no text could be taken out of the file.
	ErrUnreadable = errors.New("review: unreadable document")
)

// Document is one uploaded resume plus the optional job description it is scored against.
type Document struct {
	FileName       string
	MIME           string
	Data           []byte
	JobDescription string
}

// Report is the /upload reply. Clients only rely on detailed_review.
type Report struct {
	DetailedReview string   `json:"detailed_review"`
	ATSScore       *float64 `json:"ats_score,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Experience     []string `json:"experience,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

type Reviewer interface {
	Name() string
	Accepts(mime string) bool
	Review(ctx context.Context, doc Document) (Report, error)
}
