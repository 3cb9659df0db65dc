package util

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffMIME detects the media type from content, e.g. "application/pdf"
// or "text/plain; charset=utf-8".
func SniffMIME(b []byte) string {
	return mimetype.Detect(b).String()
}

// BaseMIME drops parameters: "text/plain; charset=utf-8" -> "text/plain".
func BaseMIME(m string) string {
	m = strings.TrimSpace(m)
	if mt, _, err := mime.ParseMediaType(m); err == nil {
		return mt
	}
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func IsText(m string) bool { return strings.HasPrefix(BaseMIME(m), "text/") }

func IsPDF(m string) bool { return BaseMIME(m) == "application/pdf" }

func IsImage(m string) bool { return strings.HasPrefix(BaseMIME(m), "image/") }
