package util

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("pdf has no text layer")

// PDFText returns the plain text of every page, one page per line block.
// Scanned PDFs without a text layer give ErrNoText.
func PDFText(data []byte) (text string, err error) {
	// парсер паникует на битых xref
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	fonts := map[string]*pdf.Font{}
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		t, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		pages = append(pages, t)
	}
	text = strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
