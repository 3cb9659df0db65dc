package util

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadPrompt returns $PROMPT_DIR/<name>.txt when present and non-empty, otherwise fallback.
func LoadPrompt(name, fallback string) string {
	dir := strings.TrimSpace(os.Getenv("PROMPT_DIR"))
	if dir == "" {
		return fallback
	}
	b, err := os.ReadFile(filepath.Join(dir, name+".txt"))
	if err != nil || len(strings.TrimSpace(string(b))) == 0 {
		return fallback
	}
	return strings.TrimSpace(string(b))
}
