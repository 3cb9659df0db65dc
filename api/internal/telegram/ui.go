package telegram

import (
	"fmt"
	"strings"

	"resume-review/api/internal/store"
)

const historyPreviewRunes = 80

func formatHistory(rows []store.Row) string {
	if len(rows) == 0 {
		return "No reviews yet."
	}
	var b strings.Builder
	b.WriteString("Last reviews:\n")
	for i, row := range rows {
		status := "ok"
		preview := trimText(firstLine(row.Review), historyPreviewRunes)
		switch {
		case row.Err != "":
			status = "failed"
			preview = ""
		case !row.Present:
			status = "no review"
		}
		fmt.Fprintf(&b, "%d) %s | %s | %s", i+1, row.FileName, row.CreatedAt.Format("2006-01-02 15:04"), status)
		if preview != "" {
			b.WriteString("\n   ")
			b.WriteString(preview)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
