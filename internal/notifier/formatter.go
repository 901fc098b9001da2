package notifier

import (
	"fmt"
	"strings"

	"FinAnalyst/internal/model"
)

// FormatReport prefixes a report with a one-line header for chat delivery.
func FormatReport(title string, r *model.Report) string {
	var b strings.Builder
	if r.Kind == model.ReportAnalysis && len(r.Tickers) > 0 {
		b.WriteString(fmt.Sprintf("📊 %s | %s | %s\n\n", title, strings.Join(r.Tickers, ", "), r.CreatedAt.Format("2006-01-02 15:04")))
	}
	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", w))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(r.Text)
	return strings.TrimRight(b.String(), "\n")
}

// FormatHistory lists the turns of a session, oldest first.
func FormatHistory(turns []model.Turn) string {
	if len(turns) == 0 {
		return "No queries yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 %d queries in this session\n", len(turns)))
	for i, t := range turns {
		summary := "no report"
		if t.Report != nil {
			switch {
			case t.Report.Kind == model.ReportClarification:
				summary = "asked for a ticker"
			case t.Report.GenerationErr != "":
				summary = fmt.Sprintf("%s (data only)", strings.Join(t.Report.Tickers, ", "))
			default:
				summary = strings.Join(t.Report.Tickers, ", ")
			}
		}
		b.WriteString(fmt.Sprintf("%d. [%s] %s -> %s\n", i+1, t.Query.ReceivedAt.Format("15:04:05"), t.Query.Text, summary))
	}
	return strings.TrimRight(b.String(), "\n")
}
