package report

import (
	"fmt"
	"strings"
	"text/template"

	"FinAnalyst/internal/market"
	"FinAnalyst/internal/model"
)

const systemPrompt = `You are a financial analyst who writes short, clear reports.
You work in an academic setting: never give real investment advice. Any recommendation
you make is simulated, and every report ends with a note that it is not financial advice.`

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"pct":      FormatChange,
	"price":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":     func(p model.PricePoint) string { return p.Date.Format("2006-01-02") },
	"first":    func(pts []model.PricePoint) model.PricePoint { return pts[0] },
	"last":     func(pts []model.PricePoint) model.PricePoint { return pts[len(pts)-1] },
	"failure":  describePriceFailure,
	"headline": func(h model.Headline) string { return strings.TrimSpace(h.Text) },
}).Parse(`User query:
"""{{.Query}}"""

Market summary:
{{- range .Contexts}}
{{.Ticker}} ({{.Window}}):
{{- if .HasPrices}}
  start {{date (first .Points)}} close {{price (first .Points).Close}}, end {{date (last .Points)}} close {{price (last .Points).Close}}
  change {{pct .Change}}, range {{price .Low}} - {{price .High}}, trend {{.Trend}}
{{- else}}
  price data unavailable: {{failure .PriceErr}}
{{- end}}
{{- end}}

Sentiment by ticker:
{{- range .Contexts}}
{{.Ticker}}: overall={{.Aggregate.Label}}, pos={{.Aggregate.Positive}}, neg={{.Aggregate.Negative}}, neu={{.Aggregate.Neutral}}
{{- end}}

Recent headlines by ticker:
{{- range .Contexts}}
{{.Ticker}}:{{if not .Headlines}} (no headlines found){{end}}
{{- range .Headlines}}
  - {{headline .}}
{{- end}}
{{- end}}

Tasks:
1. Briefly describe the recent behaviour of each stock.
2. Relate the price movement to the news context and the sentiment.
3. Propose a SIMULATED recommendation for each stock (buy, hold, sell) and explain the reasoning simply.
4. Finish with a clear note that this analysis is for academic purposes only and is not financial advice.

Write the report as plain text with a subheading per ticker.
`))

// BuildPrompt renders the user prompt for a set of ticker contexts. Output is deterministic.
func BuildPrompt(query string, contexts []model.AnalysisContext) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Query    string
		Contexts []model.AnalysisContext
	}{Query: query, Contexts: contexts})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// FormatChange renders a fractional change as a signed percentage, e.g. -0.0067 -> "-0.67%".
func FormatChange(change float64) string {
	return fmt.Sprintf("%+.2f%%", change*100)
}

func describePriceFailure(err error) string {
	if err == nil {
		return "no price points"
	}
	if kind := market.KindOf(err); kind != "" {
		return string(kind)
	}
	return err.Error()
}
