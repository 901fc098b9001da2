package report

import (
	"fmt"
	"strings"

	"FinAnalyst/internal/calculator"
	"FinAnalyst/internal/model"
)

// RenderData formats the structured per-ticker data. It is part of every report so the
// numbers survive a failed generation step.
func RenderData(contexts []model.AnalysisContext) string {
	var b strings.Builder
	for _, c := range contexts {
		b.WriteString(fmt.Sprintf("== %s | %s\n", c.Ticker, c.Window))
		if c.HasPrices() {
			first, last := c.Points[0], c.Points[len(c.Points)-1]
			b.WriteString(fmt.Sprintf("Price: %.2f (%s) -> %.2f (%s), change %s\n",
				first.Close, first.Date.Format("2006-01-02"), last.Close, last.Date.Format("2006-01-02"), FormatChange(c.Change)))
			b.WriteString(fmt.Sprintf("Range: %.2f - %.2f | trend: %s | %d sessions\n", c.Low, c.High, c.Trend, len(c.Points)))
			if mean, err := calculator.MeanClose(c.Points); err == nil {
				pos, _ := calculator.RangePosition(last.Close, c.High, c.Low)
				b.WriteString(fmt.Sprintf("Average close: %.2f | last close at %.0f%% of range\n", mean, pos*100))
			}
		} else {
			b.WriteString(fmt.Sprintf("Price: unavailable (%s)\n", describePriceFailure(c.PriceErr)))
		}
		b.WriteString(fmt.Sprintf("Sentiment: %s (pos: %d, neg: %d, neu: %d)\n",
			c.Aggregate.Label, c.Aggregate.Positive, c.Aggregate.Negative, c.Aggregate.Neutral))
		if len(c.Headlines) == 0 {
			b.WriteString("Headlines: none found\n")
		} else {
			b.WriteString("Headlines:\n")
			for i, h := range c.Headlines {
				label := ""
				if i < len(c.Sentiment) {
					label = fmt.Sprintf(" [%s %.2f]", c.Sentiment[i].Label, c.Sentiment[i].Confidence)
				}
				b.WriteString(fmt.Sprintf("  • %s%s\n", strings.TrimSpace(h.Text), label))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderReport assembles the final report text: the data block followed by the narrative,
// or an explicit note when generation failed.
func RenderReport(contexts []model.AnalysisContext, narrative string, genErr error) string {
	var b strings.Builder
	b.WriteString(RenderData(contexts))
	if genErr != nil {
		b.WriteString("Note: narrative generation failed (")
		b.WriteString(genErr.Error())
		b.WriteString("). The figures above were still collected and are complete.\n")
		return b.String()
	}
	b.WriteString("Analyst report:\n")
	b.WriteString(narrative)
	b.WriteString("\n")
	return b.String()
}
