package model

import "time"

// ReportKind distinguishes a full analysis from a clarification request.
type ReportKind string

const (
	ReportAnalysis      ReportKind = "analysis"
	ReportClarification ReportKind = "clarification"
)

// AnalysisContext bundles everything gathered for one ticker during one query.
type AnalysisContext struct {
	Ticker    string
	Window    Window
	Points    []PricePoint
	Change    float64 // (last-first)/first, valid only when PriceErr == nil
	High      float64
	Low       float64
	Trend     string
	PriceErr  error // partial-failure marker
	Headlines []Headline
	Sentiment []SentimentResult // parallel to Headlines
	Aggregate SentimentAggregate
	NewsLog   []string // one line per failed news source attempt
}

// HasPrices reports whether a usable price series was fetched.
func (c AnalysisContext) HasPrices() bool {
	return c.PriceErr == nil && len(c.Points) > 0
}

// Report is the final answer to a query, with the contexts it was built from.
type Report struct {
	Kind          ReportKind
	Tickers       []string
	Text          string
	Narrative     string
	GenerationErr string
	Warnings      []string
	Contexts      []AnalysisContext
	CreatedAt     time.Time
}

// Turn is one completed exchange in a session.
type Turn struct {
	Query  Query
	Report *Report
}
