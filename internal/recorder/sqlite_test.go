package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinAnalyst/internal/model"
)

func sampleReport() *model.Report {
	end := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	return &model.Report{
		Kind:    model.ReportAnalysis,
		Tickers: []string{"AAPL", "ZZZZ"},
		Text:    "AAPL fell 0.67%",
		Contexts: []model.AnalysisContext{
			{
				Ticker: "AAPL",
				Window: model.NewWindow(end, 7),
				Points: []model.PricePoint{
					{Date: end.AddDate(0, 0, -2), Close: 150},
					{Date: end, Close: 149},
				},
				Change:    -0.0067,
				Trend:     "down",
				Headlines: []model.Headline{{Text: "Apple slips"}},
				Aggregate: model.SentimentAggregate{Label: model.Negative, Confidence: 1, Negative: 1},
			},
			{Ticker: "ZZZZ", Window: model.NewWindow(end, 7)},
		},
		CreatedAt: end,
	}
}

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer rec.Close()

	q := model.NewQuery("Analyze AAPL and ZZZZ")
	require.NoError(t, rec.RecordReport("s1", q, sampleReport()))
	require.NoError(t, rec.RecordReport("s1", model.NewQuery("hello"), &model.Report{
		Kind: model.ReportClarification, Text: "which ticker?", CreatedAt: time.Now(),
	}))

	entries, err := rec.Recent(5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, model.ReportClarification, entries[0].Kind)
	assert.Empty(t, entries[0].Tickers)

	assert.Equal(t, "s1", entries[1].SessionID)
	assert.Equal(t, q.ID, entries[1].QueryID)
	assert.Equal(t, []string{"AAPL", "ZZZZ"}, entries[1].Tickers)
	assert.Equal(t, "AAPL fell 0.67%", entries[1].Text)

	var n int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM report_tickers`).Scan(&n))
	assert.Equal(t, 2, n)

	var last float64
	require.NoError(t, rec.db.QueryRow(`SELECT last_close FROM report_tickers WHERE ticker = 'AAPL'`).Scan(&last))
	assert.Equal(t, 149.0, last)
}

func TestSQLiteRecorder_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordReport("s1", model.NewQuery("AAPL"), sampleReport()))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()
	entries, err := rec.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordReport("s", model.NewQuery("x"), &model.Report{}))
	entries, err := r.Recent(3)
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, r.Close())
}
