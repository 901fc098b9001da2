package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinAnalyst/internal/market"
	"FinAnalyst/internal/model"
	"FinAnalyst/internal/news"
	"FinAnalyst/internal/recorder"
	"FinAnalyst/internal/report"
)

var testNow = time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)

type fakeNews struct {
	mu        sync.Mutex
	headlines map[string][]model.Headline
	calls     []string
	windows   []model.Window
}

func (f *fakeNews) Fetch(_ context.Context, ticker string, window model.Window) ([]model.Headline, []news.Attempt) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.windows = append(f.windows, window)
	f.mu.Unlock()
	if h, ok := f.headlines[ticker]; ok {
		return h, nil
	}
	return []model.Headline{}, []news.Attempt{
		{Source: "yahoo", Err: news.ErrNoHeadlines},
		{Source: "rss", Err: errors.New("status 503")},
	}
}

// labelByWord labels a headline by the first keyword it contains.
type labelByWord map[string]model.Label

func (l labelByWord) ClassifyAll(headlines []model.Headline) []model.SentimentResult {
	out := make([]model.SentimentResult, len(headlines))
	for i, h := range headlines {
		out[i] = model.SentimentResult{Label: model.Neutral, Confidence: 0.5}
		for word, label := range l {
			if strings.Contains(strings.ToLower(h.Text), word) {
				out[i] = model.SentimentResult{Label: label, Confidence: 0.9}
				break
			}
		}
	}
	return out
}

type fakeBackend struct {
	mu       sync.Mutex
	out      string
	err      error
	requests [][]report.Message
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Complete(_ context.Context, msgs []report.Message) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, msgs)
	return b.out, b.err
}

type countingRecorder struct {
	recorder.NoopRecorder
	reports []*model.Report
}

func (c *countingRecorder) RecordReport(_ string, _ model.Query, r *model.Report) error {
	c.reports = append(c.reports, r)
	return nil
}

func series(closes ...float64) []model.PricePoint {
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: testNow.AddDate(0, 0, i-len(closes)+1), Close: c}
	}
	return pts
}

type fixture struct {
	coord   *Coordinator
	market  *market.MockProvider
	news    *fakeNews
	backend *fakeBackend
	rec     *countingRecorder
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		market: &market.MockProvider{Series: map[string][]model.PricePoint{
			"AAPL": series(150, 152, 149),
			"NVDA": series(100, 110),
		}},
		news: &fakeNews{headlines: map[string][]model.Headline{
			"AAPL": {
				{Text: "Apple shares surge on record iPhone sales", Source: "fake"},
				{Text: "Apple faces lawsuit over App Store fees", Source: "fake"},
			},
			"NVDA": {{Text: "Nvidia rally continues", Source: "fake"}},
		}},
		backend: &fakeBackend{out: "  AAPL drifted lower. This is not financial advice.\n"},
		rec:     &countingRecorder{},
	}
	classifier := labelByWord{"surge": model.Positive, "rally": model.Positive, "lawsuit": model.Negative}
	gen := report.NewGenerator(f.backend, 3, time.Second)
	f.coord = New(NewExtractor(DefaultAliases, DefaultIgnore), f.market, f.news, classifier, gen, f.rec, opts)
	f.coord.now = func() time.Time { return testNow }
	return f
}

func TestHandle_EndToEnd(t *testing.T) {
	f := newFixture(Options{})
	session := NewSession()

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("Analyze AAPL this week"), session)
	require.NoError(t, err)

	assert.Equal(t, model.ReportAnalysis, rep.Kind)
	assert.Equal(t, []string{"AAPL"}, rep.Tickers)
	assert.Contains(t, rep.Text, "AAPL")
	assert.Contains(t, rep.Text, "-0.67%")
	assert.Contains(t, rep.Text, "AAPL drifted lower")
	assert.Equal(t, "AAPL drifted lower. This is not financial advice.", rep.Narrative)
	assert.Empty(t, rep.GenerationErr)

	require.Len(t, rep.Contexts, 1)
	ac := rep.Contexts[0]
	assert.InDelta(t, -0.006667, ac.Change, 1e-5)
	assert.Equal(t, 152.0, ac.High)
	assert.Equal(t, 149.0, ac.Low)
	assert.Equal(t, "down", ac.Trend)
	assert.Equal(t, 7, ac.Window.Days)
	require.Len(t, ac.Sentiment, 2)
	assert.Equal(t, model.Positive, ac.Sentiment[0].Label)
	assert.Equal(t, model.Negative, ac.Sentiment[1].Label)
	assert.Equal(t, model.Neutral, ac.Aggregate.Label)
	assert.Equal(t, 1, ac.Aggregate.Positive)
	assert.Equal(t, 1, ac.Aggregate.Negative)

	assert.Equal(t, 1, session.Len())
	assert.Len(t, f.rec.reports, 1)

	require.Len(t, f.backend.requests, 1)
	prompt := f.backend.requests[0][len(f.backend.requests[0])-1].Content
	assert.Contains(t, prompt, "Analyze AAPL this week")
	assert.Contains(t, prompt, "-0.67%")
	assert.Contains(t, prompt, "pos=1, neg=1")
}

func TestHandle_GenerationUnavailable(t *testing.T) {
	f := newFixture(Options{})
	f.backend.err = errors.New("connection refused")
	session := NewSession()

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("Analyze AAPL this week"), session)
	require.NoError(t, err)

	assert.Equal(t, model.ReportAnalysis, rep.Kind)
	assert.Empty(t, rep.Narrative)
	assert.Contains(t, rep.GenerationErr, report.ErrGenerationUnavailable.Error())
	assert.Contains(t, rep.Text, "-0.67%")
	assert.Contains(t, rep.Text, "narrative generation failed")
	assert.Equal(t, 1, session.Len())
}

func TestHandle_EmptyNarrativeIsUnavailable(t *testing.T) {
	f := newFixture(Options{})
	f.backend.out = "   "
	rep, err := f.coord.Handle(context.Background(), model.NewQuery("AAPL"), NewSession())
	require.NoError(t, err)
	assert.Contains(t, rep.GenerationErr, "empty response")
}

func TestHandle_NoTickersAsksForClarification(t *testing.T) {
	f := newFixture(Options{})
	session := NewSession()

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("how is the market doing?"), session)
	require.NoError(t, err)

	assert.Equal(t, model.ReportClarification, rep.Kind)
	assert.Equal(t, ClarificationText, rep.Text)
	assert.Empty(t, rep.Tickers)
	assert.Equal(t, 1, session.Len())
	assert.Empty(t, f.news.calls)
	assert.Empty(t, f.backend.requests)
	assert.Equal(t, 0, f.market.Calls("AAPL"))
}

func TestHandle_PartialFailureIsIsolated(t *testing.T) {
	f := newFixture(Options{})
	f.market.Errors = map[string]error{
		"ZZZZ": &market.DataError{Kind: market.NotFound, Ticker: "ZZZZ"},
	}

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("Compare ZZZZ with AAPL"), NewSession())
	require.NoError(t, err)

	require.Len(t, rep.Contexts, 2)
	bad, good := rep.Contexts[0], rep.Contexts[1]
	assert.Equal(t, "ZZZZ", bad.Ticker)
	assert.False(t, bad.HasPrices())
	assert.Equal(t, market.NotFound, market.KindOf(bad.PriceErr))
	assert.Empty(t, bad.Headlines)
	assert.Len(t, bad.NewsLog, 2)
	assert.Equal(t, model.Neutral, bad.Aggregate.Label)

	assert.True(t, good.HasPrices())
	assert.Contains(t, rep.Text, "not_found")
	assert.Contains(t, rep.Text, "-0.67%")
}

func TestHandle_FollowUpReusesTickersAndWindow(t *testing.T) {
	f := newFixture(Options{})
	session := NewSession()

	_, err := f.coord.Handle(context.Background(), model.NewQuery("Analyze AAPL and NVDA over the last 30 days"), session)
	require.NoError(t, err)

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("and what does the news say?"), session)
	require.NoError(t, err)

	assert.Equal(t, model.ReportAnalysis, rep.Kind)
	assert.Equal(t, []string{"AAPL", "NVDA"}, rep.Tickers)
	assert.Equal(t, 30, rep.Contexts[0].Window.Days)
	assert.Equal(t, 2, session.Len())
	for _, w := range f.news.windows {
		assert.Equal(t, 30, w.Days)
	}

	// the second request replays the first turn as history
	msgs := f.backend.requests[1]
	assert.Greater(t, len(msgs), 2)
	assert.Equal(t, "Analyze AAPL and NVDA over the last 30 days", msgs[1].Content)
}

func TestHandle_ClarificationThenFollowUp(t *testing.T) {
	f := newFixture(Options{})
	session := NewSession()
	ctx := context.Background()

	rep, err := f.coord.Handle(ctx, model.NewQuery("hmm"), session)
	require.NoError(t, err)
	assert.Equal(t, model.ReportClarification, rep.Kind)
	_, err = f.coord.Handle(ctx, model.NewQuery("NVDA today"), session)
	require.NoError(t, err)

	rep, err = f.coord.Handle(ctx, model.NewQuery("and this month?"), session)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, rep.Tickers)
	assert.Equal(t, 30, rep.Contexts[0].Window.Days)
}

func TestHandle_ParallelKeepsOrder(t *testing.T) {
	f := newFixture(Options{Parallel: true})
	f.market.BasePrice = 50

	rep, err := f.coord.Handle(context.Background(), model.NewQuery("NVDA, AAPL, MSFT and AMZN this month"), NewSession())
	require.NoError(t, err)

	require.Len(t, rep.Contexts, 4)
	for i, want := range []string{"NVDA", "AAPL", "MSFT", "AMZN"} {
		assert.Equal(t, want, rep.Contexts[i].Ticker)
		assert.True(t, rep.Contexts[i].HasPrices(), want)
	}
	assert.InDelta(t, 0.10, rep.Contexts[0].Change, 1e-9)
	assert.Len(t, f.news.calls, 4)
}

func TestHandle_WarningsAttached(t *testing.T) {
	f := newFixture(Options{})
	rep, err := f.coord.Handle(context.Background(), model.NewQuery("check $TOOLONGX and AAPL"), NewSession())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, rep.Tickers)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "TOOLONGX")
}

func TestHandle_TieBreakOption(t *testing.T) {
	f := newFixture(Options{TieBreak: model.Negative})
	rep, err := f.coord.Handle(context.Background(), model.NewQuery("AAPL"), NewSession())
	require.NoError(t, err)
	assert.Equal(t, model.Negative, rep.Contexts[0].Aggregate.Label)
}

func TestHandle_CancelledContext(t *testing.T) {
	f := newFixture(Options{})
	session := NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := f.coord.Handle(ctx, model.NewQuery("AAPL"), session)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, session.Len())
	assert.Equal(t, 0, f.market.Calls("AAPL"))
}

func TestSession_TurnsIsACopy(t *testing.T) {
	s := NewSession()
	s.Append(model.NewQuery("AAPL"), &model.Report{Kind: model.ReportAnalysis, Tickers: []string{"AAPL"}})
	turns := s.Turns()
	turns[0].Query.Text = "changed"
	assert.Equal(t, "AAPL", s.Turns()[0].Query.Text)
	assert.NotEmpty(t, s.ID)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	a := store.Get("chat-1")
	assert.Same(t, a, store.Get("chat-1"))
	assert.NotSame(t, a, store.Get("chat-2"))

	store.Reset("chat-1")
	assert.NotSame(t, a, store.Get("chat-1"))
}
