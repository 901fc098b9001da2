// Package coordinator turns a natural-language query into a report: it extracts tickers,
// gathers prices, news and sentiment per ticker, asks the generator for a narrative and
// records the exchange in the session.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"FinAnalyst/internal/calculator"
	"FinAnalyst/internal/market"
	"FinAnalyst/internal/model"
	"FinAnalyst/internal/news"
	"FinAnalyst/internal/recorder"
	"FinAnalyst/internal/report"
	"FinAnalyst/internal/sentiment"
)

// QueryHandler answers a query within a session. *Coordinator implements it.
type QueryHandler interface {
	Handle(ctx context.Context, q model.Query, session *Session) (*model.Report, error)
}

// NewsFetcher returns headlines for a ticker, preferably published inside window. It never fails; failed sources are reported as attempts.
type NewsFetcher interface {
	Fetch(ctx context.Context, ticker string, window model.Window) ([]model.Headline, []news.Attempt)
}

// Classifier labels headlines, one result per headline in order.
type Classifier interface {
	ClassifyAll(headlines []model.Headline) []model.SentimentResult
}

// ReportGenerator produces the narrative for a set of ticker contexts.
type ReportGenerator interface {
	Generate(ctx context.Context, query string, contexts []model.AnalysisContext, history []model.Turn) (string, error)
}

// ClarificationText is returned when a query names no ticker and there is nothing to follow up on.
const ClarificationText = "I could not find a ticker in your question. Mention a symbol such as AAPL or $NVDA, " +
	"or a company name like \"Apple\", for example: \"Analyze AAPL and NVDA this week\"."

// Options tunes the pipeline.
type Options struct {
	DefaultDays int
	TieBreak    model.Label
	Parallel    bool
	FlatBand    float64 // moves smaller than this fraction are reported as "flat"
}

// Coordinator runs the analysis pipeline for one query at a time.
type Coordinator struct {
	Extractor  *Extractor
	Market     market.Provider
	News       NewsFetcher
	Classifier Classifier
	Generator  ReportGenerator
	Recorder   recorder.Recorder
	Options    Options

	now func() time.Time
}

// New creates a Coordinator. rec may be nil.
func New(ex *Extractor, mp market.Provider, nf NewsFetcher, cl Classifier, gen ReportGenerator, rec recorder.Recorder, opts Options) *Coordinator {
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 7
	}
	if !opts.TieBreak.Valid() {
		opts.TieBreak = model.Neutral
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Coordinator{
		Extractor:  ex,
		Market:     mp,
		News:       nf,
		Classifier: cl,
		Generator:  gen,
		Recorder:   rec,
		Options:    opts,
		now:        time.Now,
	}
}

// Handle answers q and appends the exchange to session. Missing data for a ticker and a
// failed generation step degrade the report instead of failing it; a query without tickers
// and without earlier context yields a clarification report. The only error returned is
// ctx's, when it is already done.
func (c *Coordinator) Handle(ctx context.Context, q model.Query, session *Session) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tickers, warnings := c.Extractor.Extract(q.Text)
	for _, w := range warnings {
		log.Printf("[WARN] query %s: %s", q.ID, w)
	}
	window, explicit := ParseWindow(q.Text, c.now(), c.Options.DefaultDays)

	if len(tickers) == 0 {
		prev := session.lastAnalysis()
		if prev == nil {
			rep := &model.Report{
				Kind:      model.ReportClarification,
				Text:      ClarificationText,
				Warnings:  warnings,
				CreatedAt: c.now(),
			}
			c.finish(q, rep, session)
			return rep, nil
		}
		tickers = append([]string(nil), prev.Tickers...)
		if !explicit && len(prev.Contexts) > 0 {
			window = prev.Contexts[0].Window
		}
		log.Printf("[INFO] query %s names no ticker, following up on %s", q.ID, strings.Join(tickers, ", "))
	}

	log.Printf("[INFO] query %s: tickers=%v window=%s", q.ID, tickers, window)
	contexts := c.gather(ctx, tickers, window)

	narrative, genErr := c.Generator.Generate(ctx, q.Text, contexts, session.Turns())
	rep := &model.Report{
		Kind:      model.ReportAnalysis,
		Tickers:   tickers,
		Narrative: narrative,
		Warnings:  warnings,
		Contexts:  contexts,
		CreatedAt: c.now(),
		Text:      report.RenderReport(contexts, narrative, genErr),
	}
	if genErr != nil {
		log.Printf("[ERROR] query %s: %v", q.ID, genErr)
		rep.GenerationErr = genErr.Error()
	}
	c.finish(q, rep, session)
	return rep, nil
}

func (c *Coordinator) finish(q model.Query, rep *model.Report, session *Session) {
	session.Append(q, rep)
	if err := c.Recorder.RecordReport(session.ID, q, rep); err != nil {
		log.Printf("[ERROR] record report: %v", err)
	}
}

// gather builds one context per ticker. Each ticker writes only its own slot.
func (c *Coordinator) gather(ctx context.Context, tickers []string, window model.Window) []model.AnalysisContext {
	contexts := make([]model.AnalysisContext, len(tickers))
	if !c.Options.Parallel {
		for i, t := range tickers {
			contexts[i] = c.analyze(ctx, t, window)
		}
		return contexts
	}

	var wg sync.WaitGroup
	for i, t := range tickers {
		i, t := i, t
		wg.Add(1)
		go func() {
			defer wg.Done()
			contexts[i] = c.analyze(ctx, t, window)
		}()
	}
	wg.Wait()
	return contexts
}

func (c *Coordinator) analyze(ctx context.Context, ticker string, window model.Window) model.AnalysisContext {
	ac := model.AnalysisContext{Ticker: ticker, Window: window}

	points, err := c.Market.Fetch(ctx, ticker, window)
	switch {
	case err != nil:
		log.Printf("[WARN] %s price data: %v", ticker, err)
		ac.PriceErr = err
	case len(points) == 0:
		ac.PriceErr = &market.DataError{Kind: market.RangeUnavailable, Ticker: ticker}
	default:
		ac.Points = points
		change, err := calculator.PercentChange(points)
		if err != nil {
			ac.PriceErr = fmt.Errorf("%s percent change: %w", ticker, err)
			break
		}
		ac.Change = change
		ac.Trend = calculator.Trend(change, c.Options.FlatBand)
		if high, low, err := calculator.WindowRange(points); err == nil {
			ac.High, ac.Low = high, low
		}
	}

	headlines, attempts := c.News.Fetch(ctx, ticker, window)
	for _, a := range attempts {
		ac.NewsLog = append(ac.NewsLog, a.String())
	}
	ac.Headlines = headlines
	ac.Sentiment = c.Classifier.ClassifyAll(headlines)
	ac.Aggregate = sentiment.Aggregate(ac.Sentiment, c.Options.TieBreak)
	return ac
}
