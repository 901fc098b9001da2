package news

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"FinAnalyst/internal/model"
)

// FinnhubSource reads company news from the Finnhub API.
type FinnhubSource struct {
	client   *finnhub.DefaultApiService
	Lookback int // days
	now      func() time.Time
}

// NewFinnhubSource creates a source authenticated with apiKey.
func NewFinnhubSource(apiKey string, lookbackDays int) *FinnhubSource {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return newFinnhubSource(cfg, lookbackDays)
}

func newFinnhubSource(cfg *finnhub.Configuration, lookbackDays int) *FinnhubSource {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &FinnhubSource{
		client:   finnhub.NewAPIClient(cfg).DefaultApi,
		Lookback: lookbackDays,
		now:      time.Now,
	}
}

func (f *FinnhubSource) Name() string { return "finnhub" }

// Fetch asks for news published inside window. A zero window falls back to the last Lookback days.
func (f *FinnhubSource) Fetch(ctx context.Context, ticker string, window model.Window) ([]model.Headline, error) {
	from, to := window.Start, window.End
	if from.IsZero() || to.IsZero() {
		to = f.now()
		from = to.AddDate(0, 0, -f.Lookback)
	}
	res, _, err := f.client.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news: %w", err)
	}

	var headlines []model.Headline
	for _, n := range res {
		if n.Headline == nil || *n.Headline == "" {
			continue
		}
		h := model.Headline{Text: *n.Headline, Source: "finnhub"}
		if n.Source != nil && *n.Source != "" {
			h.Source = "finnhub/" + *n.Source
		}
		if n.Url != nil {
			h.URL = *n.Url
		}
		if n.Datetime != nil {
			t := time.Unix(*n.Datetime, 0)
			h.PublishedAt = &t
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}
