// Package news retrieves headlines for a ticker from an ordered list of sources.
package news

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"FinAnalyst/internal/model"
)

// Source fetches headlines for a ticker from a single origin.
type Source interface {
	Fetch(ctx context.Context, ticker string, window model.Window) ([]model.Headline, error)
	Name() string
}

// ErrNoHeadlines is recorded when a source answers successfully but yields nothing.
var ErrNoHeadlines = errors.New("no headlines")

// Attempt captures the failure of one source during a chain fetch.
type Attempt struct {
	Source string
	Err    error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s: %v", a.Source, a.Err)
}

// Chain tries sources in order and returns the first non-empty result.
// It never fails: when every source fails the result is empty.
type Chain struct {
	Sources     []Source
	MaxArticles int
}

// NewChain builds a chain over the given sources.
func NewChain(maxArticles int, sources ...Source) *Chain {
	return &Chain{Sources: sources, MaxArticles: maxArticles}
}

// Fetch returns the headlines of the first source that produced any, and the
// failed attempts that preceded it.
func (c *Chain) Fetch(ctx context.Context, ticker string, window model.Window) ([]model.Headline, []Attempt) {
	var attempts []Attempt
	for _, src := range c.Sources {
		headlines, err := src.Fetch(ctx, ticker, window)
		if err == nil && len(headlines) == 0 {
			err = ErrNoHeadlines
		}
		if err != nil {
			log.Printf("[WARN] news source %s failed for %s: %v", src.Name(), ticker, err)
			attempts = append(attempts, Attempt{Source: src.Name(), Err: err})
			continue
		}
		if c.MaxArticles > 0 && len(headlines) > c.MaxArticles {
			headlines = headlines[:c.MaxArticles]
		}
		return headlines, attempts
	}
	return []model.Headline{}, attempts
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}
