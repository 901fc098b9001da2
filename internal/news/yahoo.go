package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"FinAnalyst/internal/model"
)

// DefaultYahooNewsURL is the quote news page; %s is replaced by the ticker.
const DefaultYahooNewsURL = "https://finance.yahoo.com/quote/%s/news/"

// YahooScraper extracts headlines from the Yahoo Finance quote news page.
type YahooScraper struct {
	URLTemplate string
	MaxArticles int
	Client      *http.Client
	Limiter     *rate.Limiter
}

// NewYahooScraper creates a scraper with a 10s timeout and optional proxy.
func NewYahooScraper(maxArticles int, proxyURL string) *YahooScraper {
	return &YahooScraper{
		URLTemplate: DefaultYahooNewsURL,
		MaxArticles: maxArticles,
		Client:      newHTTPClient(proxyURL),
		Limiter:     rate.NewLimiter(rate.Limit(1), 2),
	}
}

func (y *YahooScraper) Name() string { return "yahoo" }

func (y *YahooScraper) Fetch(ctx context.Context, ticker string, _ model.Window) ([]model.Headline, error) {
	if y.Limiter != nil {
		if err := y.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	pageURL := fmt.Sprintf(y.URLTemplate, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo news fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo news: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo news parse: %w", err)
	}
	base, _ := url.Parse(pageURL)
	return extractHeadlines(doc, base, y.MaxArticles), nil
}

// extractHeadlines collects anchors pointing at news articles. Navigation links
// ("News", "More") are skipped by requiring at least three words of text.
func extractHeadlines(doc *goquery.Document, base *url.URL, limit int) []model.Headline {
	var headlines []model.Headline
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/news/") {
			return true
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(strings.Fields(text)) < 3 {
			return true
		}
		link := href
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				link = base.ResolveReference(ref).String()
			}
		}
		if seen[link] {
			return true
		}
		seen[link] = true
		headlines = append(headlines, model.Headline{Text: text, Source: "yahoo", URL: link})
		return limit <= 0 || len(headlines) < limit
	})
	return headlines
}
