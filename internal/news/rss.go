package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FinAnalyst/internal/model"
)

// DefaultRSSURL is the Yahoo headline feed; %s is replaced by the ticker.
const DefaultRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSSSource reads headlines from an RSS 2.0 feed.
type RSSSource struct {
	URLTemplate string
	Client      *http.Client
}

// NewRSSSource creates a feed source for the Yahoo headline feed.
func NewRSSSource(proxyURL string) *RSSSource {
	return &RSSSource{URLTemplate: DefaultRSSURL, Client: newHTTPClient(proxyURL)}
}

func (r *RSSSource) Name() string { return "rss" }

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (r *RSSSource) Fetch(ctx context.Context, ticker string, _ model.Window) ([]model.Headline, error) {
	feedURL := fmt.Sprintf(r.URLTemplate, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss: status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("rss decode: %w", err)
	}
	headlines := make([]model.Headline, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		h := model.Headline{Text: title, Source: "rss", URL: strings.TrimSpace(item.Link)}
		if t, err := time.Parse(time.RFC1123Z, strings.TrimSpace(item.PubDate)); err == nil {
			h.PublishedAt = &t
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}
