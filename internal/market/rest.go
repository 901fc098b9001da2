package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"FinAnalyst/internal/model"
)

// RESTProvider implements Provider against a generic daily-bars REST API:
//
//	GET {BaseURL}/api/v1/bars/daily?symbol=AAPL&from=2006-01-02&to=2006-01-02
type RESTProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTProvider creates a new provider with optional proxy support.
func NewRESTProvider(baseURL, apiKey, proxyURL string) *RESTProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTProvider) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

func (f *RESTProvider) Fetch(ctx context.Context, ticker string, window model.Window) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", window.Start.Format("2006-01-02"))
	q.Set("to", window.End.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newDataError(SourceUnavailable, ticker, err)
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("fetch bars: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, newDataError(NotFound, ticker, fmt.Errorf("fetch bars: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return nil, newDataError(RangeUnavailable, ticker, fmt.Errorf("fetch bars: status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("decode bars: %w", err))
	}
	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		t := time.Unix(b.Timestamp, 0).UTC()
		points[i] = model.PricePoint{
			Date:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Close: b.Close,
			High:  b.High,
			Low:   b.Low,
		}
	}
	points = normalize(points, window)
	if len(points) == 0 {
		return nil, newDataError(RangeUnavailable, ticker, fmt.Errorf("no bars in %s", window))
	}
	return points, nil
}
