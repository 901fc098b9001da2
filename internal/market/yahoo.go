package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"FinAnalyst/internal/model"
)

// DefaultYahooBaseURL is the host of the public chart API.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	Limiter   *rate.Limiter
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a new Yahoo Finance provider with optional proxy support.
func NewYahooProvider(proxyURL string, requestsPerSecond int) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &YahooProvider{
		BaseURL: DefaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

// chartErrorKind classifies the error object of a chart response. Yahoo answers a window
// outside the symbol's history with "Bad Request: Data doesn't exist for startDate = ...".
func chartErrorKind(code, description string) ErrorKind {
	switch {
	case code == "Not Found":
		return NotFound
	case code == "Bad Request", strings.Contains(description, "Data doesn't exist"):
		return RangeUnavailable
	default:
		return SourceUnavailable
	}
}

func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func deref(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

func (f *YahooProvider) Fetch(ctx context.Context, ticker string, window model.Window) ([]model.PricePoint, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, newDataError(SourceUnavailable, ticker, err)
		}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)),
		window.Start.Unix(), window.End.AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newDataError(SourceUnavailable, ticker, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("yahoo fetch: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("yahoo read body: %w", err))
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode == http.StatusNotFound {
		return nil, newDataError(NotFound, ticker, fmt.Errorf("yahoo: status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && chart.Chart.Error != nil {
			e := chart.Chart.Error
			return nil, newDataError(chartErrorKind(e.Code, e.Description), ticker,
				fmt.Errorf("yahoo: status %d: %s: %s", resp.StatusCode, e.Code, e.Description))
		}
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body)))
	}
	if decodeErr != nil {
		return nil, newDataError(SourceUnavailable, ticker, fmt.Errorf("yahoo decode: %w", decodeErr))
	}
	if e := chart.Chart.Error; e != nil {
		return nil, newDataError(chartErrorKind(e.Code, e.Description), ticker, fmt.Errorf("yahoo api error: %s: %s", e.Code, e.Description))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, newDataError(NotFound, ticker, fmt.Errorf("yahoo: no result"))
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, newDataError(RangeUnavailable, ticker, fmt.Errorf("yahoo: no data in %s", window))
	}
	quote := result.Indicators.Quote[0]
	points := make([]model.PricePoint, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := deref(quote.Close, i)
		if c == 0 {
			continue // skip null bars (holidays etc.)
		}
		t := time.Unix(ts, 0).UTC()
		points = append(points, model.PricePoint{
			Date:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Close: c,
			High:  deref(quote.High, i),
			Low:   deref(quote.Low, i),
		})
	}

	points = normalize(points, window)
	if len(points) == 0 {
		return nil, newDataError(RangeUnavailable, ticker, fmt.Errorf("yahoo: no closes in %s", window))
	}
	return points, nil
}
