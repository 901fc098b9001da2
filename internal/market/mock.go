package market

import (
	"context"
	"sync"
	"time"

	"FinAnalyst/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Tickers with an entry in Errors fail with that error; tickers with an entry in Series
// return it. Anything else gets a generated series around BasePrice, or NotFound when
// BasePrice is zero.
type MockProvider struct {
	BasePrice float64
	Series    map[string][]model.PricePoint
	Errors    map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockProvider) Name() string { return "mock" }

// Calls returns how many times ticker was fetched.
func (m *MockProvider) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

func (m *MockProvider) Fetch(_ context.Context, ticker string, window model.Window) ([]model.PricePoint, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[ticker]++
	m.mu.Unlock()

	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if pts, ok := m.Series[ticker]; ok {
		out := make([]model.PricePoint, len(pts))
		copy(out, pts)
		return out, nil
	}
	if m.BasePrice == 0 {
		return nil, newDataError(NotFound, ticker, nil)
	}
	pts := generateMockSeries(m.BasePrice, window)
	if len(pts) == 0 {
		return nil, newDataError(RangeUnavailable, ticker, nil)
	}
	return pts, nil
}

func generateMockSeries(basePrice float64, window model.Window) []model.PricePoint {
	var pts []model.PricePoint
	for d, i := window.Start, 0; !d.After(window.End); d, i = d.AddDate(0, 0, 1), i+1 {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i-window.Days/2)*0.001)
		pts = append(pts, model.PricePoint{Date: d, Close: p, High: p * 1.005, Low: p * 0.995})
	}
	return pts
}
