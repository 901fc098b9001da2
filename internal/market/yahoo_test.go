package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinAnalyst/internal/calculator"
	"FinAnalyst/internal/model"
)

func testWindow() model.Window {
	return model.NewWindow(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), 7)
}

func ts(day int) int64 {
	return time.Date(2026, 10, day, 13, 30, 0, 0, time.UTC).Unix()
}

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewYahooProvider("", 100)
	p.BaseURL = srv.URL
	p.Client = srv.Client()
	return p
}

func TestYahooFetch_SortedSeries(t *testing.T) {
	// Out of order on purpose, with a null bar for a closed day.
	payload := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d,%d,%d],
		"indicators":{"quote":[{"high":[153,151,150,null],"low":[150,149,148,null],"close":[152,150,149,null]}]}}],"error":null}}`,
		ts(13), ts(12), ts(14), ts(15))

	var gotPath string
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	})

	pts, err := p.Fetch(context.Background(), "AAPL", testWindow())
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)

	for i := 1; i < len(pts); i++ {
		assert.True(t, pts[i-1].Date.Before(pts[i].Date), "dates must be strictly increasing")
	}
	assert.Equal(t, []float64{150, 152, 149}, []float64{pts[0].Close, pts[1].Close, pts[2].Close})

	change, err := calculator.PercentChange(pts)
	require.NoError(t, err)
	assert.InDelta(t, (149.0-150.0)/150.0, change, 1e-9)
}

func TestYahooFetch_Idempotent(t *testing.T) {
	payload := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d],
		"indicators":{"quote":[{"high":[1,1],"low":[1,1],"close":[10,11]}]}}]}}`, ts(12), ts(13))
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	})

	first, err := p.Fetch(context.Background(), "MSFT", testWindow())
	require.NoError(t, err)
	second, err := p.Fetch(context.Background(), "MSFT", testWindow())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

const rangeErrorBody = `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Data doesn't exist for startDate = 1104537600, endDate = 1105142400"}}}`

func TestYahooFetch_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"unknown ticker", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, NotFound},
		{"server error", http.StatusBadGateway, `oops`, SourceUnavailable},
		{"rate limited", http.StatusTooManyRequests, `Too Many Requests`, SourceUnavailable},
		{"empty range", http.StatusOK, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}]}}`, RangeUnavailable},
		{"garbage", http.StatusOK, `<html>`, SourceUnavailable},
		{"window before listing", http.StatusBadRequest, rangeErrorBody, RangeUnavailable},
		{"range error with 200", http.StatusOK, rangeErrorBody, RangeUnavailable},
		{"internal error object", http.StatusInternalServerError, `{"chart":{"result":null,"error":{"code":"Internal Server Error","description":"backend timeout"}}}`, SourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := p.Fetch(context.Background(), "ZZZZ", testWindow())
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestYahooSymbolMap(t *testing.T) {
	p := NewYahooProvider("", 1)
	assert.Equal(t, "^GSPC", p.yahooSymbol("SPX500"))
	assert.Equal(t, "AAPL", p.yahooSymbol("AAPL"))
}

func TestYahooFetch_RangeErrorIsNotRetried(t *testing.T) {
	var calls int32
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, rangeErrorBody)
	})

	_, err := WithRetry(p, 10*time.Millisecond).Fetch(context.Background(), "AAPL", testWindow())
	require.Error(t, err)
	assert.Equal(t, RangeUnavailable, KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
