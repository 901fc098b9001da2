package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"FinAnalyst/internal/model"
)

// Provider fetches the daily close series of a ticker over a window.
type Provider interface {
	Fetch(ctx context.Context, ticker string, window model.Window) ([]model.PricePoint, error)
	Name() string
}

// ErrorKind classifies a market data failure.
type ErrorKind string

const (
	NotFound          ErrorKind = "not_found"
	RangeUnavailable  ErrorKind = "range_unavailable"
	SourceUnavailable ErrorKind = "source_unavailable"
)

// DataError is returned by every Provider on failure.
type DataError struct {
	Kind   ErrorKind
	Ticker string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Ticker, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Ticker, e.Kind, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// KindOf returns the kind of a DataError anywhere in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *DataError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func newDataError(kind ErrorKind, ticker string, err error) *DataError {
	return &DataError{Kind: kind, Ticker: ticker, Err: err}
}

// normalize sorts points chronologically, drops duplicate dates and points outside the window.
func normalize(points []model.PricePoint, window model.Window) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	end := window.End.AddDate(0, 0, 1)
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if !window.Start.IsZero() && p.Date.Before(window.Start) {
			continue
		}
		if !window.End.IsZero() && !p.Date.Before(end) {
			continue
		}
		if n := len(out); n > 0 && sameDay(out[n-1].Date, p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
