package model

import "time"

// PricePoint is a single daily close within a requested window.
type PricePoint struct {
	Date  time.Time
	Close float64
	High  float64
	Low   float64
}

// Window is the date range a query asks about.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// NewWindow returns a window of the given number of days ending at end.
func NewWindow(end time.Time, days int) Window {
	if days <= 0 {
		days = 1
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start: end.AddDate(0, 0, -days),
		End:   end,
		Days:  days,
	}
}

// String formats the window as "2006-01-02 -> 2006-01-02".
func (w Window) String() string {
	return w.Start.Format("2006-01-02") + " -> " + w.End.Format("2006-01-02")
}
