package model

import "time"

// Headline is a short piece of news text associated with a ticker.
type Headline struct {
	Text        string
	Source      string
	URL         string
	PublishedAt *time.Time
}
