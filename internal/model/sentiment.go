package model

// Label is a sentiment class.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Labels lists every label in a fixed order.
var Labels = []Label{Negative, Neutral, Positive}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	return l == Positive || l == Negative || l == Neutral
}

// SentimentResult is the classification of a single text.
type SentimentResult struct {
	Label      Label
	Confidence float64 // 0.0 ~ 1.0
}

// SentimentAggregate summarizes the per-headline results of a ticker.
type SentimentAggregate struct {
	Label      Label
	Confidence float64 // share of votes held by Label
	Positive   int
	Negative   int
	Neutral    int
}

// Total returns the number of classified headlines.
func (a SentimentAggregate) Total() int {
	return a.Positive + a.Negative + a.Neutral
}
