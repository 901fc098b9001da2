// Package sentiment classifies headline text as positive, negative or neutral.
package sentiment

import (
	"errors"
	"fmt"
	"log"
	"os"

	"FinAnalyst/internal/model"
)

// Classifier labels text with a pretrained Model.
type Classifier struct {
	model *Model
}

// New wraps a trained model.
func New(m *Model) *Classifier {
	return &Classifier{model: m}
}

// LoadOrTrain loads the model at path. When path is empty or the file does not exist the
// bundled corpus is used instead, and the result is written to path if save is set.
func LoadOrTrain(path string, save bool) (*Classifier, error) {
	if path != "" {
		m, err := LoadModel(path)
		if err == nil {
			log.Printf("[INFO] sentiment model loaded: %s (%d terms)", path, len(m.Vocabulary))
			return New(m), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	m, err := Train(DefaultCorpus, 1.0)
	if err != nil {
		return nil, fmt.Errorf("train default model: %w", err)
	}
	log.Printf("[INFO] sentiment model trained on bundled corpus (%d examples, %d terms)", len(DefaultCorpus), len(m.Vocabulary))
	if path != "" && save {
		if err := SaveModel(path, m); err != nil {
			log.Printf("[WARN] save sentiment model: %v", err)
		}
	}
	return New(m), nil
}

// Classify labels a single text. Text with no known vocabulary is neutral.
func (c *Classifier) Classify(text string) model.SentimentResult {
	probs, ok := c.model.predict(Tokenize(text))
	if !ok {
		return model.SentimentResult{Label: model.Neutral, Confidence: c.prob(probs, model.Neutral)}
	}
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return model.SentimentResult{Label: c.model.Classes[best], Confidence: probs[best]}
}

func (c *Classifier) prob(probs []float64, label model.Label) float64 {
	for i, l := range c.model.Classes {
		if l == label {
			return probs[i]
		}
	}
	return 0
}

// ClassifyAll labels each headline in order.
func (c *Classifier) ClassifyAll(headlines []model.Headline) []model.SentimentResult {
	out := make([]model.SentimentResult, len(headlines))
	for i, h := range headlines {
		out[i] = c.Classify(h.Text)
	}
	return out
}

// Aggregate combines per-headline results by majority vote. A tie for the most votes
// resolves to tieBreak (neutral when tieBreak is not a valid label); no results is neutral.
func Aggregate(results []model.SentimentResult, tieBreak model.Label) model.SentimentAggregate {
	if !tieBreak.Valid() {
		tieBreak = model.Neutral
	}
	var agg model.SentimentAggregate
	for _, r := range results {
		switch r.Label {
		case model.Positive:
			agg.Positive++
		case model.Negative:
			agg.Negative++
		default:
			agg.Neutral++
		}
	}
	total := agg.Total()
	if total == 0 {
		agg.Label = model.Neutral
		return agg
	}

	counts := map[model.Label]int{model.Positive: agg.Positive, model.Negative: agg.Negative, model.Neutral: agg.Neutral}
	top, leaders := 0, 0
	for _, l := range model.Labels {
		switch n := counts[l]; {
		case n > top:
			top, leaders = n, 1
			agg.Label = l
		case n == top && n > 0:
			leaders++
		}
	}
	if leaders > 1 {
		agg.Label = tieBreak
	}
	agg.Confidence = float64(top) / float64(total)
	return agg
}
