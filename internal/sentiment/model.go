package sentiment

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"FinAnalyst/internal/model"
)

// Model is a TF-IDF vectorizer paired with a multinomial Naive Bayes classifier.
// The vocabulary is fixed at training time; unknown tokens are ignored.
type Model struct {
	Vocabulary     map[string]int `json:"vocabulary"`
	IDF            []float64      `json:"idf"`
	Classes        []model.Label  `json:"classes"`
	ClassLogPrior  []float64      `json:"class_log_prior"`
	FeatureLogProb [][]float64    `json:"feature_log_prob"` // [class][term]
}

// Train fits a model on the examples with additive smoothing alpha.
func Train(examples []Example, alpha float64) (*Model, error) {
	if len(examples) == 0 {
		return nil, errors.New("no training examples")
	}
	if alpha <= 0 {
		alpha = 1.0
	}

	docs := make([][]string, len(examples))
	vocabSet := make(map[string]bool)
	for i, ex := range examples {
		if !ex.Label.Valid() {
			return nil, fmt.Errorf("example %d: invalid label %q", i, ex.Label)
		}
		docs[i] = Tokenize(ex.Text)
		for _, tok := range docs[i] {
			vocabSet[tok] = true
		}
	}
	terms := make([]string, 0, len(vocabSet))
	for tok := range vocabSet {
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	m := &Model{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		Classes:    append([]model.Label(nil), model.Labels...),
	}
	for i, tok := range terms {
		m.Vocabulary[tok] = i
	}

	// Smooth idf: ln((1+n)/(1+df)) + 1
	df := make([]int, len(terms))
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, tok := range doc {
			j := m.Vocabulary[tok]
			if !seen[j] {
				seen[j] = true
				df[j]++
			}
		}
	}
	n := float64(len(docs))
	for j := range terms {
		m.IDF[j] = math.Log((1+n)/(1+float64(df[j]))) + 1
	}

	classIndex := make(map[model.Label]int, len(m.Classes))
	for i, c := range m.Classes {
		classIndex[c] = i
	}
	featureCount := make([][]float64, len(m.Classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, len(terms))
	}
	classCount := make([]float64, len(m.Classes))
	for i, doc := range docs {
		c := classIndex[examples[i].Label]
		classCount[c]++
		for j, v := range m.vectorize(doc) {
			featureCount[c][j] += v
		}
	}

	m.ClassLogPrior = make([]float64, len(m.Classes))
	m.FeatureLogProb = make([][]float64, len(m.Classes))
	for c := range m.Classes {
		if classCount[c] == 0 {
			return nil, fmt.Errorf("no examples for class %q", m.Classes[c])
		}
		m.ClassLogPrior[c] = math.Log(classCount[c] / n)
		total := 0.0
		for _, v := range featureCount[c] {
			total += v + alpha
		}
		m.FeatureLogProb[c] = make([]float64, len(terms))
		for j, v := range featureCount[c] {
			m.FeatureLogProb[c][j] = math.Log(v+alpha) - math.Log(total)
		}
	}
	return m, nil
}

// vectorize returns the l2-normalized tf-idf weights of the known tokens.
func (m *Model) vectorize(tokens []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, tok := range tokens {
		if j, ok := m.Vocabulary[tok]; ok {
			vec[j]++
		}
	}
	norm := 0.0
	for j, tf := range vec {
		w := tf * m.IDF[j]
		vec[j] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] /= norm
		}
	}
	return vec
}

// predict returns per-class posterior probabilities. ok is false when no token is in the vocabulary.
func (m *Model) predict(tokens []string) (probs []float64, ok bool) {
	vec := m.vectorize(tokens)
	jll := make([]float64, len(m.Classes))
	for c := range m.Classes {
		jll[c] = m.ClassLogPrior[c]
		for j, v := range vec {
			jll[c] += v * m.FeatureLogProb[c][j]
		}
	}
	return softmax(jll), len(vec) > 0
}

// validate checks the dimensions of a model loaded from disk.
func (m *Model) validate() error {
	nTerms := len(m.Vocabulary)
	if nTerms == 0 {
		return errors.New("empty vocabulary")
	}
	if len(m.IDF) != nTerms {
		return fmt.Errorf("idf has %d entries, vocabulary has %d", len(m.IDF), nTerms)
	}
	if len(m.Classes) == 0 || len(m.ClassLogPrior) != len(m.Classes) || len(m.FeatureLogProb) != len(m.Classes) {
		return errors.New("class dimensions mismatch")
	}
	for c, row := range m.FeatureLogProb {
		if len(row) != nTerms {
			return fmt.Errorf("class %q has %d feature weights, want %d", m.Classes[c], len(row), nTerms)
		}
	}
	for _, j := range m.Vocabulary {
		if j < 0 || j >= nTerms {
			return fmt.Errorf("vocabulary index %d out of range", j)
		}
	}
	return nil
}

func softmax(xs []float64) []float64 {
	maxX := math.Inf(-1)
	for _, x := range xs {
		maxX = math.Max(maxX, x)
	}
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		out[i] = math.Exp(x - maxX)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
