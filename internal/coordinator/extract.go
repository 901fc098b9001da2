package coordinator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"FinAnalyst/internal/model"
)

// tickerPattern is the shape every extracted symbol must have: 1-5 letters with an optional
// one or two letter class/venue suffix (BRK.B, SHOP.TO).
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,2})?$`)

var (
	cashtagRe   = regexp.MustCompile(`\$([A-Za-z][A-Za-z.]*)`)
	qualifiedRe = regexp.MustCompile(`\b([A-Z]{2,6}):([A-Za-z][A-Za-z.]*)`)
	upperRe     = regexp.MustCompile(`\b[A-Z][A-Z.]*[A-Z]\b|\b[A-Z]\b`)
)

// DefaultAliases maps company names to symbols.
var DefaultAliases = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"nvidia":    "NVDA",
	"amazon":    "AMZN",
	"alphabet":  "GOOGL",
	"google":    "GOOGL",
	"meta":      "META",
	"facebook":  "META",
	"tesla":     "TSLA",
	"netflix":   "NFLX",
	"intel":     "INTC",
	"amd":       "AMD",
	"ecopetrol": "EC",
	"s&p 500":   "SPX",
	"s&p500":    "SPX",
	"s&p":       "SPX",
}

// DefaultIgnore lists uppercase words that look like symbols but are not.
var DefaultIgnore = []string{
	"I", "A", "AM", "PM", "OK", "VS", "AND", "OR", "THE", "FOR", "OF", "IN", "ON", "TO", "IS", "IT", "BE", "ME", "MY",
	"U.S", "U.K", "CEO", "CFO", "CTO", "IPO", "ETF", "EPS", "YTD", "USA", "US", "UK", "EU", "AI", "GDP", "FED", "SEC", "USD", "EUR",
}

// KnownExchanges are accepted as the prefix of an EXCHANGE:CODE symbol.
var KnownExchanges = map[string]bool{
	"NYSE": true, "NASDAQ": true, "AMEX": true, "ARCA": true, "ASX": true, "LSE": true, "TSX": true, "XETRA": true, "BVC": true,
}

// Extractor finds ticker symbols in free text.
type Extractor struct {
	aliases map[string]string
	aliasRe *regexp.Regexp
	ignore  map[string]bool
}

// NewExtractor builds an extractor from an alias map (name -> symbol, case-insensitive)
// and a list of uppercase words to skip.
func NewExtractor(aliases map[string]string, ignore []string) *Extractor {
	e := &Extractor{
		aliases: make(map[string]string, len(aliases)),
		ignore:  make(map[string]bool, len(ignore)),
	}
	names := make([]string, 0, len(aliases))
	for name, symbol := range aliases {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		e.aliases[name] = strings.ToUpper(strings.TrimSpace(symbol))
		names = append(names, regexp.QuoteMeta(name))
	}
	// Longest first so "bank of america" wins over "america".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	if len(names) > 0 {
		e.aliasRe = regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
	}
	for _, w := range ignore {
		e.ignore[strings.ToUpper(strings.TrimSpace(w))] = true
	}
	return e
}

type candidate struct {
	pos    int
	symbol string
}

// Extract returns the symbols mentioned in text, in order of first appearance without
// duplicates, and a warning for every candidate that was rejected.
func (e *Extractor) Extract(text string) (tickers []string, warnings []string) {
	var found []candidate
	taken := make([]bool, len(text)) // byte ranges already consumed by a stronger match

	mark := func(start, end int) {
		for i := start; i < end; i++ {
			taken[i] = true
		}
	}
	free := func(start, end int) bool {
		for i := start; i < end; i++ {
			if taken[i] {
				return false
			}
		}
		return true
	}
	accept := func(pos int, raw, origin string) {
		symbol := strings.ToUpper(strings.TrimRight(raw, "."))
		if !tickerPattern.MatchString(symbol) {
			warnings = append(warnings, fmt.Sprintf("%s %q is not a recognizable ticker symbol, skipped", origin, raw))
			return
		}
		found = append(found, candidate{pos: pos, symbol: symbol})
	}

	for _, m := range cashtagRe.FindAllStringSubmatchIndex(text, -1) {
		mark(m[0], m[1])
		accept(m[0], text[m[2]:m[3]], "cashtag")
	}
	for _, m := range qualifiedRe.FindAllStringSubmatchIndex(text, -1) {
		if !free(m[0], m[1]) || !KnownExchanges[text[m[2]:m[3]]] {
			continue
		}
		mark(m[0], m[1])
		accept(m[0], text[m[4]:m[5]], "symbol")
	}
	if e.aliasRe != nil {
		for _, m := range e.aliasRe.FindAllStringIndex(text, -1) {
			if !free(m[0], m[1]) {
				continue
			}
			mark(m[0], m[1])
			found = append(found, candidate{pos: m[0], symbol: e.aliases[strings.ToLower(text[m[0]:m[1]])]})
		}
	}
	for _, m := range upperRe.FindAllStringIndex(text, -1) {
		if !free(m[0], m[1]) {
			continue
		}
		word := text[m[0]:m[1]]
		if e.ignore[word] || KnownExchanges[word] {
			continue
		}
		accept(m[0], word, "word")
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	seen := make(map[string]bool)
	for _, c := range found {
		if c.symbol == "" || seen[c.symbol] {
			continue
		}
		seen[c.symbol] = true
		tickers = append(tickers, c.symbol)
	}
	return tickers, warnings
}

var (
	spanRe = regexp.MustCompile(`(?i)\b(?:last|past|over|for)?\s*(\d{1,3})[-\s]*(day|days|d|week|weeks|w|month|months|mo|year|years|yr|yrs|y)\b`)
)

// ParseWindow derives the analysis window from phrases like "this week", "last 30 days"
// or "today". explicit is false when the default was used.
func ParseWindow(text string, now time.Time, defaultDays int) (window model.Window, explicit bool) {
	lower := strings.ToLower(text)
	days := 0

	if m := spanRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "day", "days", "d":
			days = n
		case "week", "weeks", "w":
			days = n * 7
		case "year", "years", "yr", "yrs", "y":
			days = n * 365
		default:
			days = n * 30
		}
	} else {
		switch {
		case strings.Contains(lower, "today"):
			days = 1
		case strings.Contains(lower, "yesterday"):
			days = 2
		case strings.Contains(lower, "week") || strings.Contains(lower, "semana"):
			days = 7
		case strings.Contains(lower, "month"):
			days = 30
		case strings.Contains(lower, "quarter"):
			days = 90
		case strings.Contains(lower, "year") || strings.Contains(lower, "ytd"):
			days = 365
		}
	}

	if days <= 0 {
		return model.NewWindow(now, defaultDays), false
	}
	return model.NewWindow(now, days), true
}
