// Package sentiment classifies social posts as bullish, bearish, or neutral
// and folds a batch of classified posts into a normalized sentiment record.
package sentiment

import (
	"regexp"
	"strings"
)

// Label is the classification of one piece of text.
type Label int

const (
	Neutral Label = iota
	Positive
	Negative
)

// Classifier maps free text to a sentiment label. The interface exists so
// the keyword lexicon below can be swapped for a real model without touching
// the adapters.
type Classifier interface {
	Classify(text string) Label
}

var (
	bullishWords = []string{
		"bull", "bullish", "moon", "pump", "buy", "long", "up", "win",
		"surge", "rally", "soar", "breakout", "gain", "yes",
	}
	bearishWords = []string{
		"bear", "bearish", "dump", "sell", "short", "down", "lose",
		"crash", "drop", "tank", "plunge", "collapse", "fall", "no",
	}
)

// Lexicon is the default Classifier: it counts bullish versus bearish keyword
// occurrences and lets the majority win, with ties going to neutral.
type Lexicon struct {
	bullish []*regexp.Regexp
	bearish []*regexp.Regexp
}

// NewLexicon builds the default keyword classifier.
func NewLexicon() *Lexicon {
	return &Lexicon{
		bullish: compileWords(bullishWords),
		bearish: compileWords(bearishWords),
	}
}

func compileWords(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}

// Classify counts keyword occurrences in the lowercased text.
func (l *Lexicon) Classify(text string) Label {
	lower := strings.ToLower(text)

	var bulls, bears int
	for _, re := range l.bullish {
		bulls += len(re.FindAllStringIndex(lower, -1))
	}
	for _, re := range l.bearish {
		bears += len(re.FindAllStringIndex(lower, -1))
	}

	switch {
	case bulls > bears:
		return Positive
	case bears > bulls:
		return Negative
	default:
		return Neutral
	}
}

var _ Classifier = (*Lexicon)(nil)
