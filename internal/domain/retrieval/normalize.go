package retrieval

import (
	"strings"
	"unicode"
)

// accentFolds maps the accented French letters onto their bare forms so the
// same word typed with or without accents compares equal.
var accentFolds = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a',
	'ç': 'c',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
	'ÿ': 'y',
	'œ': 'o',
}

// Normalize lowercases, trims, folds accents, turns punctuation into spaces
// and collapses repeated whitespace.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if folded, ok := accentFolds[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// punctuation and whitespace both collapse to a single space
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}

// ExtractWords tokenizes text, drops short tokens and stop words, and stems
// every surviving token.
func (l *Lexicon) ExtractWords(text string) []string {
	fields := strings.Fields(Normalize(text))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) <= 2 || l.isStopWord(field) {
			continue
		}
		words = append(words, l.Stem(field))
	}
	return words
}

// Stem strips the first matching suffix from the ordered table, provided the
// remaining stem keeps at least three characters. Deliberately lossy: this
// is a matching heuristic, not a linguistic stemmer.
func (l *Lexicon) Stem(word string) string {
	runes := []rune(word)
	for _, suffix := range l.Suffixes {
		suffixLen := len([]rune(suffix))
		if len(runes) <= suffixLen+2 {
			continue
		}
		if strings.HasSuffix(word, suffix) {
			return string(runes[:len(runes)-suffixLen])
		}
	}
	return word
}
