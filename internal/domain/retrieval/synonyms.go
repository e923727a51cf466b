package retrieval

import "strings"

// SynonymsOf returns the related terms for word, consulting the synonym map
// bidirectionally: canonical terms return their related list, related terms
// return their canonical plus its siblings. Unknown words return nil.
func (l *Lexicon) SynonymsOf(word string) []string {
	if related, ok := l.Synonyms[word]; ok {
		out := make([]string, len(related))
		copy(out, related)
		return out
	}
	if group, ok := l.reverse[word]; ok {
		out := make([]string, len(group))
		copy(out, group)
		return out
	}
	return nil
}

// Expand returns query rewrites, one per recognized synonym hit, each
// substituting the matched word with its primary related term.
func (l *Lexicon) Expand(query string) []string {
	fields := strings.Fields(Normalize(query))
	var rewrites []string
	for i, field := range fields {
		related := l.SynonymsOf(field)
		if len(related) == 0 {
			continue
		}
		substituted := make([]string, len(fields))
		copy(substituted, fields)
		substituted[i] = related[0]
		rewrites = append(rewrites, strings.Join(substituted, " "))
	}
	return rewrites
}

// HasKeyPhrase reports whether the stemmed word set of text covers one of the
// lexicon's intent phrases.
func (l *Lexicon) HasKeyPhrase(text string) bool {
	stems := make(map[string]struct{})
	for _, w := range l.ExtractWords(text) {
		stems[w] = struct{}{}
	}
	for _, phrase := range l.KeyPhrases {
		matched := true
		for _, word := range strings.Fields(Normalize(phrase)) {
			if _, ok := stems[l.Stem(word)]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
