package faqrepo

import (
	"sort"
	"strings"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

// Strategy tiers and post-pass boosts shared by the repository
// implementations.
const (
	tierJSONExactQuestion = 0.9
	tierJSONExactAnswer   = 0.7
	tierJSONWordQuestion  = 0.7
	tierJSONWordAnswer    = 0.5
	tierWordMatch         = 0.4
	tierMetadata          = 0.3

	boostExactPhrase = 0.15
	boostPerWord     = 0.05
	maxEnhanced      = 1.0

	minSignificantWordLen = 4
	maxSignificantWords   = 6
)

// significantWords returns the normalized query words long enough to be
// worth a per-word search, capped to keep queries bounded.
func significantWords(query string) []string {
	fields := strings.Fields(retrieval.Normalize(query))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < minSignificantWordLen {
			continue
		}
		words = append(words, field)
		if len(words) >= maxSignificantWords {
			break
		}
	}
	return words
}

// enhanceRows runs the post-pass over unioned rows: exact-phrase hits and
// per-word hits in the row's searchable text raise the enhanced relevance,
// capped at 1.0.
func enhanceRows(query string, rows []retrieval.Row) {
	phrase := retrieval.Normalize(query)
	words := significantWords(query)
	for i := range rows {
		haystack := searchableText(rows[i])
		enhanced := rows[i].Relevance
		if phrase != "" && strings.Contains(haystack, phrase) {
			enhanced += boostExactPhrase
		}
		for _, word := range words {
			if strings.Contains(haystack, word) {
				enhanced += boostPerWord
			}
		}
		if enhanced > maxEnhanced {
			enhanced = maxEnhanced
		}
		rows[i].EnhancedRelevance = enhanced
	}
}

// sortRows orders by final score descending, then recency descending.
func sortRows(rows []retrieval.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := finalScore(rows[i]), finalScore(rows[j])
		if si != sj {
			return si > sj
		}
		return rows[i].LastUpdated.After(rows[j].LastUpdated)
	})
}

func finalScore(row retrieval.Row) float64 {
	if row.EnhancedRelevance > 0 {
		return row.EnhancedRelevance
	}
	return row.Relevance
}

func searchableText(row retrieval.Row) string {
	parts := []string{row.Title, row.MetaKeywords, row.MetaDescription, string(row.QAData)}
	return retrieval.Normalize(strings.Join(parts, " "))
}

// mergeRows unions strategy results by record id, keeping the highest
// relevance and its strategy tag.
func mergeRows(dst map[int64]retrieval.Row, order *[]int64, rows []retrieval.Row) {
	for _, row := range rows {
		existing, ok := dst[row.ID]
		if !ok {
			dst[row.ID] = row
			*order = append(*order, row.ID)
			continue
		}
		if row.Relevance > existing.Relevance {
			dst[row.ID] = row
		}
	}
}

func truncateRows(rows []retrieval.Row, limit int) []retrieval.Row {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
