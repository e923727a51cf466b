package faqrepo

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

// indexedFaq is the document shape stored in the bleve index.
type indexedFaq struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
}

// MemoryRepository is an in-memory CandidateRepository backed by a bleve
// full-text index. It serves development and tests when no Postgres DSN is
// configured, mirroring the production strategy tiers.
type MemoryRepository struct {
	mu    sync.RWMutex
	index bleve.Index
	rows  map[int64]retrieval.Row
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() (*MemoryRepository, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &MemoryRepository{
		index: index,
		rows:  make(map[int64]retrieval.Row),
	}, nil
}

// Add indexes FAQ rows. Rows replace earlier rows with the same id.
func (r *MemoryRepository) Add(rows ...retrieval.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		doc := indexedFaq{
			Title:       row.Title,
			Content:     qaText(row),
			Keywords:    row.MetaKeywords,
			Description: row.MetaDescription,
		}
		if err := r.index.Index(strconv.FormatInt(row.ID, 10), doc); err != nil {
			return err
		}
		r.rows[row.ID] = row
	}
	return nil
}

// Close releases the index.
func (r *MemoryRepository) Close() error {
	return r.index.Close()
}

// SearchFaqs implements retrieval.CandidateRepository: the bleve match query
// stands in for the full-text strategy, followed by the same word-match and
// metadata passes the Postgres repository runs.
func (r *MemoryRepository) SearchFaqs(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	merged := make(map[int64]retrieval.Row)
	order := make([]int64, 0, 16)

	fullText, err := r.fullTextSearch(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	mergeRows(merged, &order, fullText)
	mergeRows(merged, &order, r.scanRows(filters, func(row retrieval.Row) float64 {
		return wordMatchTier(query, row)
	}))
	mergeRows(merged, &order, r.scanRows(filters, func(row retrieval.Row) float64 {
		return metadataTier(query, row)
	}))

	if len(order) == 0 {
		return nil, nil
	}
	out := make([]retrieval.Row, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	enhanceRows(query, out)
	sortRows(out)
	return truncateRows(out, filters.Limit), nil
}

// SearchFaqContent implements the pattern-only fallback search.
func (r *MemoryRepository) SearchFaqContent(_ context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	pattern := retrieval.Normalize(query)
	out := r.scanRows(filters, func(row retrieval.Row) float64 {
		if pattern != "" && strings.Contains(searchableText(row), pattern) {
			return tierMetadata
		}
		return -1
	})
	sortRows(out)
	return truncateRows(out, filters.Limit), nil
}

// GetFaqs implements the direct filtered lookup.
func (r *MemoryRepository) GetFaqs(_ context.Context, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	out := r.scanRows(filters, func(retrieval.Row) float64 { return 0 })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return truncateRows(out, filters.Limit), nil
}

func (r *MemoryRepository) fullTextSearch(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	request := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), 50, 0, false)
	result, err := r.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []retrieval.Row
	for _, hit := range result.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		row, ok := r.rows[id]
		if !ok || !matchesFilters(row, filters) {
			continue
		}
		// squash the unbounded bleve score into the (0, 1) relevance range
		row.Relevance = hit.Score / (hit.Score + 1)
		row.Strategy = "fulltext"
		out = append(out, row)
	}
	return out, nil
}

// scanRows walks all rows in id order, dropping those the scorer rejects
// with a negative value. A zero score keeps the row unscored (GetFaqs).
func (r *MemoryRepository) scanRows(filters retrieval.SearchFilters, score func(retrieval.Row) float64) []retrieval.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []retrieval.Row
	for _, id := range ids {
		row := r.rows[id]
		if !matchesFilters(row, filters) {
			continue
		}
		relevance := score(row)
		if relevance < 0 {
			continue
		}
		row.Relevance = relevance
		out = append(out, row)
	}
	return out
}

func wordMatchTier(query string, row retrieval.Row) float64 {
	haystack := searchableText(row)
	for _, word := range significantWords(query) {
		if strings.Contains(haystack, word) {
			return tierWordMatch
		}
	}
	return -1
}

func metadataTier(query string, row retrieval.Row) float64 {
	pattern := retrieval.Normalize(query)
	if pattern == "" {
		return -1
	}
	meta := retrieval.Normalize(strings.Join([]string{row.Title, row.MetaKeywords, row.MetaDescription}, " "))
	if strings.Contains(meta, pattern) {
		return tierMetadata
	}
	return -1
}

func matchesFilters(row retrieval.Row, filters retrieval.SearchFilters) bool {
	if filters.Language != "" && row.LanguageCode != filters.Language {
		return false
	}
	if filters.Category != "" && row.Category != filters.Category {
		return false
	}
	if filters.ProductRef != "" && row.ProductRef != filters.ProductRef {
		return false
	}
	return true
}

func qaText(row retrieval.Row) string {
	entries, err := retrieval.ParseQAEntries(row.QAData)
	if err != nil {
		return ""
	}
	parts := make([]string, 0, len(entries)*2)
	for _, entry := range entries {
		parts = append(parts, entry.Question, entry.Answer)
	}
	return strings.Join(parts, " ")
}

var _ retrieval.CandidateRepository = (*MemoryRepository)(nil)
