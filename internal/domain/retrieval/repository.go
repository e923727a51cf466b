package retrieval

import "context"

// CandidateRepository is the query surface over the FAQ record store. The
// store is read-only from this core's perspective; the sync collaborator
// owns writes.
type CandidateRepository interface {
	// SearchFaqs unions the full-text, JSON-content, word-match and metadata
	// strategies, deduplicated by record id and sorted by relevance.
	SearchFaqs(ctx context.Context, query string, filters SearchFilters) ([]Row, error)
	// SearchFaqContent is the pattern-only fallback search over title,
	// keywords, description and QA content.
	SearchFaqContent(ctx context.Context, query string, filters SearchFilters) ([]Row, error)
	// GetFaqs is a direct filtered lookup sharing the same Row shape.
	GetFaqs(ctx context.Context, filters SearchFilters) ([]Row, error)
}
