package retrieval

import (
	"encoding/json"
	"time"

	"github.com/helpdeskhq/smartfaq/pkg/metrics"
)

// Category is the closed set of page-context tags narrowing which FAQs apply.
type Category string

const (
	CategoryProduct     Category = "product"
	CategoryAccount     Category = "account"
	CategorySalesFunnel Category = "sales-funnel"
	CategoryGeneral     Category = "general"
)

// VariantReason tags why a query variant was generated.
type VariantReason string

const (
	ReasonBase     VariantReason = "base"
	ReasonProduct  VariantReason = "product"
	ReasonCategory VariantReason = "category"
	ReasonSynonym  VariantReason = "synonym"
)

// MatchType labels how strongly an answer matched the query.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchSemantic MatchType = "semantic"
	MatchPartial  MatchType = "partial"
	MatchWeak     MatchType = "weak"
)

// QAEntry is one question/answer pair carried in a FAQ row payload.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Row is the FAQ record shape returned by the candidate store. The sync
// collaborator owns writes; this core only reads.
type Row struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	LanguageCode      string          `json:"languageCode,omitempty"`
	Category          Category        `json:"category,omitempty"`
	ProductRef        string          `json:"productRef,omitempty"`
	MetaKeywords      string          `json:"metaKeywords,omitempty"`
	MetaDescription   string          `json:"metaDescription,omitempty"`
	QAData            json.RawMessage `json:"qaData,omitempty"`
	LastUpdated       time.Time       `json:"lastUpdated,omitempty"`
	Relevance         float64         `json:"relevance,omitempty"`
	EnhancedRelevance float64         `json:"enhancedRelevance,omitempty"`
	Strategy          string          `json:"strategy,omitempty"`
}

// SearchFilters narrows a candidate store query. Zero values mean "no filter";
// Limit falls back to the configured cap when zero.
type SearchFilters struct {
	Language   string   `json:"language,omitempty"`
	Category   Category `json:"category,omitempty"`
	ProductRef string   `json:"productRef,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// RelaxChain returns progressively broader copies of f, in the fixed
// fallback order: full set, drop product, drop category, drop both,
// language only, no filters. Combinations already seen are skipped.
func (f SearchFilters) RelaxChain() []SearchFilters {
	chain := make([]SearchFilters, 0, 6)
	seen := make(map[SearchFilters]struct{}, 6)
	add := func(c SearchFilters) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		chain = append(chain, c)
	}

	add(f)
	noProduct := f
	noProduct.ProductRef = ""
	add(noProduct)
	noCategory := f
	noCategory.Category = ""
	add(noCategory)
	neither := noProduct
	neither.Category = ""
	add(neither)
	add(SearchFilters{Language: f.Language, Limit: f.Limit})
	add(SearchFilters{Limit: f.Limit})
	return chain
}

// SessionContext carries per-conversation context supplied by the caller.
type SessionContext struct {
	SessionID  string   `json:"sessionId,omitempty"`
	Language   string   `json:"language,omitempty"`
	Category   Category `json:"category,omitempty"`
	ProductRef string   `json:"productRef,omitempty"`
}

// QueryVariant is one alternate phrasing of the user's query.
type QueryVariant struct {
	Query         string        `json:"query"`
	Weight        float64       `json:"weight"`
	Reason        VariantReason `json:"reason"`
	Filters       SearchFilters `json:"filters"`
	CacheKey      string        `json:"cacheKey"`
	AllowFallback bool          `json:"allowFallback"`
}

// ScoredCandidate is a FAQ row surfaced by one or more variants. Entries for
// the same FAQ id are merged keeping the maximum score and the union of
// contributing variant reasons.
type ScoredCandidate struct {
	FaqID   int64           `json:"faqId"`
	Row     Row             `json:"row"`
	Score   float64         `json:"score"`
	Sources []VariantReason `json:"sources"`
	Rank    int             `json:"rank"`
}

// RetrievalResult is the ranked outcome of a retrieve call.
type RetrievalResult struct {
	TopCandidates    []ScoredCandidate   `json:"topCandidates"`
	RankedCandidates []ScoredCandidate   `json:"rankedCandidates"`
	Variants         []QueryVariant      `json:"variants"`
	Usage            metrics.SearchUsage `json:"usage"`
}

// MatchResult is the best question/answer pair selected for a query.
type MatchResult struct {
	FaqID     int64     `json:"faqId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Score     float64   `json:"score"`
	MatchType MatchType `json:"matchType"`
}
