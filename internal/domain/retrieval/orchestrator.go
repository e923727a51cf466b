package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "github.com/helpdeskhq/smartfaq/pkg/errors"
	"github.com/helpdeskhq/smartfaq/pkg/metrics"
)

// Service exposes the retrieval pipeline to the chat surface.
type Service interface {
	// Retrieve returns the ranked candidates for a query, or nil when every
	// variant produced zero candidates. Expected store and cache failures are
	// logged and treated as empty results; only invalid input raises.
	Retrieve(ctx context.Context, query string, session SessionContext) (*RetrievalResult, error)
}

type service struct {
	cfg    Config
	lex    *Lexicon
	repo   CandidateRepository
	cache  RowCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the retrieval orchestrator. The cache may be nil; every
// lookup then goes straight to the repository.
func NewService(cfg Config, lex *Lexicon, repo CandidateRepository, cache RowCache, logger *slog.Logger) (Service, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap("invalid_config", "retrieval config rejected", err)
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &service{
		cfg:    cfg,
		lex:    lex,
		repo:   repo,
		cache:  cache,
		logger: logger.With("component", "retrieval.service"),
		now:    time.Now,
	}, nil
}

func (s *service) Retrieve(ctx context.Context, query string, session SessionContext) (*RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap("invalid_input", "query cannot be empty", nil)
	}

	started := s.now()
	variants := BuildVariants(s.cfg, s.lex, query, session)
	usage := metrics.SearchUsage{VariantsTried: len(variants)}

	accumulated := make(map[int64]*ScoredCandidate)
	order := make([]int64, 0, 16)

	for _, variant := range variants {
		rows := s.searchVariant(ctx, variant, &usage)
		if len(rows) == 0 {
			continue
		}
		now := s.now()
		for _, row := range rows {
			score := s.scoreRow(row, variant, session, now)
			existing, ok := accumulated[row.ID]
			if !ok {
				accumulated[row.ID] = &ScoredCandidate{
					FaqID:   row.ID,
					Row:     row,
					Score:   score,
					Sources: []VariantReason{variant.Reason},
				}
				order = append(order, row.ID)
				continue
			}
			if score > existing.Score {
				existing.Score = score
				existing.Row = row
			}
			existing.Sources = appendReason(existing.Sources, variant.Reason)
		}
	}

	if len(order) == 0 {
		return nil, nil
	}

	ranked := make([]ScoredCandidate, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *accumulated[id])
	}
	// stable sort keeps accumulation order on ties, so output is
	// deterministic for deterministic store responses
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	top := ranked
	if len(top) > s.cfg.TopK {
		top = top[:s.cfg.TopK]
	}
	filtered := make([]ScoredCandidate, 0, len(top))
	for _, candidate := range top {
		if candidate.Score >= s.cfg.MinScore {
			filtered = append(filtered, candidate)
		}
	}
	// the floor is advisory: when nothing clears it, surface the top-K anyway
	if len(filtered) == 0 {
		filtered = top
	}

	usage.DurationMs = s.now().Sub(started).Milliseconds()
	return &RetrievalResult{
		TopCandidates:    filtered,
		RankedCandidates: ranked,
		Variants:         variants,
		Usage:            usage,
	}, nil
}

// searchVariant consults the cache, falls back to the primary search on a
// miss, and runs the filter-relaxation chain when the variant permits it.
// All failures degrade to an empty result.
func (s *service) searchVariant(ctx context.Context, variant QueryVariant, usage *metrics.SearchUsage) []Row {
	if s.cache != nil {
		if rows, ok := s.cache.Get(ctx, variant.CacheKey); ok {
			usage.CacheHits++
			if len(rows) == 0 && variant.AllowFallback {
				return s.fallbackSearch(ctx, variant, usage)
			}
			return rows
		}
	}

	rows, err := s.repo.SearchFaqs(ctx, variant.Query, variant.Filters)
	if err != nil {
		s.logger.Warn("candidate search failed",
			"reason", variant.Reason, "query", variant.Query, "error", err)
		rows = nil
	} else if s.cache != nil {
		s.cache.Set(ctx, variant.CacheKey, rows, s.cfg.CacheTTL)
	}

	if len(rows) == 0 && variant.AllowFallback {
		return s.fallbackSearch(ctx, variant, usage)
	}
	return rows
}

// fallbackSearch relaxes filters in the fixed order and stops at the first
// non-empty result. Fallback results are not cached.
func (s *service) fallbackSearch(ctx context.Context, variant QueryVariant, usage *metrics.SearchUsage) []Row {
	for _, filters := range variant.Filters.RelaxChain() {
		usage.FallbackSearches++
		rows, err := s.repo.SearchFaqContent(ctx, variant.Query, filters)
		if err != nil {
			s.logger.Warn("fallback search failed",
				"reason", variant.Reason, "query", variant.Query, "error", err)
			continue
		}
		if len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// scoreRow applies the weighted relevance formula plus the product, category
// and recency boosts.
func (s *service) scoreRow(row Row, variant QueryVariant, session SessionContext, now time.Time) float64 {
	score := storedRelevance(row, s.cfg) * variant.Weight
	if session.ProductRef != "" && row.ProductRef == session.ProductRef {
		score += s.cfg.ProductBoost
	}
	if session.Category != "" && row.Category == session.Category {
		score += s.cfg.CategoryBoost
	}
	if !row.LastUpdated.IsZero() {
		age := now.Sub(row.LastUpdated)
		if age >= 0 && age <= s.cfg.RecencyWindow {
			fraction := 1 - age.Seconds()/s.cfg.RecencyWindow.Seconds()
			score += s.cfg.RecencyBoostMin + (s.cfg.RecencyBoostMax-s.cfg.RecencyBoostMin)*fraction
		}
	}
	return score
}

// storedRelevance resolves the enhanced relevance, falling back to the raw
// relevance and finally to the configured default for unscored rows.
func storedRelevance(row Row, cfg Config) float64 {
	if row.EnhancedRelevance > 0 {
		return row.EnhancedRelevance
	}
	if row.Relevance > 0 {
		return row.Relevance
	}
	return cfg.DefaultRelevance
}

func appendReason(reasons []VariantReason, reason VariantReason) []VariantReason {
	for _, existing := range reasons {
		if existing == reason {
			return reasons
		}
	}
	return append(reasons, reason)
}
