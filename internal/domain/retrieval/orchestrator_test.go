package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/helpdeskhq/smartfaq/pkg/errors"
)

func TestNewServiceInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VariantDecay = 1.5

	_, err := NewService(cfg, nil, &stubRepo{}, nil, testLogger())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_config"))
}

func TestRetrieveEmptyQuery(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	result, err := svc.Retrieve(context.Background(), "   ", SessionContext{})
	require.Nil(t, result)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestRetrieveNoCandidates(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, nil)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.Nil(t, result)
	require.Equal(t, 1, repo.searchCalls)
	// the empty primary result triggered the fallback chain
	require.Equal(t, 1, repo.contentCalls)
}

func TestRetrieveStoreErrorsDegrade(t *testing.T) {
	repo := &stubRepo{
		searchFn: func(string, SearchFilters) ([]Row, error) {
			return nil, errors.New("connection refused")
		},
		contentFn: func(string, SearchFilters) ([]Row, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestRetrieveMergesAndRanks(t *testing.T) {
	repo := &stubRepo{
		searchFn: func(query string, _ SearchFilters) ([]Row, error) {
			if strings.HasPrefix(query, "wp ") {
				return []Row{
					{ID: 1, Title: "Contact", Relevance: 0.9},
					{ID: 2, Title: "Autre", Relevance: 0.4},
				}, nil
			}
			return []Row{{ID: 1, Title: "Contact", Relevance: 0.5}}, nil
		},
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{ProductRef: "wp"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 2, result.Usage.VariantsTried)

	require.Len(t, result.RankedCandidates, 2)
	first := result.RankedCandidates[0]
	require.Equal(t, int64(1), first.FaqID)
	require.Equal(t, 1, first.Rank)
	// max score wins: 0.9 from the product variant at weight 0.85
	require.InDelta(t, 0.765, first.Score, 1e-9)
	require.Equal(t, []VariantReason{ReasonBase, ReasonProduct}, first.Sources)

	second := result.RankedCandidates[1]
	require.Equal(t, int64(2), second.FaqID)
	require.Equal(t, 2, second.Rank)
	require.InDelta(t, 0.34, second.Score, 1e-9)

	// only the first candidate clears the score floor
	require.Len(t, result.TopCandidates, 1)
	require.Equal(t, int64(1), result.TopCandidates[0].FaqID)
}

func TestRetrieveProductAndCategoryBoosts(t *testing.T) {
	repo := &stubRepo{
		searchFn: func(query string, _ SearchFilters) ([]Row, error) {
			if strings.Contains(query, "wp") || strings.HasPrefix(query, "compte") {
				return nil, nil
			}
			return []Row{{ID: 3, ProductRef: "wp", Category: CategoryAccount, Relevance: 0.5}}, nil
		},
		contentFn: func(string, SearchFilters) ([]Row, error) { return nil, nil },
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{ProductRef: "wp", Category: CategoryAccount})
	require.NoError(t, err)
	require.NotNil(t, result)
	// 0.5 + 0.15 product boost + 0.1 category boost
	require.InDelta(t, 0.75, result.RankedCandidates[0].Score, 1e-9)
}

func TestRetrieveRecencyBoost(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		searchFn: func(string, SearchFilters) ([]Row, error) {
			return []Row{
				{ID: 1, Relevance: 0.5, LastUpdated: now},
				{ID: 2, Relevance: 0.5, LastUpdated: now.Add(-60 * 24 * time.Hour)},
			}, nil
		},
	}
	svc := newTestService(t, repo, nil)
	svc.(*service).now = func() time.Time { return now }

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.NotNil(t, result)

	// a just-updated row earns the full recency boost, a stale one none
	require.Equal(t, int64(1), result.RankedCandidates[0].FaqID)
	require.InDelta(t, 0.7, result.RankedCandidates[0].Score, 1e-9)
	require.InDelta(t, 0.5, result.RankedCandidates[1].Score, 1e-9)
}

func TestRetrieveAdvisoryScoreFloor(t *testing.T) {
	repo := &stubRepo{
		searchFn: func(string, SearchFilters) ([]Row, error) {
			return []Row{{ID: 9, Relevance: 0.1}}, nil
		},
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.NotNil(t, result)
	// nothing clears the floor, so the top candidates surface anyway
	require.Len(t, result.TopCandidates, 1)
	require.InDelta(t, 0.1, result.TopCandidates[0].Score, 1e-9)
}

func TestRetrieveCacheHitSkipsStore(t *testing.T) {
	repo := &stubRepo{}
	cache := &stubCache{
		getFn: func(string) ([]Row, bool) {
			return []Row{{ID: 5, Relevance: 0.6}}, true
		},
	}
	svc := newTestService(t, repo, cache)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0, repo.searchCalls)
	require.Equal(t, 1, result.Usage.CacheHits)
	require.Equal(t, int64(5), result.TopCandidates[0].FaqID)
}

func TestRetrieveCachedEmptyStillFallsBack(t *testing.T) {
	repo := &stubRepo{
		contentFn: func(string, SearchFilters) ([]Row, error) {
			return []Row{{ID: 8, Relevance: 0.5}}, nil
		},
	}
	cache := &stubCache{
		getFn: func(string) ([]Row, bool) { return []Row{}, true },
	}
	svc := newTestService(t, repo, cache)

	result, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0, repo.searchCalls)
	require.Equal(t, 1, repo.contentCalls)
	require.Equal(t, 1, result.Usage.FallbackSearches)
	require.Equal(t, int64(8), result.TopCandidates[0].FaqID)
	// fallback results are never written back to the cache
	require.Equal(t, 0, cache.sets)
}

func TestRetrievePrimaryResultsCached(t *testing.T) {
	repo := &stubRepo{
		searchFn: func(string, SearchFilters) ([]Row, error) {
			return []Row{{ID: 4, Relevance: 0.5}}, nil
		},
	}
	cache := &stubCache{}
	svc := newTestService(t, repo, cache)

	_, err := svc.Retrieve(context.Background(), "bonjour monde", SessionContext{})
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
}

func newTestService(t *testing.T, repo CandidateRepository, cache RowCache) Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), nil, repo, cache, testLogger())
	require.NoError(t, err)
	return svc
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRepo struct {
	searchFn     func(query string, filters SearchFilters) ([]Row, error)
	contentFn    func(query string, filters SearchFilters) ([]Row, error)
	searchCalls  int
	contentCalls int
}

func (s *stubRepo) SearchFaqs(_ context.Context, query string, filters SearchFilters) ([]Row, error) {
	s.searchCalls++
	if s.searchFn != nil {
		return s.searchFn(query, filters)
	}
	return nil, nil
}

func (s *stubRepo) SearchFaqContent(_ context.Context, query string, filters SearchFilters) ([]Row, error) {
	s.contentCalls++
	if s.contentFn != nil {
		return s.contentFn(query, filters)
	}
	return nil, nil
}

func (s *stubRepo) GetFaqs(_ context.Context, _ SearchFilters) ([]Row, error) {
	return nil, nil
}

type stubCache struct {
	getFn func(key string) ([]Row, bool)
	sets  int
}

func (s *stubCache) Get(_ context.Context, key string) ([]Row, bool) {
	if s.getFn != nil {
		return s.getFn(key)
	}
	return nil, false
}

func (s *stubCache) Set(_ context.Context, _ string, _ []Row, _ time.Duration) {
	s.sets++
}

func (s *stubCache) Delete(_ context.Context, _ string) bool { return false }

func (s *stubCache) Has(_ context.Context, _ string) bool { return false }
