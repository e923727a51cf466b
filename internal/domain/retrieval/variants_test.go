package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildVariantsFullContext(t *testing.T) {
	cfg := DefaultConfig()
	lex := DefaultLexicon()
	session := SessionContext{
		Language:   "fr",
		Category:   CategoryAccount,
		ProductRef: "widget-pro",
	}

	variants := BuildVariants(cfg, lex, "contacter le support", session)
	require.Len(t, variants, cfg.MaxVariants)

	require.Equal(t, ReasonBase, variants[0].Reason)
	require.Equal(t, "contacter le support", variants[0].Query)
	require.Equal(t, 1.0, variants[0].Weight)
	require.True(t, variants[0].AllowFallback)

	require.Equal(t, ReasonProduct, variants[1].Reason)
	require.Equal(t, "widget-pro contacter le support", variants[1].Query)
	require.InDelta(t, 0.85, variants[1].Weight, 1e-9)
	require.True(t, variants[1].AllowFallback)

	require.Equal(t, ReasonCategory, variants[2].Reason)
	require.Equal(t, "compte contacter le support", variants[2].Query)
	require.False(t, variants[2].AllowFallback)

	require.Equal(t, ReasonSynonym, variants[3].Reason)
	require.Equal(t, "contact le support", variants[3].Query)
	require.True(t, variants[3].AllowFallback)

	for i := 1; i < len(variants); i++ {
		require.LessOrEqual(t, variants[i].Weight, variants[i-1].Weight)
	}
	for _, v := range variants {
		require.NotEmpty(t, v.CacheKey)
		require.Equal(t, session.Language, v.Filters.Language)
		require.Equal(t, cfg.ResultLimit, v.Filters.Limit)
	}
}

func TestBuildVariantsBareSession(t *testing.T) {
	variants := BuildVariants(DefaultConfig(), DefaultLexicon(), "bonjour monde", SessionContext{})
	require.Len(t, variants, 1)
	require.Equal(t, ReasonBase, variants[0].Reason)
}

func TestBuildVariantsGeneralCategoryNeverPrefixes(t *testing.T) {
	variants := BuildVariants(DefaultConfig(), DefaultLexicon(), "bonjour monde", SessionContext{Category: CategoryGeneral})
	require.Len(t, variants, 1)
}

func TestBuildVariantsSynonymWeightFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxVariants = 6
	cfg.VariantDecay = 0.45

	variants := BuildVariants(cfg, DefaultLexicon(), "prix livraison", SessionContext{})
	require.Len(t, variants, 3)
	require.InDelta(t, 0.55, variants[1].Weight, 1e-9)
	// second synonym generation would decay to 0.1, clamped at the floor
	require.InDelta(t, cfg.SynonymWeightFloor, variants[2].Weight, 1e-9)
	require.False(t, variants[2].AllowFallback)
}

func TestCacheKeyDeterministic(t *testing.T) {
	filters := SearchFilters{Language: "fr", Category: CategoryProduct, ProductRef: "x", Limit: 10}

	require.Equal(t, cacheKey("Contacter le support", filters), cacheKey("  contacter le support ", filters))
	require.NotEqual(t, cacheKey("contacter le support", filters), cacheKey("autre question", filters))

	relaxed := filters
	relaxed.ProductRef = ""
	require.NotEqual(t, cacheKey("contacter le support", filters), cacheKey("contacter le support", relaxed))
}

func TestRelaxChain(t *testing.T) {
	full := SearchFilters{Language: "fr", Category: CategoryAccount, ProductRef: "widget-pro", Limit: 10}
	chain := full.RelaxChain()
	require.Equal(t, []SearchFilters{
		full,
		{Language: "fr", Category: CategoryAccount, Limit: 10},
		{Language: "fr", ProductRef: "widget-pro", Limit: 10},
		{Language: "fr", Limit: 10},
		{Limit: 10},
	}, chain)
}

func TestRelaxChainDeduplicates(t *testing.T) {
	chain := SearchFilters{Limit: 10}.RelaxChain()
	require.Equal(t, []SearchFilters{{Limit: 10}}, chain)
}
