package retrieval

import (
	"hash/fnv"
	"io"
	"sort"
	"strconv"
	"strings"
)

// categoryLabels are the page labels used to prefix category variants. The
// general category never prefixes.
var categoryLabels = map[Category]string{
	CategoryProduct:     "produit",
	CategoryAccount:     "compte",
	CategorySalesFunnel: "achat",
}

// BuildVariants fans a raw query out into an ordered, weighted set of
// alternate queries: base, product-prefixed, category-prefixed, then one
// variant per synonym hit. Weights decay with generation order and building
// stops once cfg.MaxVariants is reached.
func BuildVariants(cfg Config, lex *Lexicon, query string, session SessionContext) []QueryVariant {
	base := SearchFilters{
		Language:   session.Language,
		Category:   session.Category,
		ProductRef: session.ProductRef,
		Limit:      cfg.ResultLimit,
	}

	variants := make([]QueryVariant, 0, cfg.MaxVariants)
	add := func(v QueryVariant) bool {
		if len(variants) >= cfg.MaxVariants {
			return false
		}
		v.CacheKey = cacheKey(v.Query, v.Filters)
		variants = append(variants, v)
		return true
	}

	add(QueryVariant{
		Query:         query,
		Weight:        1.0,
		Reason:        ReasonBase,
		Filters:       base,
		AllowFallback: true,
	})

	if session.ProductRef != "" {
		add(QueryVariant{
			Query:         session.ProductRef + " " + query,
			Weight:        1 - cfg.VariantDecay,
			Reason:        ReasonProduct,
			Filters:       base,
			AllowFallback: true,
		})
	}

	if label, ok := categoryLabels[session.Category]; ok {
		add(QueryVariant{
			Query:         label + " " + query,
			Weight:        1 - cfg.VariantDecay,
			Reason:        ReasonCategory,
			Filters:       base,
			AllowFallback: false,
		})
	}

	for i, rewrite := range lex.Expand(query) {
		weight := 1 - float64(i+1)*cfg.VariantDecay
		if weight < cfg.SynonymWeightFloor {
			weight = cfg.SynonymWeightFloor
		}
		if !add(QueryVariant{
			Query:         rewrite,
			Weight:        weight,
			Reason:        ReasonSynonym,
			Filters:       base,
			AllowFallback: i == 0,
		}) {
			break
		}
	}

	return variants
}

// cacheKey hashes the query text plus the sorted, non-empty filter entries
// into a deterministic key.
func cacheKey(query string, f SearchFilters) string {
	entries := make([]string, 0, 4)
	if f.Language != "" {
		entries = append(entries, "lang="+f.Language)
	}
	if f.Category != "" {
		entries = append(entries, "cat="+string(f.Category))
	}
	if f.ProductRef != "" {
		entries = append(entries, "product="+f.ProductRef)
	}
	if f.Limit > 0 {
		entries = append(entries, "limit="+strconv.Itoa(f.Limit))
	}
	sort.Strings(entries)

	h := fnv.New64a()
	_, _ = io.WriteString(h, strings.ToLower(strings.TrimSpace(query)))
	for _, entry := range entries {
		_, _ = io.WriteString(h, "|"+entry)
	}
	return "faq:search:" + strconv.FormatUint(h.Sum64(), 16)
}
