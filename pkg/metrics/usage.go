package metrics

// SearchUsage captures the retrieval effort spent on a request.
type SearchUsage struct {
	DurationMs       int64 `json:"durationMs,omitempty"`
	VariantsTried    int   `json:"variantsTried"`
	CacheHits        int   `json:"cacheHits"`
	FallbackSearches int   `json:"fallbackSearches"`
}

// IsZero reports whether usage data is absent.
func (u SearchUsage) IsZero() bool {
	return u.DurationMs == 0 && u.VariantsTried == 0 && u.CacheHits == 0 && u.FallbackSearches == 0
}
