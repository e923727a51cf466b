package retrieval

import (
	"context"
	"time"
)

// RowCache memoizes candidate search results. Implementations are strictly
// best effort: a cache failure degrades to a miss and must never surface an
// error to the search path.
type RowCache interface {
	Get(ctx context.Context, key string) ([]Row, bool)
	Set(ctx context.Context, key string, rows []Row, ttl time.Duration)
	Delete(ctx context.Context, key string) bool
	Has(ctx context.Context, key string) bool
}
