package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

// Valkey is a RowCache backed by a Valkey-compatible database, for
// deployments where several replicas share one search cache. Capacity and
// eviction are delegated to the server; this client only sets TTLs. Every
// failure degrades to a miss so the search path never blocks on the cache.
type Valkey struct {
	client valkey.Client
	prefix string
	logger *slog.Logger
}

// NewValkey constructs the store.
func NewValkey(client valkey.Client, prefix string, logger *slog.Logger) *Valkey {
	if prefix == "" {
		prefix = "smartfaq"
	}
	return &Valkey{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "cache.valkey"),
	}
}

// Get implements retrieval.RowCache.
func (v *Valkey) Get(ctx context.Context, key string) ([]retrieval.Row, bool) {
	cmd := v.client.B().Get().Key(v.fullKey(key)).Build()
	payload, err := v.client.Do(ctx, cmd).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			v.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var rows []retrieval.Row
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		v.logger.Warn("cache payload corrupt", "key", key, "error", err)
		return nil, false
	}
	return rows, true
}

// Set implements retrieval.RowCache.
func (v *Valkey) Set(ctx context.Context, key string, rows []retrieval.Row, ttl time.Duration) {
	if rows == nil {
		rows = []retrieval.Row{}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		v.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	builder := v.client.B().Set().Key(v.fullKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		v.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Delete implements retrieval.RowCache.
func (v *Valkey) Delete(ctx context.Context, key string) bool {
	cmd := v.client.B().Del().Key(v.fullKey(key)).Build()
	removed, err := v.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		v.logger.Warn("cache delete failed", "key", key, "error", err)
		return false
	}
	return removed > 0
}

// Has implements retrieval.RowCache.
func (v *Valkey) Has(ctx context.Context, key string) bool {
	cmd := v.client.B().Exists().Key(v.fullKey(key)).Build()
	count, err := v.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			v.logger.Warn("cache exists failed", "key", key, "error", err)
		}
		return false
	}
	return count > 0
}

func (v *Valkey) fullKey(key string) string {
	return v.prefix + ":" + key
}

var _ retrieval.RowCache = (*Valkey)(nil)
