package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
	"github.com/helpdeskhq/smartfaq/internal/infra/cache"
	"github.com/helpdeskhq/smartfaq/internal/infra/config"
	"github.com/helpdeskhq/smartfaq/internal/infra/faqrepo"
	"github.com/helpdeskhq/smartfaq/internal/infra/session"
)

func provideRetrievalConfig(cfg *config.Config) retrieval.Config {
	base := retrieval.DefaultConfig()
	base.MaxVariants = cfg.Retrieval.MaxVariants
	base.VariantDecay = cfg.Retrieval.VariantDecay
	base.TopK = cfg.Retrieval.TopK
	base.MinScore = cfg.Retrieval.MinScore
	base.ResultLimit = cfg.Retrieval.ResultLimit
	base.RecencyWindow = cfg.Retrieval.RecencyWindow
	base.MatchThreshold = cfg.Retrieval.MatchThreshold
	base.ContactMatchThreshold = cfg.Retrieval.ContactMatchThreshold
	base.CacheTTL = cfg.Retrieval.CacheTTL
	return base
}

func provideLexicon(cfg *config.Config, logger *slog.Logger) (*retrieval.Lexicon, error) {
	if path := strings.TrimSpace(cfg.Lexicon.Path); path != "" {
		lex, err := retrieval.LoadLexicon(path)
		if err != nil {
			return nil, err
		}
		logger.Info("lexicon loaded", "path", path)
		return lex, nil
	}
	return retrieval.DefaultLexicon(), nil
}

func provideCandidateRepository(cfg *config.Config, logger *slog.Logger) (retrieval.CandidateRepository, func(), error) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using in-memory repository")
		repo, err := faqrepo.NewMemoryRepository()
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("postgres repository enabled")
	return faqrepo.NewPostgresRepository(pool, logger), pool.Close, nil
}

func provideRowCache(cfg *config.Config, logger *slog.Logger) (retrieval.RowCache, func()) {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		} else if client, err := valkey.NewClient(opt); err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
				logger.Error("valkey ping failed, falling back to memory cache", "error", err)
				client.Close()
			} else {
				logger.Info("valkey search cache enabled", "addr", cfg.Cache.Valkey.Addr)
				return cache.NewValkey(client, "smartfaq", logger), client.Close
			}
		}
	}
	memory := cache.NewMemory(cfg.Cache.Capacity, cfg.Retrieval.CacheTTL, cfg.Cache.SweepInterval)
	return memory, memory.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}, nil
}

func provideSessionStore(cfg *config.Config) (*session.Store, func()) {
	store := session.NewStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
	return store, store.Close
}
