package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Session   SessionConfig   `yaml:"session"`
	Lexicon   LexiconConfig   `yaml:"lexicon"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetrievalConfig holds the retrieval core knobs surfaced to operations.
type RetrievalConfig struct {
	MaxVariants           int           `yaml:"maxVariants"`
	VariantDecay          float64       `yaml:"variantDecay"`
	TopK                  int           `yaml:"topK"`
	MinScore              float64       `yaml:"minScore"`
	ResultLimit           int           `yaml:"resultLimit"`
	RecencyWindow         time.Duration `yaml:"recencyWindow"`
	MatchThreshold        float64       `yaml:"matchThreshold"`
	ContactMatchThreshold float64       `yaml:"contactMatchThreshold"`
	CacheTTL              time.Duration `yaml:"cacheTtl"`
}

// CacheConfig selects and sizes the search cache.
type CacheConfig struct {
	Capacity      int           `yaml:"capacity"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	Valkey        ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings for the FAQ store.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SessionConfig sizes the chat session store.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

// LexiconConfig points at an optional replacement language resource.
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_MAX_VARIANTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.MaxVariants = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_MIN_SCORE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.MinScore = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_MATCH_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.MatchThreshold = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Retrieval.CacheTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_CAPACITY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Capacity = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = parsed
		}
	}
	if v := os.Getenv("LEXICON_PATH"); v != "" {
		cfg.Lexicon.Path = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Retrieval: RetrievalConfig{
			MaxVariants:           4,
			VariantDecay:          0.15,
			TopK:                  3,
			MinScore:              0.35,
			ResultLimit:           10,
			RecencyWindow:         30 * 24 * time.Hour,
			MatchThreshold:        0.3,
			ContactMatchThreshold: 0.2,
			CacheTTL:              5 * time.Minute,
		},
		Cache: CacheConfig{
			Capacity:      500,
			SweepInterval: time.Minute,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Session: SessionConfig{
			TTL:             30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Retrieval.MaxVariants <= 0 {
		return errors.New("retrieval.maxVariants must be positive")
	}
	if c.Retrieval.TopK <= 0 {
		return errors.New("retrieval.topK must be positive")
	}
	if c.Retrieval.MinScore < 0 {
		return errors.New("retrieval.minScore cannot be negative")
	}
	if c.Retrieval.ResultLimit <= 0 {
		return errors.New("retrieval.resultLimit must be positive")
	}
	if c.Retrieval.MatchThreshold <= 0 || c.Retrieval.MatchThreshold > 1 {
		return errors.New("retrieval.matchThreshold must be in (0, 1]")
	}
	if c.Retrieval.CacheTTL < 0 {
		return errors.New("retrieval.cacheTtl cannot be negative")
	}
	if c.Cache.Capacity <= 0 {
		return errors.New("cache.capacity must be positive")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
