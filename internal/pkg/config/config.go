package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends selectable with TOKEN_STORE.
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMongo  = "mongo"
	TokenStoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API        APIConfig
	Cache      CacheConfig
	TokenStore TokenStoreConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

// APIConfig points at the bookstore backend. A zero Timeout leaves requests
// bounded only by the caller's context.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8000"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=0s"`
}

// CacheConfig holds the stale window of every query family plus the
// janitor's schedule.
type CacheConfig struct {
	BooksStale      time.Duration `env:"CACHE_BOOKS_STALE,      default=5m"`
	FeaturedStale   time.Duration `env:"CACHE_FEATURED_STALE,   default=10m"`
	BookStale       time.Duration `env:"CACHE_BOOK_STALE,       default=5m"`
	CategoriesStale time.Duration `env:"CACHE_CATEGORIES_STALE, default=10m"`
	SearchStale     time.Duration `env:"CACHE_SEARCH_STALE,     default=2m"`
	CartStale       time.Duration `env:"CACHE_CART_STALE,       default=30s"`
	SearchMinLength int           `env:"CACHE_SEARCH_MIN_LENGTH, default=2"`

	JanitorInterval time.Duration `env:"CACHE_JANITOR_INTERVAL, default=1m"`
	Retention       time.Duration `env:"CACHE_RETENTION,        default=5m"`
}

type TokenStoreConfig struct {
	Backend string `env:"TOKEN_STORE, default=file"`
	File    string `env:"TOKEN_FILE,  default=.storefront/auth_token"`
	Key     string `env:"TOKEN_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes and validates configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("API_TIMEOUT must not be negative"))
	}

	for name, d := range map[string]time.Duration{
		"CACHE_BOOKS_STALE":      c.Cache.BooksStale,
		"CACHE_FEATURED_STALE":   c.Cache.FeaturedStale,
		"CACHE_BOOK_STALE":       c.Cache.BookStale,
		"CACHE_CATEGORIES_STALE": c.Cache.CategoriesStale,
		"CACHE_SEARCH_STALE":     c.Cache.SearchStale,
		"CACHE_CART_STALE":       c.Cache.CartStale,
		"CACHE_RETENTION":        c.Cache.Retention,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.Cache.JanitorInterval <= 0 {
		errs = append(errs, errors.New("CACHE_JANITOR_INTERVAL must be positive"))
	}

	switch c.TokenStore.Backend {
	case TokenStoreFile:
		if c.TokenStore.File == "" {
			errs = append(errs, errors.New("TOKEN_FILE is required for the file token store"))
		}
	case TokenStoreRedis, TokenStoreMongo, TokenStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE must be one of file, redis, mongo, memory, got %q", c.TokenStore.Backend))
	}

	return errors.Join(errs...)
}

// Production reports whether ENV selects production behaviour.
func (c *Config) Production() bool {
	return c.Env == "production"
}
