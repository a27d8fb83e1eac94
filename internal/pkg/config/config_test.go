package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("expected no timeout by default, got %v", cfg.API.Timeout)
	}
	if cfg.Cache.BooksStale != 5*time.Minute || cfg.Cache.CartStale != 30*time.Second {
		t.Errorf("unexpected stale windows: %+v", cfg.Cache)
	}
	if cfg.Cache.SearchMinLength != 2 {
		t.Errorf("expected search minimum 2, got %d", cfg.Cache.SearchMinLength)
	}
	if cfg.TokenStore.Backend != TokenStoreFile {
		t.Errorf("expected file token store, got %q", cfg.TokenStore.Backend)
	}
	if cfg.Production() {
		t.Error("default env must not be production")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":      "https://books.example.com/api",
		"CACHE_CART_STALE":  "0s",
		"TOKEN_STORE":       "redis",
		"REDIS_ADDR":        "cache:6379",
		"ENV":               "production",
		"CACHE_BOOKS_STALE": "90s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://books.example.com/api" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.Cache.CartStale != 0 {
		t.Errorf("expected zero cart window, got %v", cfg.Cache.CartStale)
	}
	if cfg.Cache.BooksStale != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.Cache.BooksStale)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.TokenStore.Backend != TokenStoreRedis {
		t.Errorf("unexpected token store config: %+v %+v", cfg.TokenStore, cfg.Redis)
	}
	if !cfg.Production() {
		t.Error("expected production")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"relative base url", map[string]string{"API_BASE_URL": "/api"}, "API_BASE_URL"},
		{"unknown store", map[string]string{"TOKEN_STORE": "sqlite"}, "TOKEN_STORE"},
		{"negative window", map[string]string{"CACHE_SEARCH_STALE": "-1s"}, "CACHE_SEARCH_STALE"},
		{"negative timeout", map[string]string{"API_TIMEOUT": "-5s"}, "API_TIMEOUT"},
		{"zero janitor", map[string]string{"CACHE_JANITOR_INTERVAL": "0s"}, "CACHE_JANITOR_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
