package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hindibooks/storefront/internal/api"
	"github.com/hindibooks/storefront/internal/core/ports"
	"github.com/hindibooks/storefront/internal/core/query"
	"github.com/hindibooks/storefront/internal/core/service"
	"github.com/hindibooks/storefront/internal/infrastructure/apiclient"
	"github.com/hindibooks/storefront/internal/infrastructure/db/file"
	"github.com/hindibooks/storefront/internal/infrastructure/db/memory"
	mongostore "github.com/hindibooks/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/hindibooks/storefront/internal/infrastructure/db/redis"
	"github.com/hindibooks/storefront/internal/infrastructure/http/handlers"
	"github.com/hindibooks/storefront/internal/pkg/config"
	"github.com/hindibooks/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "storefront",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("backend", cfg.API.BaseURL).
		Str("token_store", cfg.TokenStore.Backend).
		Msg("storefront agent starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open token store")
	}
	defer closeStore()

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, store, log)

	cache := query.NewCache()
	sessions := service.NewSessionService(client, log)
	catalog := service.NewCatalogService(client, cache, service.CatalogConfig{
		BooksStale:      cfg.Cache.BooksStale,
		FeaturedStale:   cfg.Cache.FeaturedStale,
		BookStale:       cfg.Cache.BookStale,
		CategoriesStale: cfg.Cache.CategoriesStale,
		SearchStale:     cfg.Cache.SearchStale,
		SearchMinLength: cfg.Cache.SearchMinLength,
	}, log)
	cart := service.NewCartService(client, cache, cfg.Cache.CartStale, log)
	unwatch := cart.WatchSession(sessions)
	defer unwatch()

	snap := sessions.Resolve(ctx)
	log.Info().Str("state", string(snap.State)).Msg("session resolved")

	go cache.RunJanitor(ctx, cfg.Cache.JanitorInterval, cfg.Cache.Retention)

	e := api.NewRouter(api.Dependencies{
		Sessions: sessions,
		Catalog:  catalog,
		Cart:     cart,
		Checks: map[string]handlers.Check{
			"backend": func(ctx context.Context) error {
				_, err := client.Health(ctx)
				return err
			},
			"token_store": store.Ping,
		},
		Logger: logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	log.Info().Msg("graceful shutdown complete")
}

// openTokenStore connects the configured durable token store. The returned
// func releases its connections.
func openTokenStore(ctx context.Context, cfg *config.Config) (ports.TokenStore, func(), error) {
	switch cfg.TokenStore.Backend {
	case config.TokenStoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewTokenStore(client, cfg.TokenStore.Key), func() { _ = client.Close() }, nil

	case config.TokenStoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return mongostore.NewTokenStore(db, cfg.TokenStore.Key), closeFn, nil

	case config.TokenStoreMemory:
		return memory.NewTokenStore(), func() {}, nil

	case config.TokenStoreFile:
		return file.NewTokenStore(cfg.TokenStore.File), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown token store %q", cfg.TokenStore.Backend)
}
