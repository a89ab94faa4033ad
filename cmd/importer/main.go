package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trust_ledger/internal/adapters/marketplace"
	"trust_ledger/internal/adapters/observability"
	redisad "trust_ledger/internal/adapters/redis"
	"trust_ledger/internal/app"
	"trust_ledger/internal/shared"
	mysqlrepo "trust_ledger/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(observability.InitRegistry()))

	log.Info().
		Str("base", cfg.MarketBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Int("providers", len(cfg.Providers)).
		Msg("importer starting")

	if len(cfg.Providers) == 0 {
		log.Fatal().Msg("IMPORT_PROVIDERS is empty")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	client, err := marketplace.New(cfg.MarketBase, cfg.MarketKey, cfg.MarketRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize marketplace client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis is required for import dedupe")
	}

	ledger := app.NewLedger(mysqlrepo.New(db), cache, cfg.CacheTTL)
	imp := app.NewImportService(client, ledger, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range cfg.Providers {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(provider string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			st, err := imp.ImportProvider(ctx, provider, cfg.ReviewCount)
			if err != nil {
				log.Warn().Str("provider", provider).Err(err).Msg("import failed")
				return
			}
			log.Info().
				Str("provider", provider).
				Int("seen", st.Seen).
				Int("imported", st.Imported).
				Int("rejected", st.Rejected).
				Int("skipped", st.Skipped).
				Int("duplicate", st.Duplicate).
				Msg("import ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
