package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "trust_ledger/internal/adapters/http_server"
	"trust_ledger/internal/adapters/observability"
	redisad "trust_ledger/internal/adapters/redis"
	"trust_ledger/internal/app"
	"trust_ledger/internal/domain"
	"trust_ledger/internal/shared"
	"trust_ledger/internal/storage/memory"
	mysqlrepo "trust_ledger/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	store := openStore(cfg)

	ledger := app.NewLedger(store, openCache(cfg), cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{L: ledger, Admins: cfg.Admins})

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Int("admins", len(cfg.Admins)).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func openStore(cfg shared.Config) domain.RecordStore {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; records are lost on restart")
		return memory.New()
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db)
	}
	log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	return nil
}

// openCache returns nil when no cache should be used. The memory store
// restarts empty and reissues ids, so a shared cache would outlive it and
// serve records from an earlier run.
func openCache(cfg shared.Config) domain.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	if cfg.StoreDriver == "memory" {
		log.Warn().Str("addr", cfg.RedisAddr).Msg("redis cache disabled for the memory store")
		return nil
	}
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, serving without cache")
		return nil
	}
	return rc
}
