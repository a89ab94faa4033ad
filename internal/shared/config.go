package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trust_ledger/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	StoreDriver string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	Admins      map[domain.ActorID]bool

	MarketBase  string
	MarketKey   string
	MarketRPS   int
	Workers     int
	ReviewCount int
	Providers   []string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		StoreDriver: strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ledger?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		Admins:      actorSet(os.Getenv("ADMIN_IDS")),
		MarketBase:  env("MARKETPLACE_BASE_URL", "https://api.marketplace.example/"),
		MarketKey:   env("MARKETPLACE_API_KEY", ""),
		MarketRPS:   atoi("IMPORT_RPS", 5),
		Workers:     atoi("IMPORT_WORKERS", 8),
		ReviewCount: atoi("IMPORT_REVIEW_COUNT", 100),
		Providers:   splitList(os.Getenv("IMPORT_PROVIDERS")),
	}
	if len(c.Admins) == 0 {
		log.Warn().Msg("ADMIN_IDS is empty; admin-only mutations will be rejected")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func actorSet(s string) map[domain.ActorID]bool {
	out := make(map[domain.ActorID]bool)
	for _, id := range splitList(s) {
		out[domain.ActorID(id)] = true
	}
	return out
}
