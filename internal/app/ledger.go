package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"trust_ledger/internal/adapters/observability"
	"trust_ledger/internal/domain"
)

// Ledger is the single entry point for feedback and inspection records.
// Mutations are serialized and run in one store transaction each; reads see
// the last committed mutation.
type Ledger struct {
	mu       sync.RWMutex
	store    domain.RecordStore
	cache    domain.Cache
	cacheTTL time.Duration

	// stale holds keys whose eviction failed. They are bypassed on read and
	// retried on every later mutation until the delete succeeds.
	stale map[string]struct{}
}

// NewLedger wires the ledger. cache may be nil.
func NewLedger(store domain.RecordStore, cache domain.Cache, ttl time.Duration) *Ledger {
	return &Ledger{store: store, cache: cache, cacheTTL: ttl, stale: make(map[string]struct{})}
}

// mutate runs fn as one serialized transaction. evict is called after a
// successful commit so creations can name the keys of the ids they allocated.
func (l *Ledger) mutate(ctx context.Context, op domain.Action, call domain.Call, evict func() []string, fn func(tx domain.RecordTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.RunInTx(ctx, fn)
	kind := domain.KindOf(err)
	switch {
	case err == nil:
		observability.ObserveMutation(string(op), "ok")
	case kind != domain.KindNone:
		observability.ObserveMutation(string(op), string(kind))
		log.Info().
			Str("op", string(op)).
			Str("caller", string(call.Caller.ID)).
			Uint64("height", uint64(call.Height)).
			Str("kind", string(kind)).
			Str("rule", domain.RuleOf(err)).
			Msg("mutation rejected")
		return err
	default:
		observability.ObserveMutation(string(op), "error")
		log.Error().Err(err).Str("op", string(op)).Msg("mutation failed")
		return err
	}

	if l.cache != nil {
		for k := range l.stale {
			l.evict(ctx, k)
		}
		if evict != nil {
			for _, k := range evict() {
				l.evict(ctx, k)
			}
		}
	}
	log.Debug().
		Str("op", string(op)).
		Str("caller", string(call.Caller.ID)).
		Uint64("height", uint64(call.Height)).
		Msg("mutation committed")
	return nil
}

// readThrough serves key from the cache when possible. Only found records
// are cached so a later write never has to evict a negative entry.
func readThrough[T any](ctx context.Context, l *Ledger, key string, load func(ctx context.Context) (T, bool, error)) (T, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, stale := l.stale[key]
	useCache := l.cache != nil && !stale

	var v T
	if useCache {
		if ok, _ := l.cache.Get(ctx, key, &v); ok {
			return v, true, nil
		}
	}
	v, found, err := load(ctx)
	if err != nil || !found {
		return v, found, err
	}
	if useCache {
		_ = l.cache.Set(ctx, key, v, int(l.cacheTTL.Seconds()))
	}
	return v, true, nil
}

// evict deletes key, remembering it as stale when the delete fails. Callers
// hold the write lock.
func (l *Ledger) evict(ctx context.Context, key string) {
	if err := l.cache.Del(ctx, key); err != nil {
		l.stale[key] = struct{}{}
		log.Warn().Err(err).Str("key", key).Msg("cache evict failed, bypassing key until retried")
		return
	}
	delete(l.stale, key)
}

func keys(k ...string) func() []string {
	return func() []string { return k }
}
