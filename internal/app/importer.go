package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"trust_ledger/internal/adapters/observability"
	"trust_ledger/internal/domain"
)

// ImportStats counts what happened to each upstream review of one provider.
type ImportStats struct {
	Seen      int
	Imported  int
	Rejected  int
	Skipped   int
	Duplicate int
}

type ImportService struct {
	market domain.MarketplaceClient
	ledger *Ledger
	cache  domain.Cache
}

// NewImportService wires the importer. Without a cache every run replays
// every review, so reruns create duplicate feedback.
func NewImportService(m domain.MarketplaceClient, l *Ledger, cache domain.Cache) *ImportService {
	return &ImportService{market: m, ledger: l, cache: cache}
}

// ImportProvider replays up to limit upstream reviews of provider through the
// ledger. Reviews the ledger rejects are counted and skipped; only upstream
// and storage failures abort the import.
func (s *ImportService) ImportProvider(ctx context.Context, provider string, limit int) (ImportStats, error) {
	var st ImportStats

	revs, err := s.market.ListProviderReviews(ctx, provider, limit)
	if err != nil {
		// 404: provider unknown upstream -> nothing to import.
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("provider", provider).Msg("provider not found upstream")
			return st, nil
		}
		return st, fmt.Errorf("list reviews for %s: %w", provider, err)
	}

	for _, raw := range revs {
		st.Seen++
		rv, ok := mapReview(domain.ActorID(provider), raw)
		if !ok {
			st.Skipped++
			observability.ObserveImport("skipped")
			continue
		}

		marker := importedKey(provider, rv.SourceID)
		if s.seen(ctx, marker) {
			st.Duplicate++
			observability.ObserveImport("duplicate")
			continue
		}

		id, err := s.ledger.SubmitFeedback(ctx, rv.call(), rv.Submission)
		if err != nil {
			if domain.KindOf(err) == domain.KindNone {
				return st, fmt.Errorf("import %s: %w", rv, err)
			}
			st.Rejected++
			observability.ObserveImport("rejected")
			log.Info().Err(err).Str("provider", provider).Str("source_id", rv.SourceID).Msg("review rejected")
			continue
		}
		// marked before the categories: a failure below must not lead a rerun
		// to submit the review again
		s.mark(ctx, marker, id)

		for _, c := range rv.Categories {
			c.FeedbackID = id
			if err := s.ledger.AddCategoryFeedback(ctx, rv.call(), c); err != nil {
				if domain.KindOf(err) == domain.KindNone {
					return st, fmt.Errorf("import %s category %s: %w", rv, c.Category, err)
				}
				log.Info().Err(err).Uint64("feedback_id", id).Str("category", c.Category).Msg("category rating rejected")
			}
		}

		st.Imported++
		observability.ObserveImport("imported")
	}

	return st, nil
}

func (s *ImportService) seen(ctx context.Context, marker string) bool {
	if s.cache == nil {
		return false
	}
	var id uint64
	ok, err := s.cache.Get(ctx, marker, &id)
	if err != nil {
		log.Warn().Err(err).Str("key", marker).Msg("import marker lookup failed")
	}
	return ok
}

func (s *ImportService) mark(ctx context.Context, marker string, id uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, marker, id, 0); err != nil {
		log.Warn().Err(err).Str("key", marker).Msg("import marker write failed")
	}
}
