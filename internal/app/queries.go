package app

import (
	"context"

	"trust_ledger/internal/domain"
)

func (l *Ledger) GetFeedback(ctx context.Context, id uint64) (domain.FeedbackRecord, bool, error) {
	return readThrough(ctx, l, feedbackKey(id), func(ctx context.Context) (domain.FeedbackRecord, bool, error) {
		return l.store.GetFeedback(ctx, id)
	})
}

func (l *Ledger) GetCategoryFeedback(ctx context.Context, id uint64, category string) (domain.CategoryFeedback, bool, error) {
	return readThrough(ctx, l, categoryKey(id, category), func(ctx context.Context) (domain.CategoryFeedback, bool, error) {
		return l.store.GetCategoryFeedback(ctx, id, category)
	})
}

// GetProviderRating returns found=false for a provider nobody has rated.
func (l *Ledger) GetProviderRating(ctx context.Context, provider domain.ActorID) (domain.ProviderRating, bool, error) {
	return readThrough(ctx, l, ratingKey(provider), func(ctx context.Context) (domain.ProviderRating, bool, error) {
		return l.store.ProviderRating(ctx, provider)
	})
}

func (l *Ledger) GetInspector(ctx context.Context, id domain.ActorID) (domain.InspectorProfile, bool, error) {
	return readThrough(ctx, l, inspectorKey(id), func(ctx context.Context) (domain.InspectorProfile, bool, error) {
		return l.store.GetInspector(ctx, id)
	})
}

func (l *Ledger) GetInspection(ctx context.Context, id uint64) (domain.InspectionRecord, bool, error) {
	return readThrough(ctx, l, inspectionKey(id), func(ctx context.Context) (domain.InspectionRecord, bool, error) {
		return l.store.GetInspection(ctx, id)
	})
}

func (l *Ledger) GetInspectionResult(ctx context.Context, id uint64, standard string) (domain.InspectionResult, bool, error) {
	return readThrough(ctx, l, resultKey(id, standard), func(ctx context.Context) (domain.InspectionResult, bool, error) {
		return l.store.GetInspectionResult(ctx, id, standard)
	})
}
