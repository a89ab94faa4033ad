package domain

import "context"

// Sequence names an identifier space. IDs are allocated per sequence,
// starting at 1.
type Sequence string

const (
	SeqFeedback   Sequence = "feedback"
	SeqInspection Sequence = "inspection"
)

// RecordReader is the read side of the record store. Absent keys are
// reported with found=false; err is reserved for storage failures.
type RecordReader interface {
	GetFeedback(ctx context.Context, id uint64) (FeedbackRecord, bool, error)
	GetCategoryFeedback(ctx context.Context, feedbackID uint64, category string) (CategoryFeedback, bool, error)
	ProviderRating(ctx context.Context, provider ActorID) (ProviderRating, bool, error)
	GetInspector(ctx context.Context, id ActorID) (InspectorProfile, bool, error)
	GetInspection(ctx context.Context, id uint64) (InspectionRecord, bool, error)
	GetInspectionResult(ctx context.Context, inspectionID uint64, standardID string) (InspectionResult, bool, error)
}

// RecordTx is one all-or-nothing unit of work. Writes are upserts keyed by
// the record's identity.
type RecordTx interface {
	RecordReader

	NextID(ctx context.Context, seq Sequence) (uint64, error)
	PutFeedback(ctx context.Context, f FeedbackRecord) error
	PutCategoryFeedback(ctx context.Context, c CategoryFeedback) error
	PutInspector(ctx context.Context, p InspectorProfile) error
	PutInspection(ctx context.Context, r InspectionRecord) error
	PutInspectionResult(ctx context.Context, r InspectionResult) error
}

type RecordStore interface {
	RecordReader

	// RunInTx commits every write made through tx when fn returns nil and
	// discards all of them otherwise.
	RunInTx(ctx context.Context, fn func(tx RecordTx) error) error
}

type MarketplaceClient interface {
	ListProviderReviews(ctx context.Context, providerID string, limit int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
