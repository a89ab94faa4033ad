package domain

type FeedbackRecord struct {
	ID           uint64  `json:"id"`
	CustomerID   ActorID `json:"customer_id"`
	ProviderID   ActorID `json:"provider_id"`
	ServiceType  string  `json:"service_type"`
	Rating       int     `json:"rating"`
	Comment      string  `json:"comment"`
	ServiceDate  Height  `json:"service_date"`
	FeedbackDate Height  `json:"feedback_date"`
	Verified     bool    `json:"verified"`
}

// CategoryFeedback is keyed by (FeedbackID, Category).
type CategoryFeedback struct {
	FeedbackID uint64 `json:"feedback_id"`
	Category   string `json:"category"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// FeedbackSubmission is the caller-controlled part of a new FeedbackRecord.
type FeedbackSubmission struct {
	ProviderID  ActorID
	ServiceType string
	Rating      int
	Comment     string
	ServiceDate Height
}

// Validate checks the submission as customer would record it at height now.
func (s FeedbackSubmission) Validate(customer ActorID, now Height) error {
	return FirstFailure(
		MaxLength("customer_id", string(customer), MaxActorID),
		NonEmpty("provider_id", string(s.ProviderID)),
		MaxLength("provider_id", string(s.ProviderID), MaxActorID),
		MaxLength("service_type", s.ServiceType, MaxServiceType),
		Rating("rating", s.Rating),
		MaxLength("comment", s.Comment, MaxFeedbackComment),
		NotAfter("service_date", s.ServiceDate, now),
	)
}

// Record builds the stored record for id, submitted by customer at now.
func (s FeedbackSubmission) Record(id uint64, customer ActorID, now Height) FeedbackRecord {
	return FeedbackRecord{
		ID:           id,
		CustomerID:   customer,
		ProviderID:   s.ProviderID,
		ServiceType:  s.ServiceType,
		Rating:       s.Rating,
		Comment:      s.Comment,
		ServiceDate:  s.ServiceDate,
		FeedbackDate: now,
	}
}

func (c CategoryFeedback) Validate() error {
	return FirstFailure(
		NonEmpty("category", c.Category),
		MaxLength("category", c.Category, MaxLabel),
		Rating("rating", c.Rating),
		MaxLength("comment", c.Comment, MaxCategoryComment),
	)
}

// ProviderRating is the aggregate over every FeedbackRecord of a provider.
// Average is Sum/Count truncated toward zero.
type ProviderRating struct {
	ProviderID ActorID `json:"provider_id"`
	Average    int     `json:"average"`
	Count      uint64  `json:"count"`
	Sum        uint64  `json:"sum"`
}

// NewProviderRating derives the rating from a running sum and count. ok is
// false when count is zero: no data is not the same as a zero rating.
func NewProviderRating(provider ActorID, sum, count uint64) (ProviderRating, bool) {
	if count == 0 {
		return ProviderRating{}, false
	}
	return ProviderRating{
		ProviderID: provider,
		Average:    int(sum / count),
		Count:      count,
		Sum:        sum,
	}, true
}
