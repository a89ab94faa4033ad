package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"trust_ledger/internal/domain"
)

/********** alias registries (single source of truth) **********/

var reviewAliases = map[string][]string{
	"customer":     {"customer_id", "customerId", "reviewer_id", "reviewer.id", "user.id", "author_id"},
	"service_type": {"service_type", "serviceType", "service.type", "service.name", "category"},
	"text":         {"text", "review_text", "comment", "content", "body", "message"},
	"source_id":    {"id", "review_id", "reviewId"},
	"rating":       {"rating", "rate", "score", "rating.value", "scores.overall", "overall_score"},
	"height":       {"height", "block_height", "created_height", "created_at_height", "posted_at"},
	"service_date": {"service_height", "service_date", "completed_height", "service.completed_at", "job.completed_at"},
	"categories":   {"categories", "category_ratings", "aspects", "scores.categories"},
	"scale":        {"rating_scale", "ratingScale", "scale", "max_rating", "rating.max", "scores.max"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "". Numeric ids are rendered in base 10.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range reviewAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// floatFlexible: number from a value that may be float64/int/string like "4,5".
func floatFlexible(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func firstFloatAlias(m map[string]any, key string) (float64, bool) {
	for _, p := range reviewAliases[key] {
		if f, ok := floatFlexible(lookupAny(m, p)); ok {
			return f, true
		}
	}
	return 0, false
}

// firstHeightAlias: non-negative whole number from several paths.
func firstHeightAlias(m map[string]any, key string) (domain.Height, bool) {
	f, ok := firstFloatAlias(m, key)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return domain.Height(f), true
}

// toStars rounds a rating to the nearest whole star. A rating on a declared
// scale other than five (scale > 0) is rescaled first; undeclared scales are
// taken as five-star. Out-of-range values are passed through for the ledger
// to reject.
func toStars(f, scale float64) int {
	if scale > 0 && scale != domain.MaxRating {
		f = f * domain.MaxRating / scale
	}
	return int(math.Round(f))
}

/********** reviews mapper **********/

// importedReview is one upstream review ready to be replayed through the
// ledger as its customer at Height.
type importedReview struct {
	SourceID   string
	Customer   domain.ActorID
	Height     domain.Height
	Submission domain.FeedbackSubmission
	Categories []domain.CategoryFeedback
}

// mapReview returns ok=false when the review lacks a customer or a height;
// those cannot be attributed and are skipped.
func mapReview(provider domain.ActorID, r map[string]any) (importedReview, bool) {
	var out importedReview

	out.Customer = domain.ActorID(firstNonEmptyAlias(r, "customer"))
	h, ok := firstHeightAlias(r, "height")
	if out.Customer == "" || !ok {
		return out, false
	}
	out.Height = h

	out.Submission = domain.FeedbackSubmission{
		ProviderID:  provider,
		ServiceType: firstNonEmptyAlias(r, "service_type"),
		Comment:     firstNonEmptyAlias(r, "text"),
		ServiceDate: h,
	}
	if sd, ok := firstHeightAlias(r, "service_date"); ok {
		out.Submission.ServiceDate = sd
	}
	scale, _ := firstFloatAlias(r, "scale")
	if f, ok := firstFloatAlias(r, "rating"); ok {
		out.Submission.Rating = toStars(f, scale)
	}

	// SourceID → prefer explicit; else synthesize stable hash.
	if s := firstNonEmptyAlias(r, "source_id"); s != "" {
		out.SourceID = s
	} else {
		sig := strings.Join([]string{
			string(out.Customer),
			strconv.FormatUint(uint64(out.Height), 10),
			strconv.Itoa(out.Submission.Rating),
			out.Submission.Comment,
		}, "|")
		sum := sha1.Sum([]byte(sig))
		out.SourceID = hex.EncodeToString(sum[:])
	}

	out.Categories = mapCategories(r, scale)
	return out, true
}

// mapCategories accepts either {"punctuality": 5} or
// [{"category": "punctuality", "rating": 5, "comment": "..."}]. Categories are
// returned sorted so replay order is stable. Category ratings share the
// review's scale.
func mapCategories(r map[string]any, scale float64) []domain.CategoryFeedback {
	var out []domain.CategoryFeedback
	for _, p := range reviewAliases["categories"] {
		switch t := lookupAny(r, p).(type) {
		case map[string]any:
			for name, v := range t {
				if f, ok := floatFlexible(v); ok {
					out = append(out, domain.CategoryFeedback{Category: strings.TrimSpace(name), Rating: toStars(f, scale)})
				}
			}
		case []any:
			for _, it := range t {
				obj, ok := it.(map[string]any)
				if !ok {
					continue
				}
				name := lookupStr(obj, "category")
				if name == "" {
					name = lookupStr(obj, "name")
				}
				f, ok := floatFlexible(obj["rating"])
				if !ok {
					f, ok = floatFlexible(obj["score"])
				}
				if name == "" || !ok {
					continue
				}
				out = append(out, domain.CategoryFeedback{Category: name, Rating: toStars(f, scale), Comment: lookupStr(obj, "comment")})
			}
		}
		if len(out) > 0 {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func (r importedReview) call() domain.Call {
	return domain.Call{Caller: domain.Caller{ID: r.Customer}, Height: r.Height}
}

func (r importedReview) String() string {
	return fmt.Sprintf("review %s by %s at %d", r.SourceID, r.Customer, r.Height)
}
