package app

import (
	"testing"

	"trust_ledger/internal/domain"
)

func TestMapReview_SynthesizesStableSourceID(t *testing.T) {
	raw := map[string]any{"customer_id": "c1", "rating": 5.0, "comment": "ok", "height": 10.0}
	a, ok := mapReview("p", raw)
	if !ok {
		t.Fatalf("expected review to map")
	}
	b, _ := mapReview("p", raw)
	if a.SourceID == "" || a.SourceID != b.SourceID {
		t.Fatalf("source id not stable: %q vs %q", a.SourceID, b.SourceID)
	}
}

func TestMapReview_RequiresCustomerAndHeight(t *testing.T) {
	if _, ok := mapReview("p", map[string]any{"customer_id": "c1"}); ok {
		t.Fatalf("missing height must not map")
	}
	if _, ok := mapReview("p", map[string]any{"height": 3.0}); ok {
		t.Fatalf("missing customer must not map")
	}
	if _, ok := mapReview("p", map[string]any{"customer_id": "c1", "height": 2.5}); ok {
		t.Fatalf("fractional height must not map")
	}
}

func TestMapReview_NumericCustomerID(t *testing.T) {
	rv, ok := mapReview("p", map[string]any{"user": map[string]any{"id": 42.0}, "height": 7.0})
	if !ok || rv.Customer != domain.ActorID("42") {
		t.Fatalf("got %+v ok=%v", rv, ok)
	}
}

func TestMapCategories_ListForm(t *testing.T) {
	got := mapCategories(map[string]any{
		"category_ratings": []any{
			map[string]any{"category": "professionalism", "rating": 4.0, "comment": "polite"},
			map[string]any{"name": "communication", "score": "3"},
			map[string]any{"rating": 5.0},
		},
	}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %+v", got)
	}
	if got[0].Category != "communication" || got[0].Rating != 3 {
		t.Fatalf("unexpected first category %+v", got[0])
	}
	if got[1].Comment != "polite" {
		t.Fatalf("comment not carried: %+v", got[1])
	}
}

func TestToStars(t *testing.T) {
	cases := []struct {
		in, scale float64
		want      int
	}{
		{4, 0, 4},
		{4.6, 0, 5},
		{0, 0, 0},
		// undeclared scale: out-of-range values reach the ledger unchanged
		{6, 0, 6},
		{9, 0, 9},
		{4, 5, 4},
		{9, 10, 5},
		{10, 10, 5},
		{7, 10, 4},
		{11, 10, 6},
		{80, 100, 4},
	}
	for _, c := range cases {
		if got := toStars(c.in, c.scale); got != c.want {
			t.Errorf("toStars(%v, %v) = %d, want %d", c.in, c.scale, got, c.want)
		}
	}
}

func TestMapReview_DeclaredScale(t *testing.T) {
	rv, _ := mapReview("p", map[string]any{"customer_id": "c1", "height": 1.0, "rating": 6.0})
	if rv.Submission.Rating != 6 {
		t.Fatalf("undeclared scale must not rescale, got %d", rv.Submission.Rating)
	}

	rv, _ = mapReview("p", map[string]any{
		"customer_id": "c1", "height": 1.0,
		"rating":     map[string]any{"value": 8.0, "max": 10.0},
		"categories": map[string]any{"punctuality": 10.0},
	})
	if rv.Submission.Rating != 4 {
		t.Fatalf("rating 8/10 = %d, want 4", rv.Submission.Rating)
	}
	if len(rv.Categories) != 1 || rv.Categories[0].Rating != 5 {
		t.Fatalf("category not rescaled: %+v", rv.Categories)
	}
}
