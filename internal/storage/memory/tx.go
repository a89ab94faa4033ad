package memory

import (
	"context"

	"trust_ledger/internal/domain"
)

// transaction reads through pending writes to the committed state.
type transaction struct {
	base    *state
	pending state
}

func (t *transaction) NextID(_ context.Context, seq domain.Sequence) (uint64, error) {
	cur, ok := t.pending.seq[seq]
	if !ok {
		cur = t.base.seq[seq]
	}
	cur++
	t.pending.seq[seq] = cur
	return cur, nil
}

func (t *transaction) GetFeedback(_ context.Context, id uint64) (domain.FeedbackRecord, bool, error) {
	if f, ok := t.pending.feedback[id]; ok {
		return f, true, nil
	}
	f, ok := t.base.feedback[id]
	return f, ok, nil
}

func (t *transaction) GetCategoryFeedback(_ context.Context, feedbackID uint64, category string) (domain.CategoryFeedback, bool, error) {
	k := categoryKey{feedbackID, category}
	if c, ok := t.pending.categories[k]; ok {
		return c, true, nil
	}
	c, ok := t.base.categories[k]
	return c, ok, nil
}

func (t *transaction) ProviderRating(_ context.Context, provider domain.ActorID) (domain.ProviderRating, bool, error) {
	tot := t.base.ratings[provider]
	for id, f := range t.pending.feedback {
		if old, ok := t.base.feedback[id]; ok && old.ProviderID == provider {
			tot = tot.remove(old.Rating)
		}
		if f.ProviderID == provider {
			tot = tot.add(f.Rating)
		}
	}
	r, ok := domain.NewProviderRating(provider, tot.sum, tot.count)
	return r, ok, nil
}

func (t *transaction) GetInspector(_ context.Context, id domain.ActorID) (domain.InspectorProfile, bool, error) {
	if p, ok := t.pending.inspectors[id]; ok {
		return cloneInspector(p), true, nil
	}
	p, ok := t.base.inspectors[id]
	return cloneInspector(p), ok, nil
}

func (t *transaction) GetInspection(_ context.Context, id uint64) (domain.InspectionRecord, bool, error) {
	if r, ok := t.pending.inspections[id]; ok {
		return cloneInspection(r), true, nil
	}
	r, ok := t.base.inspections[id]
	return cloneInspection(r), ok, nil
}

func (t *transaction) GetInspectionResult(_ context.Context, inspectionID uint64, standardID string) (domain.InspectionResult, bool, error) {
	k := resultKey{inspectionID, standardID}
	if r, ok := t.pending.results[k]; ok {
		return r, true, nil
	}
	r, ok := t.base.results[k]
	return r, ok, nil
}

func (t *transaction) PutFeedback(_ context.Context, f domain.FeedbackRecord) error {
	t.pending.feedback[f.ID] = f
	return nil
}

func (t *transaction) PutCategoryFeedback(_ context.Context, c domain.CategoryFeedback) error {
	t.pending.categories[categoryKey{c.FeedbackID, c.Category}] = c
	return nil
}

func (t *transaction) PutInspector(_ context.Context, p domain.InspectorProfile) error {
	t.pending.inspectors[p.ID] = cloneInspector(p)
	return nil
}

func (t *transaction) PutInspection(_ context.Context, r domain.InspectionRecord) error {
	t.pending.inspections[r.ID] = cloneInspection(r)
	return nil
}

func (t *transaction) PutInspectionResult(_ context.Context, r domain.InspectionResult) error {
	t.pending.results[resultKey{r.InspectionID, r.StandardID}] = r
	return nil
}

// commit folds pending writes into base. Provider totals follow the feedback
// writes so ratings never need a scan.
func (t *transaction) commit() {
	for seq, v := range t.pending.seq {
		t.base.seq[seq] = v
	}
	for id, f := range t.pending.feedback {
		if old, ok := t.base.feedback[id]; ok {
			t.base.ratings[old.ProviderID] = t.base.ratings[old.ProviderID].remove(old.Rating)
		}
		t.base.ratings[f.ProviderID] = t.base.ratings[f.ProviderID].add(f.Rating)
		t.base.feedback[id] = f
	}
	for k, c := range t.pending.categories {
		t.base.categories[k] = c
	}
	for k, p := range t.pending.inspectors {
		t.base.inspectors[k] = p
	}
	for k, r := range t.pending.inspections {
		t.base.inspections[k] = r
	}
	for k, r := range t.pending.results {
		t.base.results[k] = r
	}
}

func (t totals) add(rating int) totals {
	return totals{sum: t.sum + uint64(rating), count: t.count + 1}
}

func (t totals) remove(rating int) totals {
	if t.count == 0 {
		return t
	}
	return totals{sum: t.sum - uint64(rating), count: t.count - 1}
}
