package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"trust_ledger/internal/domain"
)

// SubmitFeedback records feedback from call.Caller about a provider and
// returns the new feedback id.
func (l *Ledger) SubmitFeedback(ctx context.Context, call domain.Call, sub domain.FeedbackSubmission) (uint64, error) {
	var id uint64
	// the new id's key is evicted too: a cache shared with an earlier store
	// may still hold a record under it
	evict := func() []string { return []string{feedbackKey(id), ratingKey(sub.ProviderID)} }
	err := l.mutate(ctx, domain.ActionSubmitFeedback, call, evict, func(tx domain.RecordTx) error {
		if err := domain.Authorize(domain.ActionSubmitFeedback, call.Caller, ""); err != nil {
			return err
		}
		if err := sub.Validate(call.Caller.ID, call.Height); err != nil {
			return err
		}
		next, err := tx.NextID(ctx, domain.SeqFeedback)
		if err != nil {
			return fmt.Errorf("allocate feedback id: %w", err)
		}
		if err := tx.PutFeedback(ctx, sub.Record(next, call.Caller.ID, call.Height)); err != nil {
			return fmt.Errorf("store feedback %d: %w", next, err)
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddCategoryFeedback attaches a per-category rating to the caller's own
// feedback. A second write for the same category replaces the first.
func (l *Ledger) AddCategoryFeedback(ctx context.Context, call domain.Call, c domain.CategoryFeedback) error {
	return l.mutate(ctx, domain.ActionAddCategoryFeedback, call, keys(categoryKey(c.FeedbackID, c.Category)), func(tx domain.RecordTx) error {
		parent, err := mustFeedback(ctx, tx, c.FeedbackID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(domain.ActionAddCategoryFeedback, call.Caller, parent.CustomerID); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := tx.PutCategoryFeedback(ctx, c); err != nil {
			return fmt.Errorf("store category feedback %d/%s: %w", c.FeedbackID, c.Category, err)
		}
		return nil
	})
}

// VerifyFeedback marks feedback as verified. Verifying twice is a no-op.
func (l *Ledger) VerifyFeedback(ctx context.Context, call domain.Call, id uint64) error {
	return l.mutate(ctx, domain.ActionVerifyFeedback, call, keys(feedbackKey(id)), func(tx domain.RecordTx) error {
		if err := domain.Authorize(domain.ActionVerifyFeedback, call.Caller, ""); err != nil {
			return err
		}
		f, err := mustFeedback(ctx, tx, id)
		if err != nil {
			return err
		}
		if f.Verified {
			return nil
		}
		f.Verified = true
		if err := tx.PutFeedback(ctx, f); err != nil {
			return fmt.Errorf("store feedback %d: %w", id, err)
		}
		return nil
	})
}

// RegisterInspector creates or replaces an inspector profile.
func (l *Ledger) RegisterInspector(ctx context.Context, call domain.Call, p domain.InspectorProfile) error {
	return l.mutate(ctx, domain.ActionRegisterInspector, call, keys(inspectorKey(p.ID)), func(tx domain.RecordTx) error {
		if err := domain.Authorize(domain.ActionRegisterInspector, call.Caller, ""); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := tx.PutInspector(ctx, p); err != nil {
			return fmt.Errorf("store inspector %s: %w", p.ID, err)
		}
		return nil
	})
}

// ScheduleInspection books a registered inspector for a provider and returns
// the new inspection id.
func (l *Ledger) ScheduleInspection(ctx context.Context, call domain.Call, req domain.InspectionRequest) (uint64, error) {
	var id uint64
	evict := func() []string { return []string{inspectionKey(id)} }
	err := l.mutate(ctx, domain.ActionScheduleInspection, call, evict, func(tx domain.RecordTx) error {
		if err := domain.Authorize(domain.ActionScheduleInspection, call.Caller, ""); err != nil {
			return err
		}
		if err := req.Validate(call.Height); err != nil {
			return err
		}
		insp, found, err := tx.GetInspector(ctx, req.InspectorID)
		if err != nil {
			return fmt.Errorf("load inspector %s: %w", req.InspectorID, err)
		}
		if !found {
			return domain.Reject(domain.ErrNotFound, "inspector "+string(req.InspectorID)+" is not registered")
		}
		if req.ServiceType != "" && !insp.Covers(req.ServiceType) {
			log.Info().
				Str("inspector", string(req.InspectorID)).
				Str("service_type", req.ServiceType).
				Msg("inspector scheduled outside their specializations")
		}
		next, err := tx.NextID(ctx, domain.SeqInspection)
		if err != nil {
			return fmt.Errorf("allocate inspection id: %w", err)
		}
		if err := tx.PutInspection(ctx, req.Record(next, call.Height)); err != nil {
			return fmt.Errorf("store inspection %d: %w", next, err)
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// StartInspection moves the caller's scheduled inspection to in-progress.
func (l *Ledger) StartInspection(ctx context.Context, call domain.Call, id uint64) error {
	return l.transition(ctx, domain.ActionStartInspection, call, id, nil, func(r domain.InspectionRecord) (domain.InspectionRecord, error) {
		return r.Start(call.Height)
	})
}

// CompleteInspection closes the caller's in-progress inspection.
func (l *Ledger) CompleteInspection(ctx context.Context, call domain.Call, id uint64, notes string) error {
	check := func() error { return domain.MaxLength("notes", notes, domain.MaxInspectionNotes) }
	return l.transition(ctx, domain.ActionCompleteInspection, call, id, check, func(r domain.InspectionRecord) (domain.InspectionRecord, error) {
		return r.Complete(notes)
	})
}

func (l *Ledger) transition(ctx context.Context, op domain.Action, call domain.Call, id uint64, validate func() error, step func(domain.InspectionRecord) (domain.InspectionRecord, error)) error {
	return l.mutate(ctx, op, call, keys(inspectionKey(id)), func(tx domain.RecordTx) error {
		r, err := mustInspection(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := domain.Authorize(op, call.Caller, r.InspectorID); err != nil {
			return err
		}
		if validate != nil {
			if err := validate(); err != nil {
				return err
			}
		}
		next, err := step(r)
		if err != nil {
			return err
		}
		if err := tx.PutInspection(ctx, next); err != nil {
			return fmt.Errorf("store inspection %d: %w", id, err)
		}
		return nil
	})
}

// AddInspectionResult records the score for one standard on a started
// inspection. A second write for the same standard replaces the first.
func (l *Ledger) AddInspectionResult(ctx context.Context, call domain.Call, res domain.InspectionResult) error {
	return l.mutate(ctx, domain.ActionAddInspectionResult, call, keys(resultKey(res.InspectionID, res.StandardID)), func(tx domain.RecordTx) error {
		r, err := mustInspection(ctx, tx, res.InspectionID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(domain.ActionAddInspectionResult, call.Caller, r.InspectorID); err != nil {
			return err
		}
		if err := res.Validate(); err != nil {
			return err
		}
		if err := r.AcceptsResults(); err != nil {
			return err
		}
		if err := tx.PutInspectionResult(ctx, res); err != nil {
			return fmt.Errorf("store inspection result %d/%s: %w", res.InspectionID, res.StandardID, err)
		}
		return nil
	})
}

func mustFeedback(ctx context.Context, tx domain.RecordTx, id uint64) (domain.FeedbackRecord, error) {
	f, found, err := tx.GetFeedback(ctx, id)
	if err != nil {
		return f, fmt.Errorf("load feedback %d: %w", id, err)
	}
	if !found {
		return f, domain.Reject(domain.ErrNotFound, fmt.Sprintf("feedback %d does not exist", id))
	}
	return f, nil
}

func mustInspection(ctx context.Context, tx domain.RecordTx, id uint64) (domain.InspectionRecord, error) {
	r, found, err := tx.GetInspection(ctx, id)
	if err != nil {
		return r, fmt.Errorf("load inspection %d: %w", id, err)
	}
	if !found {
		return r, domain.Reject(domain.ErrNotFound, fmt.Sprintf("inspection %d does not exist", id))
	}
	return r, nil
}
