// Package memory is an in-process RecordStore for tests, local runs and
// single-node deployments.
package memory

import (
	"context"
	"sync"

	"trust_ledger/internal/domain"
)

var _ domain.RecordStore = (*Store)(nil)

type categoryKey struct {
	feedbackID uint64
	category   string
}

type resultKey struct {
	inspectionID uint64
	standardID   string
}

type totals struct{ sum, count uint64 }

type state struct {
	seq         map[domain.Sequence]uint64
	feedback    map[uint64]domain.FeedbackRecord
	categories  map[categoryKey]domain.CategoryFeedback
	ratings     map[domain.ActorID]totals
	inspectors  map[domain.ActorID]domain.InspectorProfile
	inspections map[uint64]domain.InspectionRecord
	results     map[resultKey]domain.InspectionResult
}

func newState() state {
	return state{
		seq:         make(map[domain.Sequence]uint64),
		feedback:    make(map[uint64]domain.FeedbackRecord),
		categories:  make(map[categoryKey]domain.CategoryFeedback),
		ratings:     make(map[domain.ActorID]totals),
		inspectors:  make(map[domain.ActorID]domain.InspectorProfile),
		inspections: make(map[uint64]domain.InspectionRecord),
		results:     make(map[resultKey]domain.InspectionResult),
	}
}

type Store struct {
	mu sync.RWMutex
	st state
}

func New() *Store { return &Store{st: newState()} }

// RunInTx stages writes in an overlay and folds them into the committed state
// only when fn succeeds. Transactions are serialized.
func (s *Store) RunInTx(ctx context.Context, fn func(tx domain.RecordTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{base: &s.st, pending: newState()}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetFeedback(_ context.Context, id uint64) (domain.FeedbackRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.st.feedback[id]
	return f, ok, nil
}

func (s *Store) GetCategoryFeedback(_ context.Context, feedbackID uint64, category string) (domain.CategoryFeedback, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.st.categories[categoryKey{feedbackID, category}]
	return c, ok, nil
}

func (s *Store) ProviderRating(_ context.Context, provider domain.ActorID) (domain.ProviderRating, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.st.ratings[provider]
	r, ok := domain.NewProviderRating(provider, t.sum, t.count)
	return r, ok, nil
}

func (s *Store) GetInspector(_ context.Context, id domain.ActorID) (domain.InspectorProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.st.inspectors[id]
	return cloneInspector(p), ok, nil
}

func (s *Store) GetInspection(_ context.Context, id uint64) (domain.InspectionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.st.inspections[id]
	return cloneInspection(r), ok, nil
}

func (s *Store) GetInspectionResult(_ context.Context, inspectionID uint64, standardID string) (domain.InspectionResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.st.results[resultKey{inspectionID, standardID}]
	return r, ok, nil
}

func cloneInspector(p domain.InspectorProfile) domain.InspectorProfile {
	if p.Specializations != nil {
		p.Specializations = append([]string(nil), p.Specializations...)
	}
	return p
}

func cloneInspection(r domain.InspectionRecord) domain.InspectionRecord {
	if r.ActualDate != nil {
		h := *r.ActualDate
		r.ActualDate = &h
	}
	if r.Notes != nil {
		n := *r.Notes
		r.Notes = &n
	}
	return r
}
