package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"trust_ledger/internal/app"
	"trust_ledger/internal/domain"
	"trust_ledger/internal/storage/memory"
)

// mapCache is a JSON round-tripping Cache so cached values behave like the
// Redis ones.
type mapCache struct {
	mu      sync.Mutex
	m       map[string][]byte
	dels    []string
	failDel error
}

func newMapCache() *mapCache { return &mapCache{m: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = b
	return nil
}

func (c *mapCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDel != nil {
		return c.failDel
	}
	delete(c.m, key)
	c.dels = append(c.dels, key)
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[key]
	return ok
}

var (
	admin     = domain.Caller{ID: "admin-1", Admin: true}
	customer  = domain.Caller{ID: "customer-1"}
	stranger  = domain.Caller{ID: "customer-2"}
	inspector = domain.Caller{ID: "inspector-1"}
)

func at(c domain.Caller, h domain.Height) domain.Call { return domain.Call{Caller: c, Height: h} }

func newLedger(t *testing.T) *app.Ledger {
	t.Helper()
	return app.NewLedger(memory.New(), nil, 0)
}

func goodFeedback() domain.FeedbackSubmission {
	return domain.FeedbackSubmission{
		ProviderID:  "provider-1",
		ServiceType: "plumbing",
		Rating:      4,
		Comment:     "Good service overall",
		ServiceDate: 150,
	}
}

// scheduledInspection registers inspector and schedules one inspection for
// them at height 100.
func scheduledInspection(t *testing.T, l *app.Ledger) uint64 {
	t.Helper()
	ctx := context.Background()
	err := l.RegisterInspector(ctx, at(admin, 100), domain.InspectorProfile{
		ID: inspector.ID, Name: "Dana", Specializations: []string{"plumbing"},
	})
	if err != nil {
		t.Fatalf("register inspector: %v", err)
	}
	id, err := l.ScheduleInspection(ctx, at(admin, 100), domain.InspectionRequest{
		ProviderID:    "provider-1",
		InspectorID:   inspector.ID,
		ServiceType:   "plumbing",
		ScheduledDate: 120,
		Location:      "12 Harbour Rd",
	})
	if err != nil {
		t.Fatalf("schedule inspection: %v", err)
	}
	return id
}

func (c *mapCache) setFailDel(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failDel = err
}
