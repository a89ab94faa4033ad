//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trust_ledger/internal/app"
	"trust_ledger/internal/domain"
	mysqlrepo "trust_ledger/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// startMySQL runs an isolated MySQL and returns a migrated connection.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=ledger",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "ledger")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_RecordsRoundTrip(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()

	var fbID, inspID uint64
	err := repo.RunInTx(ctx, func(tx domain.RecordTx) error {
		var err error
		if fbID, err = tx.NextID(ctx, domain.SeqFeedback); err != nil {
			return err
		}
		if err := tx.PutFeedback(ctx, domain.FeedbackRecord{
			ID: fbID, CustomerID: "c1", ProviderID: "p1", ServiceType: "plumbing",
			Rating: 3, Comment: "Très bien", ServiceDate: 150, FeedbackDate: 160,
		}); err != nil {
			return err
		}
		if err := tx.PutCategoryFeedback(ctx, domain.CategoryFeedback{FeedbackID: fbID, Category: "punctuality", Rating: 5}); err != nil {
			return err
		}
		if err := tx.PutInspector(ctx, domain.InspectorProfile{ID: "i1", Name: "Dana", Specializations: []string{"plumbing"}}); err != nil {
			return err
		}
		if inspID, err = tx.NextID(ctx, domain.SeqInspection); err != nil {
			return err
		}
		return tx.PutInspection(ctx, domain.InspectionRecord{
			ID: inspID, ProviderID: "p1", InspectorID: "i1", ScheduledDate: 200,
			Status: domain.StatusScheduled, Location: "Dock 3", CreatedDate: 160,
		})
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fbID)
	assert.Equal(t, uint64(1), inspID)

	f, found, err := repo.GetFeedback(ctx, fbID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Très bien", f.Comment)
	assert.False(t, f.Verified)

	p, found, err := repo.GetInspector(ctx, "i1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"plumbing"}, p.Specializations)

	rec, found, err := repo.GetInspection(ctx, inspID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, rec.ActualDate)
	assert.Nil(t, rec.Notes)

	// start + complete
	require.NoError(t, repo.RunInTx(ctx, func(tx domain.RecordTx) error {
		r, _, err := tx.GetInspection(ctx, inspID)
		if err != nil {
			return err
		}
		if r, err = r.Start(210); err != nil {
			return err
		}
		if r, err = r.Complete("passed"); err != nil {
			return err
		}
		return tx.PutInspection(ctx, r)
	}))
	rec, _, _ = repo.GetInspection(ctx, inspID)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	require.NotNil(t, rec.ActualDate)
	assert.Equal(t, domain.Height(210), *rec.ActualDate)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "passed", *rec.Notes)
}

func TestRepo_MySQL_RollbackAndRating(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()

	_, found, err := repo.ProviderRating(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, found)

	put := func(rating int) error {
		return repo.RunInTx(ctx, func(tx domain.RecordTx) error {
			id, err := tx.NextID(ctx, domain.SeqFeedback)
			if err != nil {
				return err
			}
			return tx.PutFeedback(ctx, domain.FeedbackRecord{ID: id, CustomerID: "c", ProviderID: "p1", Rating: rating})
		})
	}
	require.NoError(t, put(3))
	require.NoError(t, put(5))

	boom := errors.New("boom")
	err = repo.RunInTx(ctx, func(tx domain.RecordTx) error {
		id, err := tx.NextID(ctx, domain.SeqFeedback)
		if err != nil {
			return err
		}
		if err := tx.PutFeedback(ctx, domain.FeedbackRecord{ID: id, CustomerID: "c", ProviderID: "p1", Rating: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	r, found, err := repo.ProviderRating(ctx, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, r.Average)
	assert.Equal(t, uint64(2), r.Count)

	// the rolled back allocation is not visible either
	require.NoError(t, put(4))
	_, found, _ = repo.GetFeedback(ctx, 3)
	assert.True(t, found)
}

func TestRepo_MySQL_ActualDateKeepsFullRange(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()

	top := domain.Height(math.MaxUint64)
	require.NoError(t, repo.RunInTx(ctx, func(tx domain.RecordTx) error {
		return tx.PutInspection(ctx, domain.InspectionRecord{
			ID: 1, ProviderID: "p1", InspectorID: "i1", ScheduledDate: 1,
			ActualDate: &top, Status: domain.StatusInProgress, Location: "Dock 3", CreatedDate: 1,
		})
	}))

	rec, found, err := repo.GetInspection(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, rec.ActualDate)
	assert.Equal(t, top, *rec.ActualDate)
}

// Two ledgers on one database race to start the same inspections; the row
// lock taken by the in-transaction read lets exactly one of them through.
func TestRepo_MySQL_ConcurrentStartsOnSharedStore(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()
	admin := domain.Caller{ID: "admin-1", Admin: true}
	inspector := domain.Caller{ID: "i1"}

	a := app.NewLedger(repo, nil, 0)
	b := app.NewLedger(repo, nil, 0)

	require.NoError(t, a.RegisterInspector(ctx, domain.Call{Caller: admin, Height: 100}, domain.InspectorProfile{
		ID: inspector.ID, Name: "Dana", Specializations: []string{"plumbing"},
	}))

	for i := 0; i < 10; i++ {
		id, err := a.ScheduleInspection(ctx, domain.Call{Caller: admin, Height: 100}, domain.InspectionRequest{
			ProviderID: "p1", InspectorID: inspector.ID, ServiceType: "plumbing",
			ScheduledDate: 120, Location: "Dock 3",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for n, l := range []*app.Ledger{a, b} {
			wg.Add(1)
			go func(n int, l *app.Ledger) {
				defer wg.Done()
				errs[n] = l.StartInspection(ctx, domain.Call{Caller: inspector, Height: domain.Height(130 + n)}, id)
			}(n, l)
		}
		wg.Wait()

		var ok, rejected int
		winner := domain.Height(0)
		for n, err := range errs {
			switch {
			case err == nil:
				ok++
				winner = domain.Height(130 + n)
			case errors.Is(err, domain.ErrInvalidStatus):
				rejected++
			default:
				t.Fatalf("inspection %d: unexpected error %v", id, err)
			}
		}
		require.Equal(t, 1, ok, "inspection %d", id)
		require.Equal(t, 1, rejected, "inspection %d", id)

		rec, _, err := repo.GetInspection(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec.ActualDate)
		assert.Equal(t, winner, *rec.ActualDate, "the losing start must not overwrite the winner")
	}
}
