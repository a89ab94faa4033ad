// Package mysql is the durable RecordStore. Every write goes through a SQL
// transaction; reads outside a transaction see committed rows only.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trust_ledger/internal/domain"
)

var _ domain.RecordStore = (*Repo)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	reader
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{reader: reader{q: db}, db: db} }

// RunInTx runs fn in one SQL transaction, rolling back when fn or the commit
// fails.
func (r *Repo) RunInTx(ctx context.Context, fn func(tx domain.RecordTx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(&tx{reader: reader{q: sqlTx, lock: true}, q: sqlTx}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func valHeight(p *domain.Height) any {
	if p == nil {
		return nil
	}
	return uint64(*p)
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// ---------- writes ----------

type tx struct {
	reader
	q querier
}

func (t *tx) NextID(ctx context.Context, seq domain.Sequence) (uint64, error) {
	res, err := t.q.ExecContext(ctx, nextIDSQL, string(seq))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (t *tx) PutFeedback(ctx context.Context, f domain.FeedbackRecord) error {
	_, err := t.q.ExecContext(ctx, upsertFeedbackSQL,
		f.ID,
		string(f.CustomerID),
		string(f.ProviderID),
		f.ServiceType,
		f.Rating,
		f.Comment,
		uint64(f.ServiceDate),
		uint64(f.FeedbackDate),
		f.Verified,
	)
	return err
}

func (t *tx) PutCategoryFeedback(ctx context.Context, c domain.CategoryFeedback) error {
	_, err := t.q.ExecContext(ctx, upsertCategoryFeedbackSQL, c.FeedbackID, c.Category, c.Rating, c.Comment)
	return err
}

func (t *tx) PutInspector(ctx context.Context, p domain.InspectorProfile) error {
	specs, err := json.Marshal(p.Specializations)
	if err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, upsertInspectorSQL, string(p.ID), p.Name, string(specs))
	return err
}

func (t *tx) PutInspection(ctx context.Context, r domain.InspectionRecord) error {
	_, err := t.q.ExecContext(ctx, upsertInspectionSQL,
		r.ID,
		string(r.ProviderID),
		string(r.InspectorID),
		r.ServiceType,
		uint64(r.ScheduledDate),
		valHeight(r.ActualDate),
		uint8(r.Status),
		r.Location,
		valStr(r.Notes),
		uint64(r.CreatedDate),
	)
	return err
}

func (t *tx) PutInspectionResult(ctx context.Context, r domain.InspectionResult) error {
	_, err := t.q.ExecContext(ctx, upsertInspectionResultSQL, r.InspectionID, r.StandardID, r.Score, r.Notes)
	return err
}

// ---------- reads ----------

// reader runs the single-row lookups. Inside a transaction lock is set and
// every lookup takes a row lock, so a concurrent writer checking the same row
// waits for this commit and then sees its result.
type reader struct {
	q    querier
	lock bool
}

func (r reader) row(ctx context.Context, query string, args ...any) *sql.Row {
	if r.lock {
		query += "FOR UPDATE\n"
	}
	return r.q.QueryRowContext(ctx, query, args...)
}

// found folds sql.ErrNoRows into found=false.
func found(err error) (bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r reader) GetFeedback(ctx context.Context, id uint64) (domain.FeedbackRecord, bool, error) {
	var f domain.FeedbackRecord
	var customer, provider string
	var serviceDate, feedbackDate uint64
	err := r.row(ctx, getFeedbackSQL, id).Scan(
		&f.ID, &customer, &provider, &f.ServiceType, &f.Rating, &f.Comment,
		&serviceDate, &feedbackDate, &f.Verified,
	)
	ok, err := found(err)
	if !ok {
		return domain.FeedbackRecord{}, false, err
	}
	f.CustomerID = domain.ActorID(customer)
	f.ProviderID = domain.ActorID(provider)
	f.ServiceDate = domain.Height(serviceDate)
	f.FeedbackDate = domain.Height(feedbackDate)
	return f, true, nil
}

func (r reader) GetCategoryFeedback(ctx context.Context, feedbackID uint64, category string) (domain.CategoryFeedback, bool, error) {
	var c domain.CategoryFeedback
	err := r.row(ctx, getCategoryFeedbackSQL, feedbackID, category).Scan(&c.FeedbackID, &c.Category, &c.Rating, &c.Comment)
	ok, err := found(err)
	if !ok {
		return domain.CategoryFeedback{}, false, err
	}
	return c, true, nil
}

func (r reader) ProviderRating(ctx context.Context, provider domain.ActorID) (domain.ProviderRating, bool, error) {
	var sum, count uint64
	if err := r.q.QueryRowContext(ctx, providerRatingSQL, string(provider)).Scan(&sum, &count); err != nil {
		return domain.ProviderRating{}, false, err
	}
	rating, ok := domain.NewProviderRating(provider, sum, count)
	return rating, ok, nil
}

func (r reader) GetInspector(ctx context.Context, id domain.ActorID) (domain.InspectorProfile, bool, error) {
	var p domain.InspectorProfile
	var pid string
	var specs []byte
	err := r.row(ctx, getInspectorSQL, string(id)).Scan(&pid, &p.Name, &specs)
	ok, err := found(err)
	if !ok {
		return domain.InspectorProfile{}, false, err
	}
	p.ID = domain.ActorID(pid)
	if err := json.Unmarshal(specs, &p.Specializations); err != nil {
		return domain.InspectorProfile{}, false, fmt.Errorf("decode specializations of %s: %w", id, err)
	}
	return p, true, nil
}

func (r reader) GetInspection(ctx context.Context, id uint64) (domain.InspectionRecord, bool, error) {
	var rec domain.InspectionRecord
	var provider, inspector string
	var scheduled, created uint64
	var status uint8
	var actual sql.Null[uint64]
	var notes sql.NullString
	err := r.row(ctx, getInspectionSQL, id).Scan(
		&rec.ID, &provider, &inspector, &rec.ServiceType, &scheduled,
		&actual, &status, &rec.Location, &notes, &created,
	)
	ok, err := found(err)
	if !ok {
		return domain.InspectionRecord{}, false, err
	}
	rec.ProviderID = domain.ActorID(provider)
	rec.InspectorID = domain.ActorID(inspector)
	rec.ScheduledDate = domain.Height(scheduled)
	rec.CreatedDate = domain.Height(created)
	rec.Status = domain.Status(status)
	if actual.Valid {
		h := domain.Height(actual.V)
		rec.ActualDate = &h
	}
	if notes.Valid {
		n := notes.String
		rec.Notes = &n
	}
	return rec, true, nil
}

func (r reader) GetInspectionResult(ctx context.Context, inspectionID uint64, standardID string) (domain.InspectionResult, bool, error) {
	var res domain.InspectionResult
	err := r.row(ctx, getInspectionResultSQL, inspectionID, standardID).Scan(&res.InspectionID, &res.StandardID, &res.Score, &res.Notes)
	ok, err := found(err)
	if !ok {
		return domain.InspectionResult{}, false, err
	}
	return res, true, nil
}
