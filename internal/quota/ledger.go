// Package quota maintains the per-(product, day) booking counter.
//
// The ledger tracks live bookings: it is incremented inside the
// booking transaction and decremented on cancellation, so its counts
// stay consistent with the live-appointment rows the availability
// resolver filters on. The increment is also the capacity arbiter:
// its conflict path takes the row lock and re-reads the committed
// counter, so two transactions booking different slots of the same
// (product, day) serialize here rather than both passing an earlier
// read of the live-appointment count.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrQuotaNotFound is returned when no ledger row exists yet.
var ErrQuotaNotFound = errors.New("daily quota not found")

// ErrQuotaExhausted is returned by Increment when the counter is
// already at the product's per-day capacity.
var ErrQuotaExhausted = errors.New("daily quota exhausted")

// DailyQuota is the cached counter of bookings against a product's
// per-day capacity for a given date.
type DailyQuota struct {
	ProductID   uuid.UUID `json:"product_id"`
	QuotaDate   time.Time `json:"quota_date"`
	BookedCount int       `json:"booked_count"`
	MaxQuota    int       `json:"max_quota"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Querier is the subset of pgx the ledger needs; booking passes its
// transaction so the increment commits with the appointment insert.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger persists daily quota counters.
type Ledger struct {
	db Querier
}

// NewLedger creates a ledger backed by pgx.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	if pool == nil {
		panic("quota: pgx pool required")
	}
	return &Ledger{db: pool}
}

// NewLedgerWithQuerier allows injecting a mock database for tests.
func NewLedgerWithQuerier(db Querier) *Ledger {
	return &Ledger{db: db}
}

// Increment bumps the counter for (product, date), creating the row
// with the product's current max when absent. The upsert is a single
// statement: the conflict path locks the row and sees the latest
// committed count, so the WHERE guard holds capacity even when
// concurrent transactions each passed an earlier advisory count.
// A counter already at capacity returns no row; that surfaces as
// ErrQuotaExhausted.
func (l *Ledger) Increment(ctx context.Context, q Querier, productID uuid.UUID, date time.Time, maxQuota int) (*DailyQuota, error) {
	if q == nil {
		q = l.db
	}
	query := `
		INSERT INTO daily_quotas (product_id, quota_date, booked_count, max_quota)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (product_id, quota_date)
		DO UPDATE SET booked_count = daily_quotas.booked_count + 1,
			max_quota = EXCLUDED.max_quota,
			updated_at = now()
		WHERE daily_quotas.booked_count < EXCLUDED.max_quota
		RETURNING product_id, quota_date, booked_count, max_quota, updated_at
	`
	var dq DailyQuota
	err := q.QueryRow(ctx, query, productID, date, maxQuota).
		Scan(&dq.ProductID, &dq.QuotaDate, &dq.BookedCount, &dq.MaxQuota, &dq.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuotaExhausted
		}
		return nil, fmt.Errorf("quota: increment: %w", err)
	}
	return &dq, nil
}

// Decrement releases one booked slot, clamped at zero. Called when an
// appointment is cancelled.
func (l *Ledger) Decrement(ctx context.Context, q Querier, productID uuid.UUID, date time.Time) error {
	if q == nil {
		q = l.db
	}
	query := `
		UPDATE daily_quotas
		SET booked_count = GREATEST(booked_count - 1, 0), updated_at = now()
		WHERE product_id = $1 AND quota_date = $2
	`
	if _, err := q.Exec(ctx, query, productID, date); err != nil {
		return fmt.Errorf("quota: decrement: %w", err)
	}
	return nil
}

// Get returns the ledger row for (product, date).
func (l *Ledger) Get(ctx context.Context, productID uuid.UUID, date time.Time) (*DailyQuota, error) {
	query := `
		SELECT product_id, quota_date, booked_count, max_quota, updated_at
		FROM daily_quotas
		WHERE product_id = $1 AND quota_date = $2
	`
	var dq DailyQuota
	err := l.db.QueryRow(ctx, query, productID, date).
		Scan(&dq.ProductID, &dq.QuotaDate, &dq.BookedCount, &dq.MaxQuota, &dq.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuotaNotFound
		}
		return nil, fmt.Errorf("quota: load: %w", err)
	}
	return &dq, nil
}
