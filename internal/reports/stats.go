package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Summary holds aggregate booking metrics for a date range. Currency
// labels the sen amounts and is filled in at the handler.
type Summary struct {
	PeriodStart       string `json:"period_start"`
	PeriodEnd         string `json:"period_end"`
	Currency          string `json:"currency,omitempty"`
	BookingsTotal     int64  `json:"bookings_total"`
	BookingsCancelled int64  `json:"bookings_cancelled"`
	BookingsCompleted int64  `json:"bookings_completed"`
	RevenueSen        int64  `json:"revenue_sen"`
	OutstandingSen    int64  `json:"outstanding_sen"`
}

// ProductUtilization reports quota consumption for one product.
type ProductUtilization struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Booked      int64   `json:"booked"`
	Capacity    int64   `json:"capacity"`
	Utilization float64 `json:"utilization"`
}

// statsDB defines the database surface needed by the repository.
type statsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository queries booking aggregates from the database.
type Repository struct {
	db statsDB
}

// NewRepository creates a new stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db statsDB) *Repository {
	return &Repository{db: db}
}

// GetSummary aggregates bookings and revenue for [from, to].
func (r *Repository) GetSummary(ctx context.Context, from, to time.Time) (*Summary, error) {
	s := &Summary{
		PeriodStart: from.Format("2006-01-02"),
		PeriodEnd:   to.Format("2006-01-02"),
	}

	totalQuery := `SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN $1 AND $2`
	if err := r.db.QueryRow(ctx, totalQuery, from, to).Scan(&s.BookingsTotal); err != nil {
		return nil, fmt.Errorf("reports: count bookings: %w", err)
	}

	cancelledQuery := `SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN $1 AND $2 AND status = 'CANCELLED'`
	if err := r.db.QueryRow(ctx, cancelledQuery, from, to).Scan(&s.BookingsCancelled); err != nil {
		return nil, fmt.Errorf("reports: count cancelled: %w", err)
	}

	completedQuery := `SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN $1 AND $2 AND status = 'COMPLETED'`
	if err := r.db.QueryRow(ctx, completedQuery, from, to).Scan(&s.BookingsCompleted); err != nil {
		return nil, fmt.Errorf("reports: count completed: %w", err)
	}

	revenueQuery := `
		SELECT COALESCE(SUM(paid_sen), 0), COALESCE(SUM(balance_sen), 0)
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2 AND status <> 'CANCELLED'
	`
	if err := r.db.QueryRow(ctx, revenueQuery, from, to).Scan(&s.RevenueSen, &s.OutstandingSen); err != nil {
		return nil, fmt.Errorf("reports: sum revenue: %w", err)
	}

	return s, nil
}

// GetUtilization reports per-product quota consumption for [from, to],
// capacity being quota_per_day times the number of days in range.
func (r *Repository) GetUtilization(ctx context.Context, from, to time.Time) ([]*ProductUtilization, error) {
	days := int64(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	query := `
		SELECT p.id, p.name, p.quota_per_day,
			COALESCE(SUM(dq.booked_count), 0)
		FROM products p
		LEFT JOIN daily_quotas dq
			ON dq.product_id = p.id AND dq.quota_date BETWEEN $1 AND $2
		WHERE p.is_active
		GROUP BY p.id, p.name, p.quota_per_day
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: load utilization: %w", err)
	}
	defer rows.Close()

	var out []*ProductUtilization
	for rows.Next() {
		var u ProductUtilization
		var quotaPerDay int64
		if err := rows.Scan(&u.ProductID, &u.ProductName, &quotaPerDay, &u.Booked); err != nil {
			return nil, fmt.Errorf("reports: scan utilization: %w", err)
		}
		u.Capacity = quotaPerDay * days
		if u.Capacity > 0 {
			u.Utilization = float64(u.Booked) / float64(u.Capacity)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
