package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentType distinguishes a deposit from full settlement.
type PaymentType string

const (
	TypeDeposit PaymentType = "DEPOSIT"
	TypeFull    PaymentType = "FULL"
)

// Payment records an already-captured gateway charge against an
// appointment. The gateway itself is an external collaborator; this
// core only stores the amount and reference.
type Payment struct {
	ID            uuid.UUID   `json:"id"`
	AppointmentID uuid.UUID   `json:"appointment_id"`
	AmountSen     int64       `json:"amount_sen"`
	PaymentType   PaymentType `json:"payment_type"`
	GatewayRef    string      `json:"gateway_ref"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Querier is the subset of pgx used by the repository. Booking passes
// its transaction here so the payment row commits atomically with the
// appointment.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists payment records.
type Repository struct {
	db Querier
}

// NewRepository creates a repository backed by pgx.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting a mock database for tests.
func NewRepositoryWithQuerier(db Querier) *Repository {
	return &Repository{db: db}
}

// Insert writes a payment row. When q is non-nil the write happens on
// that querier (normally the booking transaction).
func (r *Repository) Insert(ctx context.Context, q Querier, appointmentID uuid.UUID, amountSen int64, paymentType PaymentType, gatewayRef string) (*Payment, error) {
	if q == nil {
		q = r.db
	}
	id := uuid.New()
	query := `
		INSERT INTO payments (id, appointment_id, amount_sen, payment_type, gateway_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, appointment_id, amount_sen, payment_type, gateway_ref, status, created_at
	`
	var p Payment
	err := q.QueryRow(ctx, query, id, appointmentID, amountSen, string(paymentType), gatewayRef).
		Scan(&p.ID, &p.AppointmentID, &p.AmountSen, &p.PaymentType, &p.GatewayRef, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("payments: insert payment: %w", err)
	}
	return &p, nil
}

// ListByAppointment returns payments for an appointment, oldest first.
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Payment, error) {
	query := `
		SELECT id, appointment_id, amount_sen, payment_type, gateway_ref, status, created_at
		FROM payments
		WHERE appointment_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("payments: list by appointment: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.AmountSen, &p.PaymentType, &p.GatewayRef, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments: scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
