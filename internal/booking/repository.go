package booking

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

// Querier is the subset of pgx the repository runs on; methods accept
// one so callers can route reads and writes through a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointments.
type Repository struct {
	db Querier
}

// NewRepository creates a repository backed by pgx.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting a mock database for tests.
func NewRepositoryWithQuerier(db Querier) *Repository {
	return &Repository{db: db}
}

const appointmentColumns = `id, patient_id, product_id, appointment_date, time_slot, status,
		payment_status, total_sen, paid_sen, balance_sen, consultation_mode, home_address,
		notes, meet_link, calendar_event_id, cancel_reason, cancelled_at, completed_at,
		created_at, updated_at`

// insertParams carries the computed fields for a new appointment row.
type insertParams struct {
	PatientID        uuid.UUID
	ProductID        uuid.UUID
	Date             time.Time
	TimeSlot         string
	PaymentStatus    PaymentStatus
	TotalSen         int64
	PaidSen          int64
	BalanceSen       int64
	ConsultationMode ConsultationMode
	HomeAddress      string
	Notes            string
}

// insert writes a new appointment on q. A unique violation on the
// live-slot index reports ErrSlotTaken: the index is the final
// arbiter for concurrent bookings of the same slot.
func (r *Repository) insert(ctx context.Context, q Querier, p insertParams) (*Appointment, error) {
	if q == nil {
		q = r.db
	}
	query := `
		INSERT INTO appointments (id, patient_id, product_id, appointment_date, time_slot,
			status, payment_status, total_sen, paid_sen, balance_sen, consultation_mode,
			home_address, notes)
		VALUES ($1, $2, $3, $4, $5, 'PENDING', $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + appointmentColumns
	row := q.QueryRow(ctx, query,
		uuid.New(), p.PatientID, p.ProductID, p.Date, p.TimeSlot,
		string(p.PaymentStatus), p.TotalSen, p.PaidSen, p.BalanceSen,
		string(p.ConsultationMode), p.HomeAddress, p.Notes,
	)
	appt, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("booking: insert appointment: %w", err)
	}
	return appt, nil
}

// GetByID fetches an appointment.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.getByID(ctx, r.db, id, false)
}

// getByID optionally takes a row lock so lifecycle transitions
// serialize on the appointment.
func (r *Repository) getByID(ctx context.Context, q Querier, id uuid.UUID, forUpdate bool) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	appt, err := scanAppointment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("booking: load appointment: %w", err)
	}
	return appt, nil
}

// ListByDate returns all appointments on a date, newest first.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE appointment_date = $1
		ORDER BY time_slot, created_at`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("booking: list by date: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

// LiveSlotsByDate returns, per "2006-01-02" date key, the set of slot
// labels held by live appointments across all products.
func (r *Repository) LiveSlotsByDate(ctx context.Context, from, to time.Time) (map[string]map[string]struct{}, error) {
	query := `
		SELECT appointment_date, time_slot
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2 AND status <> 'CANCELLED'
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking: load live slots: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]map[string]struct{})
	for rows.Next() {
		var date time.Time
		var label string
		if err := rows.Scan(&date, &label); err != nil {
			return nil, fmt.Errorf("booking: scan live slot: %w", err)
		}
		key := date.Format("2006-01-02")
		if byDate[key] == nil {
			byDate[key] = make(map[string]struct{})
		}
		byDate[key][label] = struct{}{}
	}
	return byDate, rows.Err()
}

// LiveCountsByDate returns, per "2006-01-02" date key, the live
// appointment count for one product.
func (r *Repository) LiveCountsByDate(ctx context.Context, productID uuid.UUID, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT appointment_date, COUNT(*)
		FROM appointments
		WHERE product_id = $1 AND appointment_date BETWEEN $2 AND $3 AND status <> 'CANCELLED'
		GROUP BY appointment_date
	`
	rows, err := r.db.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking: load live counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("booking: scan live count: %w", err)
		}
		counts[date.Format("2006-01-02")] = count
	}
	return counts, rows.Err()
}

// liveCountForDay counts a product's live appointments on one date,
// on the given querier.
func (r *Repository) liveCountForDay(ctx context.Context, q Querier, productID uuid.UUID, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE product_id = $1 AND appointment_date = $2 AND status <> 'CANCELLED'
	`
	var count int
	if err := q.QueryRow(ctx, query, productID, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("booking: count live for day: %w", err)
	}
	return count, nil
}

// liveSlotsForDay returns the clinic-wide booked labels on one date,
// on the given querier.
func (r *Repository) liveSlotsForDay(ctx context.Context, q Querier, date time.Time) (map[string]struct{}, error) {
	query := `
		SELECT time_slot
		FROM appointments
		WHERE appointment_date = $1 AND status <> 'CANCELLED'
	`
	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("booking: load day slots: %w", err)
	}
	defer rows.Close()

	booked := make(map[string]struct{})
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("booking: scan day slot: %w", err)
		}
		booked[label] = struct{}{}
	}
	return booked, rows.Err()
}

// markCancelled transitions the row to CANCELLED on q.
func (r *Repository) markCancelled(ctx context.Context, q Querier, id uuid.UUID, reason string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'CANCELLED', cancel_reason = $2, cancelled_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(q.QueryRow(ctx, query, id, reason))
	if err != nil {
		return nil, fmt.Errorf("booking: mark cancelled: %w", err)
	}
	return appt, nil
}

// markStatus transitions the row to a new status on q, stamping
// completed_at for completions.
func (r *Repository) markStatus(ctx context.Context, q Querier, id uuid.UUID, status Status) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $2,
			completed_at = CASE WHEN $2 = 'COMPLETED' THEN now() ELSE completed_at END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		return nil, fmt.Errorf("booking: mark %s: %w", status, err)
	}
	return appt, nil
}

// AttachMeeting stores the calendar collaborator's meet link and
// event id on the appointment.
func (r *Repository) AttachMeeting(ctx context.Context, id uuid.UUID, meetLink, eventID string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET meet_link = $2, calendar_event_id = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, meetLink, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("booking: attach meeting: %w", err)
	}
	return appt, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.ProductID, &a.AppointmentDate, &a.TimeSlot, &a.Status,
		&a.PaymentStatus, &a.TotalSen, &a.PaidSen, &a.BalanceSen, &a.ConsultationMode,
		&a.HomeAddress, &a.Notes, &a.MeetLink, &a.CalendarEventID, &a.CancelReason,
		&a.CancelledAt, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
