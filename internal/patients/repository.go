package patients

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

// ErrPatientNotFound is returned when no patient exists for the id.
var ErrPatientNotFound = errors.New("patient not found")

// Patient is the minimal profile the booking core depends on. Full
// profile management lives outside this service.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	HomeAddress string    `json:"home_address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores patient profiles.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting a mock database for tests.
func NewRepositoryWithQuerier(db querier) *Repository {
	return &Repository{db: db}
}

// GetByID fetches a patient profile.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := `
		SELECT id, full_name, phone, email, home_address, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var p Patient
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.FullName, &p.Phone, &p.Email, &p.HomeAddress, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: load profile: %w", err)
	}
	return &p, nil
}

// Create inserts a new patient profile.
func (r *Repository) Create(ctx context.Context, fullName, phone, email string) (*Patient, error) {
	id := uuid.New()
	query := `
		INSERT INTO patients (id, full_name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, full_name, phone, email, home_address, created_at, updated_at
	`
	var p Patient
	err := r.db.QueryRow(ctx, query, id, fullName, phone, email).
		Scan(&p.ID, &p.FullName, &p.Phone, &p.Email, &p.HomeAddress, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("patients: insert profile: %w", err)
	}
	return &p, nil
}

// UpdateHomeAddress stores the home-visit address captured during a
// booking. Best-effort: callers log and continue on failure.
func (r *Repository) UpdateHomeAddress(ctx context.Context, id uuid.UUID, address string) error {
	query := `UPDATE patients SET home_address = $2, updated_at = now() WHERE id = $1`
	ct, err := r.db.Exec(ctx, query, id, address)
	if err != nil {
		return fmt.Errorf("patients: update home address: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}
