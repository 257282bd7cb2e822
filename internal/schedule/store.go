package schedule

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

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the weekly template and date overrides.
type Store struct {
	db querier
}

// NewStore initializes a store backed by pgxpool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("schedule: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithQuerier allows injecting a mock database for tests.
func NewStoreWithQuerier(db querier) *Store {
	return &Store{db: db}
}

// ListWeeklySlots returns the full template ordered by day then label.
func (s *Store) ListWeeklySlots(ctx context.Context) ([]*WeeklySlot, error) {
	query := `
		SELECT id, day_of_week, time_slot, is_active, created_at, updated_at
		FROM weekly_slots
		ORDER BY day_of_week, time_slot
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schedule: list weekly slots: %w", err)
	}
	defer rows.Close()

	var slots []*WeeklySlot
	for rows.Next() {
		var slot WeeklySlot
		if err := rows.Scan(&slot.ID, &slot.DayOfWeek, &slot.TimeSlot, &slot.IsActive, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("schedule: scan weekly slot: %w", err)
		}
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}

// ActiveSlotsByDay loads the active template grouped by day of week,
// each day's labels in ascending order.
func (s *Store) ActiveSlotsByDay(ctx context.Context) (map[int][]string, error) {
	query := `
		SELECT day_of_week, time_slot
		FROM weekly_slots
		WHERE is_active
		ORDER BY day_of_week, time_slot
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schedule: load active template: %w", err)
	}
	defer rows.Close()

	byDay := make(map[int][]string)
	for rows.Next() {
		var day int
		var label string
		if err := rows.Scan(&day, &label); err != nil {
			return nil, fmt.Errorf("schedule: scan template row: %w", err)
		}
		byDay[day] = append(byDay[day], label)
	}
	return byDay, rows.Err()
}

// ActiveSlotsForDay returns the active template labels for one day of
// week, ascending.
func (s *Store) ActiveSlotsForDay(ctx context.Context, dayOfWeek int) ([]string, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, ErrInvalidDayOfWeek
	}
	query := `
		SELECT time_slot
		FROM weekly_slots
		WHERE day_of_week = $1 AND is_active
		ORDER BY time_slot
	`
	rows, err := s.db.Query(ctx, query, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("schedule: load day template: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("schedule: scan day template: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// ToggleWeeklySlot flips a template entry, creating it active when it
// does not exist yet. Returns the resulting row.
func (s *Store) ToggleWeeklySlot(ctx context.Context, dayOfWeek int, timeSlot string) (*WeeklySlot, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, ErrInvalidDayOfWeek
	}
	if !ValidSlotLabel(timeSlot) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotLabel, timeSlot)
	}
	query := `
		INSERT INTO weekly_slots (id, day_of_week, time_slot, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (day_of_week, time_slot)
		DO UPDATE SET is_active = NOT weekly_slots.is_active, updated_at = now()
		RETURNING id, day_of_week, time_slot, is_active, created_at, updated_at
	`
	var slot WeeklySlot
	err := s.db.QueryRow(ctx, query, uuid.New(), dayOfWeek, timeSlot).
		Scan(&slot.ID, &slot.DayOfWeek, &slot.TimeSlot, &slot.IsActive, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("schedule: toggle weekly slot: %w", err)
	}
	return &slot, nil
}

// GetOverride returns the override for a date, or ErrOverrideNotFound.
func (s *Store) GetOverride(ctx context.Context, date time.Time) (*DateOverride, error) {
	query := `
		SELECT id, override_date, is_closed, reason, custom_slots, created_at, updated_at
		FROM date_overrides
		WHERE override_date = $1
	`
	override, err := scanOverride(s.db.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("schedule: load override: %w", err)
	}
	return override, nil
}

// OverridesInRange loads every override with from <= date <= to, keyed
// by the date formatted as "2006-01-02".
func (s *Store) OverridesInRange(ctx context.Context, from, to time.Time) (map[string]*DateOverride, error) {
	query := `
		SELECT id, override_date, is_closed, reason, custom_slots, created_at, updated_at
		FROM date_overrides
		WHERE override_date BETWEEN $1 AND $2
	`
	rows, err := s.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("schedule: load overrides in range: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]*DateOverride)
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("schedule: scan override: %w", err)
		}
		overrides[override.OverrideDate.Format("2006-01-02")] = override
	}
	return overrides, rows.Err()
}

// UpsertOverride creates or replaces the override for a date. Custom
// slot labels are validated here so reads never see malformed lists.
func (s *Store) UpsertOverride(ctx context.Context, date time.Time, isClosed bool, reason string, customSlots []string) (*DateOverride, error) {
	if customSlots != nil {
		if err := ValidateSlotLabels(customSlots); err != nil {
			return nil, err
		}
	}
	query := `
		INSERT INTO date_overrides (id, override_date, is_closed, reason, custom_slots)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (override_date)
		DO UPDATE SET is_closed = EXCLUDED.is_closed,
			reason = EXCLUDED.reason,
			custom_slots = EXCLUDED.custom_slots,
			updated_at = now()
		RETURNING id, override_date, is_closed, reason, custom_slots, created_at, updated_at
	`
	override, err := scanOverride(s.db.QueryRow(ctx, query, uuid.New(), date, isClosed, reason, customSlots))
	if err != nil {
		return nil, fmt.Errorf("schedule: upsert override: %w", err)
	}
	return override, nil
}

// DeleteOverride removes the override for a date.
func (s *Store) DeleteOverride(ctx context.Context, date time.Time) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM date_overrides WHERE override_date = $1`, date)
	if err != nil {
		return fmt.Errorf("schedule: delete override: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOverrideNotFound
	}
	return nil
}

func scanOverride(row pgx.Row) (*DateOverride, error) {
	var o DateOverride
	err := row.Scan(&o.ID, &o.OverrideDate, &o.IsClosed, &o.Reason, &o.CustomSlots, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
