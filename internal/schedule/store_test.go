package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStoreWithQuerier(mock), mock
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestActiveSlotsByDay_GroupsByWeekday(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM weekly_slots").
		WillReturnRows(pgxmock.NewRows([]string{"day_of_week", "time_slot"}).
			AddRow(1, "09:00").
			AddRow(1, "10:00").
			AddRow(2, "09:00"))

	byDay, err := store.ActiveSlotsByDay(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, byDay[1])
	assert.Equal(t, []string{"09:00"}, byDay[2])
	assert.Nil(t, byDay[0], "Sunday has no template rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveSlotsForDay_RejectsBadWeekday(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ActiveSlotsForDay(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidDayOfWeek)

	_, err = store.ActiveSlotsForDay(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidDayOfWeek)
}

func TestToggleWeeklySlot_FlipsExistingRow(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO weekly_slots").
		WithArgs(pgxmock.AnyArg(), 1, "09:00").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "day_of_week", "time_slot", "is_active", "created_at", "updated_at",
		}).AddRow(uuid.New(), 1, "09:00", false, now, now))

	slot, err := store.ToggleWeeklySlot(context.Background(), 1, "09:00")

	require.NoError(t, err)
	assert.False(t, slot.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleWeeklySlot_RejectsBadLabel(t *testing.T) {
	store, mock := newTestStore(t)

	_, err := store.ToggleWeeklySlot(context.Background(), 1, "9am")

	assert.ErrorIs(t, err, ErrInvalidSlotLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOverride_NotFound(t *testing.T) {
	store, mock := newTestStore(t)
	date := mustDate(t, "2025-12-25")

	mock.ExpectQuery("FROM date_overrides").
		WithArgs(date).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetOverride(context.Background(), date)

	assert.ErrorIs(t, err, ErrOverrideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverridesInRange_KeyedByDate(t *testing.T) {
	store, mock := newTestStore(t)
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-31")
	christmas := mustDate(t, "2025-12-25")
	now := time.Now()

	mock.ExpectQuery("FROM date_overrides").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "override_date", "is_closed", "reason", "custom_slots", "created_at", "updated_at",
		}).AddRow(uuid.New(), christmas, true, "christmas", []string(nil), now, now))

	overrides, err := store.OverridesInRange(context.Background(), from, to)

	require.NoError(t, err)
	require.Contains(t, overrides, "2025-12-25")
	assert.True(t, overrides["2025-12-25"].IsClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOverride_ValidatesCustomSlots(t *testing.T) {
	store, mock := newTestStore(t)
	date := mustDate(t, "2025-12-07")

	_, err := store.UpsertOverride(context.Background(), date, false, "", []string{"10:00", "10:00"})
	assert.ErrorIs(t, err, ErrDuplicateSlotLabel)

	_, err = store.UpsertOverride(context.Background(), date, false, "", []string{"25:00"})
	assert.ErrorIs(t, err, ErrInvalidSlotLabel)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOverride_WritesRow(t *testing.T) {
	store, mock := newTestStore(t)
	date := mustDate(t, "2025-12-07")
	now := time.Now()

	mock.ExpectQuery("INSERT INTO date_overrides").
		WithArgs(pgxmock.AnyArg(), date, false, "special sunday session", []string{"10:00", "11:00"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "override_date", "is_closed", "reason", "custom_slots", "created_at", "updated_at",
		}).AddRow(uuid.New(), date, false, "special sunday session", []string{"10:00", "11:00"}, now, now))

	override, err := store.UpsertOverride(context.Background(), date, false, "special sunday session", []string{"10:00", "11:00"})

	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, override.CustomSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOverride_NotFound(t *testing.T) {
	store, mock := newTestStore(t)
	date := mustDate(t, "2025-12-07")

	mock.ExpectExec("DELETE FROM date_overrides").
		WithArgs(date).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.DeleteOverride(context.Background(), date)

	assert.ErrorIs(t, err, ErrOverrideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
