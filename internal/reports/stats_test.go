package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepositoryWithDB(mock), mock
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestGetSummary(t *testing.T) {
	repo, mock := newTestRepo(t)
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-31")

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(30)))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"paid", "balance"}).
			AddRow(int64(550000), int64(120000)))

	summary, err := repo.GetSummary(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", summary.PeriodStart)
	assert.Equal(t, int64(42), summary.BookingsTotal)
	assert.Equal(t, int64(5), summary.BookingsCancelled)
	assert.Equal(t, int64(30), summary.BookingsCompleted)
	assert.Equal(t, int64(550000), summary.RevenueSen)
	assert.Equal(t, int64(120000), summary.OutstandingSen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUtilization(t *testing.T) {
	repo, mock := newTestRepo(t)
	// One week: capacity is quota_per_day * 7.
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-07")
	productID := uuid.NewString()

	mock.ExpectQuery("LEFT JOIN daily_quotas").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quota_per_day", "booked"}).
			AddRow(productID, "Dental Scaling", int64(6), int64(21)))

	utilization, err := repo.GetUtilization(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, utilization, 1)
	assert.Equal(t, productID, utilization[0].ProductID)
	assert.Equal(t, int64(42), utilization[0].Capacity)
	assert.InDelta(t, 0.5, utilization[0].Utilization, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUtilization_ZeroCapacity(t *testing.T) {
	repo, mock := newTestRepo(t)
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-01")

	mock.ExpectQuery("LEFT JOIN daily_quotas").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quota_per_day", "booked"}).
			AddRow(uuid.NewString(), "Walk-in Consult", int64(0), int64(0)))

	utilization, err := repo.GetUtilization(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, utilization, 1)
	assert.Zero(t, utilization[0].Utilization)
	assert.NoError(t, mock.ExpectationsWereMet())
}
