package reports

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klinikware/booking-platform/pkg/logging"
)

func newHandlerFixture(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	repo, mock := newTestRepo(t)
	return NewHandler(repo, "MYR", logging.Default()), mock
}

func TestSummaryHandler_RejectsBadRange(t *testing.T) {
	handler, _ := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/admin/reports/summary?from=2025-12-31&to=2025-12-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/admin/reports/summary?from=dec&to=2025-12-31", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryHandler_ReturnsAggregates(t *testing.T) {
	handler, mock := newHandlerFixture(t)
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-31")

	mock.ExpectQuery("SELECT COUNT").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT COUNT").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT COUNT").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery("SELECT COALESCE").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"paid", "balance"}).AddRow(int64(90000), int64(30000)))

	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/admin/reports/summary?from=2025-12-01&to=2025-12-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, int64(10), summary.BookingsTotal)
	assert.Equal(t, int64(90000), summary.RevenueSen)
	assert.Equal(t, "MYR", summary.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUtilizationHandler_EmptyListNotNull(t *testing.T) {
	handler, mock := newHandlerFixture(t)
	from := mustDate(t, "2025-12-01")
	to := mustDate(t, "2025-12-07")

	mock.ExpectQuery("LEFT JOIN daily_quotas").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quota_per_day", "booked"}))

	rec := httptest.NewRecorder()
	handler.Utilization(rec, httptest.NewRequest(http.MethodGet, "/admin/reports/utilization?from=2025-12-01&to=2025-12-07", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
