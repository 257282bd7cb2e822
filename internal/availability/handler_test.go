package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klinikware/booking-platform/internal/catalog"
	"github.com/klinikware/booking-platform/pkg/logging"
)

func newTestHandler(t *testing.T, products *fakeProducts) (*Handler, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logging.Default())
	resolver := newTestResolver(products, &fakeSchedules{template: weekdayTemplate()}, nil)
	service := NewService(resolver, cache, nil, logging.Default())
	return NewHandler(service, logging.Default()), cache
}

func TestDayHandler_ReturnsSlots(t *testing.T) {
	handler, _ := newTestHandler(t, activeProduct(6))
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet,
		"/availability/day?product_id="+productID.String()+"&date=2025-12-02", nil)
	rec := httptest.NewRecorder()
	handler.Day(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2025-12-02", resp.Date)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, resp.Slots)
}

func TestDayHandler_SecondRequestServedFromCache(t *testing.T) {
	handler, cache := newTestHandler(t, activeProduct(6))
	productID := uuid.New()
	url := "/availability/day?product_id=" + productID.String() + "&date=2025-12-02"

	rec := httptest.NewRecorder()
	handler.Day(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	slots, hit := cache.GetDay(context.Background(), productID, date("2025-12-02"))
	require.True(t, hit)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)

	rec = httptest.NewRecorder()
	handler.Day(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDayHandler_BadInputs(t *testing.T) {
	handler, _ := newTestHandler(t, activeProduct(6))

	rec := httptest.NewRecorder()
	handler.Day(rec, httptest.NewRequest(http.MethodGet, "/availability/day?product_id=nope&date=2025-12-02", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.Day(rec, httptest.NewRequest(http.MethodGet,
		"/availability/day?product_id="+uuid.NewString()+"&date=02-12-2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDayHandler_UnknownProduct(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeProducts{err: catalog.ErrProductNotFound})

	rec := httptest.NewRecorder()
	handler.Day(rec, httptest.NewRequest(http.MethodGet,
		"/availability/day?product_id="+uuid.NewString()+"&date=2025-12-02", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMonthHandler_ZeroBasedMonth(t *testing.T) {
	handler, _ := newTestHandler(t, activeProduct(6))
	productID := uuid.New()

	// month=11 means December under the zero-based convention.
	req := httptest.NewRequest(http.MethodGet,
		"/availability/month?product_id="+productID.String()+"&year=2025&month=11", nil)
	rec := httptest.NewRecorder()
	handler.Month(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MonthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 11, resp.Month)
	assert.Contains(t, resp.Dates, "2025-12-01")
	assert.NotContains(t, resp.Dates, "2025-11-30")
}

func TestMonthHandler_RejectsOutOfRangeMonth(t *testing.T) {
	handler, _ := newTestHandler(t, activeProduct(6))

	req := httptest.NewRequest(http.MethodGet,
		"/availability/month?product_id="+uuid.NewString()+"&year=2025&month=12", nil)
	rec := httptest.NewRecorder()
	handler.Month(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonthHandler_PastMonthIsEmptyList(t *testing.T) {
	handler, _ := newTestHandler(t, activeProduct(6))

	req := httptest.NewRequest(http.MethodGet,
		"/availability/month?product_id="+uuid.NewString()+"&year=2025&month=5", nil)
	rec := httptest.NewRecorder()
	handler.Month(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MonthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Dates)
	assert.Empty(t, resp.Dates)
}
