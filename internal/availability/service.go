package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/klinikware/booking-platform/internal/observability/metrics"
	"github.com/klinikware/booking-platform/pkg/logging"
)

// Service fronts the resolver with the day-availability cache.
type Service struct {
	resolver *Resolver
	cache    *Cache
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService creates an availability service. cache and m may be nil.
func NewService(resolver *Resolver, cache *Cache, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{resolver: resolver, cache: cache, metrics: m, logger: logger}
}

// DaySlots returns bookable slots for (product, date), serving from
// cache when possible.
func (s *Service) DaySlots(ctx context.Context, productID uuid.UUID, date time.Time) ([]string, error) {
	if slots, hit := s.cache.GetDay(ctx, productID, date); hit {
		s.metrics.ObserveCacheLookup(true)
		return slots, nil
	}
	s.metrics.ObserveCacheLookup(false)

	start := time.Now()
	slots, err := s.resolver.DaySlots(ctx, productID, date)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResolveLatency("day", time.Since(start).Seconds())

	s.cache.SetDay(ctx, productID, date, slots)
	return slots, nil
}

// MonthDates returns the bookable dates of a month. Month views are
// not cached: they already batch their reads and would be invalidated
// too broadly to be worth it.
func (s *Service) MonthDates(ctx context.Context, productID uuid.UUID, year int, month time.Month) ([]string, error) {
	start := time.Now()
	dates, err := s.resolver.MonthDates(ctx, productID, year, month)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResolveLatency("month", time.Since(start).Seconds())
	return dates, nil
}
