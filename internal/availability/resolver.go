// Package availability merges the weekly template, date overrides,
// live appointments and per-product quotas into bookable slots.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/klinikware/booking-platform/internal/catalog"
	"github.com/klinikware/booking-platform/internal/schedule"
)

var tracer = otel.Tracer("klinikware/availability")

const dateLayout = "2006-01-02"

// ProductSource loads the product being queried.
type ProductSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// ScheduleSource loads the weekly template and date overrides.
type ScheduleSource interface {
	ActiveSlotsByDay(ctx context.Context) (map[int][]string, error)
	OverridesInRange(ctx context.Context, from, to time.Time) (map[string]*schedule.DateOverride, error)
}

// AppointmentSource reads live (non-cancelled) appointments. Both maps
// are keyed by "2006-01-02" date strings.
type AppointmentSource interface {
	// LiveSlotsByDate returns, per date, the set of clinic-wide booked
	// slot labels across all products.
	LiveSlotsByDate(ctx context.Context, from, to time.Time) (map[string]map[string]struct{}, error)
	// LiveCountsByDate returns, per date, the live appointment count
	// for one product.
	LiveCountsByDate(ctx context.Context, productID uuid.UUID, from, to time.Time) (map[string]int, error)
}

// defaultHorizonDays bounds month scans when no horizon is set.
const defaultHorizonDays = 366

// Resolver computes bookable slots for a single day or a date range.
// It is read-only and safe for concurrent use.
type Resolver struct {
	products     ProductSource
	schedules    ScheduleSource
	appointments AppointmentSource
	now          func() time.Time
	horizonDays  int
}

// NewResolver creates a resolver over the given sources.
func NewResolver(products ProductSource, schedules ScheduleSource, appointments AppointmentSource) *Resolver {
	return &Resolver{
		products:     products,
		schedules:    schedules,
		appointments: appointments,
		now:          time.Now,
		horizonDays:  defaultHorizonDays,
	}
}

// WithClock overrides the clock, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// WithHorizon caps month scans at today plus days. Non-positive
// values keep the default.
func (r *Resolver) WithHorizon(days int) *Resolver {
	if days > 0 {
		r.horizonDays = days
	}
	return r
}

// DaySlots returns the ordered bookable slot labels for one product
// on one date. Errors return an empty list, never a partial one.
func (r *Resolver) DaySlots(ctx context.Context, productID uuid.UUID, date time.Time) ([]string, error) {
	ctx, span := tracer.Start(ctx, "availability.DaySlots")
	defer span.End()
	span.SetAttributes(
		attribute.String("product_id", productID.String()),
		attribute.String("date", date.Format(dateLayout)),
	)

	byDate, err := r.resolveRange(ctx, productID, date, date)
	if err != nil {
		return nil, err
	}
	return byDate[date.Format(dateLayout)], nil
}

// MonthDates returns the ascending calendar dates in (year, month)
// that still have at least one open slot. Days before today are
// excluded; the scan runs from max(today, month start) to month end,
// capped at the booking horizon.
func (r *Resolver) MonthDates(ctx context.Context, productID uuid.UUID, year int, month time.Month) ([]string, error) {
	ctx, span := tracer.Start(ctx, "availability.MonthDates")
	defer span.End()
	span.SetAttributes(
		attribute.String("product_id", productID.String()),
		attribute.Int("year", year),
		attribute.Int("month", int(month)),
	)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	// The clock is expected to run in the clinic's zone; only its
	// calendar day matters here.
	today := truncateToDay(r.now())
	from := monthStart
	if today.After(from) {
		from = today
	}
	if horizon := today.AddDate(0, 0, r.horizonDays); monthEnd.After(horizon) {
		monthEnd = horizon
	}
	if from.After(monthEnd) {
		return nil, nil
	}

	byDate, err := r.resolveRange(ctx, productID, from, monthEnd)
	if err != nil {
		return nil, err
	}

	var dates []string
	for d := from; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if len(byDate[key]) > 0 {
			dates = append(dates, key)
		}
	}
	return dates, nil
}

// resolveRange applies the per-day rule set to every date in
// [from, to] with three batched loads: overrides, template, and live
// appointments. The same rules back the day view, the month view and
// the booking-time recheck.
func (r *Resolver) resolveRange(ctx context.Context, productID uuid.UUID, from, to time.Time) (map[string][]string, error) {
	product, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("availability: load product: %w", err)
	}
	if !product.IsActive {
		return map[string][]string{}, nil
	}

	overrides, err := r.schedules.OverridesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("availability: load overrides: %w", err)
	}
	template, err := r.schedules.ActiveSlotsByDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability: load template: %w", err)
	}
	bookedByDate, err := r.appointments.LiveSlotsByDate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("availability: load booked slots: %w", err)
	}
	countsByDate, err := r.appointments.LiveCountsByDate(ctx, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("availability: load booking counts: %w", err)
	}

	byDate := make(map[string][]string)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)

		candidates := CandidateSlots(overrides[key], template[int(d.Weekday())])
		if len(candidates) == 0 {
			continue
		}
		// Whole-day capacity short-circuits before per-slot filtering.
		if countsByDate[key] >= product.QuotaPerDay {
			continue
		}
		if open := OpenSlots(candidates, bookedByDate[key]); len(open) > 0 {
			byDate[key] = open
		}
	}
	return byDate, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
