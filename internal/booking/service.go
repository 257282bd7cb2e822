package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/klinikware/booking-platform/internal/availability"
	"github.com/klinikware/booking-platform/internal/catalog"
	"github.com/klinikware/booking-platform/internal/observability/metrics"
	"github.com/klinikware/booking-platform/internal/patients"
	"github.com/klinikware/booking-platform/internal/payments"
	"github.com/klinikware/booking-platform/internal/quota"
	"github.com/klinikware/booking-platform/internal/schedule"
	"github.com/klinikware/booking-platform/pkg/logging"
)

var tracer = otel.Tracer("klinikware/booking")

// PgxPool is the pool surface the service needs: transactions plus
// plain queries. pgxmock satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Querier
}

// cacheInvalidator drops cached availability after a write.
type cacheInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time)
}

// Service owns the booking write path: the atomic commit and the
// lifecycle transitions. Availability reads stay advisory; every
// precondition is re-checked inside the transaction that writes.
type Service struct {
	pool         PgxPool
	appointments *Repository
	paymentsRepo *payments.Repository
	ledger       *quota.Ledger
	patientsRepo *patients.Repository
	cache        cacheInvalidator
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
}

// NewService wires the booking service. cache and m may be nil.
func NewService(
	pool PgxPool,
	appointments *Repository,
	paymentsRepo *payments.Repository,
	ledger *quota.Ledger,
	patientsRepo *patients.Repository,
	cache cacheInvalidator,
	m *metrics.BookingMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		pool:         pool,
		appointments: appointments,
		paymentsRepo: paymentsRepo,
		ledger:       ledger,
		patientsRepo: patientsRepo,
		cache:        cache,
		metrics:      m,
		logger:       logger,
	}
}

// Book commits a booking atomically: appointment, payment record and
// quota increment in one transaction. The requested slot is
// re-validated inside the transaction; the partial unique index on
// live (date, time_slot) rows settles same-slot races, and the quota
// ledger upsert settles capacity races between different slots.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.Book")
	defer span.End()

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("booking: invalid patient id: %w", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("booking: invalid product id: %w", err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("booking: invalid date: %w", err)
	}
	span.SetAttributes(
		attribute.String("product_id", req.ProductID),
		attribute.String("date", req.Date),
		attribute.String("time_slot", req.TimeSlot),
	)

	mode := ConsultationMode(req.ConsultationMode)
	if mode == "" {
		mode = ModeClinic
	}

	appt, err := s.bookTx(ctx, patientID, productID, date, mode, req)
	if err != nil {
		s.observeBookingFailure(err)
		return nil, err
	}

	s.metrics.ObserveBooking("committed")
	s.logger.Info("booking committed",
		"appointment_id", appt.ID,
		"product_id", productID,
		"date", req.Date,
		"time_slot", req.TimeSlot,
		"payment_status", appt.PaymentStatus,
	)

	// Post-commit side effects, best-effort.
	if mode == ModeHomeVisit && req.HomeAddress != "" {
		if err := s.patientsRepo.UpdateHomeAddress(ctx, patientID, req.HomeAddress); err != nil {
			s.logger.Warn("failed to persist home-visit address", "error", err, "patient_id", patientID)
		}
	}
	if s.cache != nil {
		s.cache.InvalidateDate(ctx, date)
	}

	return appt, nil
}

func (s *Service) bookTx(ctx context.Context, patientID, productID uuid.UUID, date time.Time, mode ConsultationMode, req *BookRequest) (*Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	product, err := catalog.NewRepositoryWithQuerier(tx).GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	if _, err := patients.NewRepositoryWithQuerier(tx).GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	// Recheck the day's candidate set with the same rules the
	// resolver uses. The earlier availability read was advisory only.
	schedules := schedule.NewStoreWithQuerier(tx)
	override, err := schedules.GetOverride(ctx, date)
	if err != nil && !errors.Is(err, schedule.ErrOverrideNotFound) {
		return nil, err
	}
	template, err := schedules.ActiveSlotsForDay(ctx, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	candidates := availability.CandidateSlots(override, template)
	if !slices.Contains(candidates, req.TimeSlot) {
		return nil, ErrSlotUnavailable
	}

	// Fast-fail on capacity. Under read committed this count can miss
	// a concurrent uncommitted booking, so it is advisory; the ledger
	// upsert below is the serialized capacity check.
	liveCount, err := s.appointments.liveCountForDay(ctx, tx, productID, date)
	if err != nil {
		return nil, err
	}
	if liveCount >= product.QuotaPerDay {
		return nil, ErrQuotaExhausted
	}

	booked, err := s.appointments.liveSlotsForDay(ctx, tx, date)
	if err != nil {
		return nil, err
	}
	if _, taken := booked[req.TimeSlot]; taken {
		return nil, ErrSlotTaken
	}

	totalSen := product.PriceSen
	paidSen := req.PaymentAmountSen
	balanceSen := totalSen - paidSen
	if balanceSen < 0 {
		balanceSen = 0
	}
	paymentStatus := PaymentDeposit
	if totalSen == 0 || balanceSen == 0 {
		paymentStatus = PaymentFull
	}

	appt, err := s.appointments.insert(ctx, tx, insertParams{
		PatientID:        patientID,
		ProductID:        productID,
		Date:             date,
		TimeSlot:         req.TimeSlot,
		PaymentStatus:    paymentStatus,
		TotalSen:         totalSen,
		PaidSen:          paidSen,
		BalanceSen:       balanceSen,
		ConsultationMode: mode,
		HomeAddress:      req.HomeAddress,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, err
	}

	paymentType := payments.PaymentType(req.PaymentType)
	if _, err := s.paymentsRepo.Insert(ctx, tx, appt.ID, paidSen, paymentType, req.GatewayRef); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Increment(ctx, tx, productID, date, product.QuotaPerDay); err != nil {
		if errors.Is(err, quota.ErrQuotaExhausted) {
			return nil, ErrQuotaExhausted
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: commit: %w", err)
	}
	return appt, nil
}

// Cancel transitions an appointment to CANCELLED on behalf of its
// owning patient and releases its quota slot.
func (s *Service) Cancel(ctx context.Context, appointmentID, actorPatientID uuid.UUID, reason string) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID.String()))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := s.appointments.getByID(ctx, tx, appointmentID, true)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actorPatientID {
		return nil, ErrNotOwner
	}
	if appt.Status == StatusCancelled || appt.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, appt.Status)
	}

	cancelled, err := s.appointments.markCancelled(ctx, tx, appointmentID, reason)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Decrement(ctx, tx, appt.ProductID, appt.AppointmentDate); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: commit cancel: %w", err)
	}

	s.metrics.ObserveCancellation()
	s.logger.Info("appointment cancelled",
		"appointment_id", appointmentID,
		"patient_id", actorPatientID,
		"date", appt.AppointmentDate.Format("2006-01-02"),
	)
	if s.cache != nil {
		s.cache.InvalidateDate(ctx, appt.AppointmentDate)
	}
	return cancelled, nil
}

// Confirm moves a PENDING appointment to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, appointmentID, StatusConfirmed, []Status{StatusPending})
}

// Complete marks an appointment COMPLETED after the consultation.
func (s *Service) Complete(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, appointmentID, StatusCompleted, []Status{StatusPending, StatusConfirmed})
}

func (s *Service) transition(ctx context.Context, appointmentID uuid.UUID, to Status, from []Status) (*Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := s.appointments.getByID(ctx, tx, appointmentID, true)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(from, appt.Status) {
		return nil, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidTransition, appt.Status, to)
	}

	updated, err := s.appointments.markStatus(ctx, tx, appointmentID, to)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: commit transition: %w", err)
	}

	s.logger.Info("appointment transitioned",
		"appointment_id", appointmentID, "status", to)
	return updated, nil
}

func (s *Service) observeBookingFailure(err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		s.metrics.ObserveSlotConflict()
		s.metrics.ObserveBooking("conflict")
	case errors.Is(err, ErrQuotaExhausted):
		s.metrics.ObserveBooking("quota_exhausted")
	case errors.Is(err, ErrSlotUnavailable):
		s.metrics.ObserveBooking("unavailable")
	default:
		s.metrics.ObserveBooking("error")
	}
}
