package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Live reports whether the appointment still occupies its slot.
func (s Status) Live() bool {
	return s != StatusCancelled
}

// PaymentStatus tracks how much of the price has been settled.
type PaymentStatus string

const (
	PaymentDeposit PaymentStatus = "DEPOSIT_PAID"
	PaymentFull    PaymentStatus = "FULL_PAID"
)

// ConsultationMode is where the consultation takes place.
type ConsultationMode string

const (
	ModeClinic    ConsultationMode = "CLINIC"
	ModeVirtual   ConsultationMode = "VIRTUAL"
	ModeHomeVisit ConsultationMode = "HOME_VISIT"
)

// Appointment is a booked slot: one patient, one product, one
// (date, time) pairing clinic-wide.
type Appointment struct {
	ID               uuid.UUID        `json:"id"`
	PatientID        uuid.UUID        `json:"patient_id"`
	ProductID        uuid.UUID        `json:"product_id"`
	AppointmentDate  time.Time        `json:"appointment_date"`
	TimeSlot         string           `json:"time_slot"`
	Status           Status           `json:"status"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	TotalSen         int64            `json:"total_sen"`
	PaidSen          int64            `json:"paid_sen"`
	BalanceSen       int64            `json:"balance_sen"`
	ConsultationMode ConsultationMode `json:"consultation_mode"`
	HomeAddress      string           `json:"home_address,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	MeetLink         string           `json:"meet_link,omitempty"`
	CalendarEventID  string           `json:"calendar_event_id,omitempty"`
	CancelReason     string           `json:"cancel_reason,omitempty"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BookRequest is the payload for committing a booking. The payment
// amount and gateway reference describe a charge the payment
// collaborator has already captured.
type BookRequest struct {
	PatientID        string `json:"patient_id" validate:"required,uuid4"`
	ProductID        string `json:"product_id" validate:"required,uuid4"`
	Date             string `json:"date" validate:"required"`
	TimeSlot         string `json:"time_slot" validate:"required"`
	PaymentAmountSen int64  `json:"payment_amount_sen" validate:"gte=0"`
	PaymentType      string `json:"payment_type" validate:"required,oneof=DEPOSIT FULL"`
	GatewayRef       string `json:"gateway_ref"`
	ConsultationMode string `json:"consultation_mode" validate:"omitempty,oneof=CLINIC VIRTUAL HOME_VISIT"`
	HomeAddress      string `json:"home_address" validate:"required_if=ConsultationMode HOME_VISIT"`
	Notes            string `json:"notes"`
}

// CancelRequest is the payload for cancelling a booking.
type CancelRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid4"`
	Reason    string `json:"reason"`
}

// AttachMeetingRequest stores the calendar collaborator's output.
type AttachMeetingRequest struct {
	MeetLink        string `json:"meet_link"`
	CalendarEventID string `json:"calendar_event_id"`
}
