package booking

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment exists for the id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when another live appointment already
	// occupies the (date, time slot) pairing.
	ErrSlotTaken = errors.New("time slot already booked")

	// ErrSlotUnavailable is returned when the requested slot is not in
	// the day's candidate set (closed day, inactive template entry, or
	// an override that dropped the label).
	ErrSlotUnavailable = errors.New("time slot not available on this date")

	// ErrQuotaExhausted is returned when the product's daily capacity
	// is already fully booked.
	ErrQuotaExhausted = errors.New("daily quota exhausted")

	// ErrProductInactive is returned when booking an inactive product.
	ErrProductInactive = errors.New("product is not bookable")

	// ErrNotOwner is returned when the acting patient does not own the
	// appointment.
	ErrNotOwner = errors.New("appointment belongs to another patient")

	// ErrInvalidTransition is returned for lifecycle operations on a
	// terminal or wrong-state appointment.
	ErrInvalidTransition = errors.New("invalid appointment state transition")
)
