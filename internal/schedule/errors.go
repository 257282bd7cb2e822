package schedule

import "errors"

var (
	// ErrOverrideNotFound is returned when no override exists for the date.
	ErrOverrideNotFound = errors.New("date override not found")

	// ErrInvalidSlotLabel is returned for labels that do not parse as "HH:MM".
	ErrInvalidSlotLabel = errors.New("invalid time slot label")

	// ErrDuplicateSlotLabel is returned when a custom slot list repeats a label.
	ErrDuplicateSlotLabel = errors.New("duplicate time slot label")

	// ErrInvalidDayOfWeek is returned for day values outside 0..6.
	ErrInvalidDayOfWeek = errors.New("day of week must be between 0 and 6")
)
