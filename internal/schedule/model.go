package schedule

import (
	"time"

	"github.com/google/uuid"
)

// WeeklySlot is a recurring (day-of-week, time) template entry. It is
// never tied to a specific date.
type WeeklySlot struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	TimeSlot  string    `json:"time_slot"`   // "HH:MM", 24-hour
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateOverride is a per-calendar-date exception to the weekly
// template: either a closure or a custom slot list. An override with
// neither is a note-only row and leaves the template in effect.
type DateOverride struct {
	ID           uuid.UUID `json:"id"`
	OverrideDate time.Time `json:"override_date"`
	IsClosed     bool      `json:"is_closed"`
	Reason       string    `json:"reason"`
	// CustomSlots, when non-nil, replaces the weekly template for this
	// date in the given order, for every product.
	CustomSlots []string  `json:"custom_slots,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToggleWeeklySlotRequest flips a single template entry.
type ToggleWeeklySlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	TimeSlot  string `json:"time_slot" validate:"required"`
}

// UpsertOverrideRequest creates or replaces a date override.
type UpsertOverrideRequest struct {
	Date        string   `json:"date" validate:"required"`
	IsClosed    bool     `json:"is_closed"`
	Reason      string   `json:"reason"`
	CustomSlots []string `json:"custom_slots,omitempty"`
}
