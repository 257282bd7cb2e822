package availability

import (
	"github.com/klinikware/booking-platform/internal/schedule"
)

// CandidateSlots applies the override/template rules for a single
// date and returns the slot labels that could be booked before
// capacity and occupancy are considered.
//
// Rule set, in order:
//   - a closed override means no slots at all;
//   - an override carrying custom slots replaces the weekly template
//     outright, in the override's order, regardless of the template's
//     active flags;
//   - otherwise the active weekly template for the weekday applies,
//     labels ascending;
//   - a note-only override (not closed, no custom slots) leaves the
//     template in effect.
//
// Every read path (day view, month view, and the in-transaction
// recheck at booking time) goes through this one function so the
// views cannot drift apart.
func CandidateSlots(override *schedule.DateOverride, template []string) []string {
	if override != nil {
		if override.IsClosed {
			return nil
		}
		if override.CustomSlots != nil {
			return append([]string(nil), override.CustomSlots...)
		}
	}
	return append([]string(nil), template...)
}

// OpenSlots subtracts the clinic-wide booked labels from the
// candidate set, preserving candidate order. Slot occupancy is shared
// across all products: one booking takes the slot for the whole
// clinic.
func OpenSlots(candidates []string, booked map[string]struct{}) []string {
	if len(candidates) == 0 {
		return nil
	}
	open := make([]string, 0, len(candidates))
	for _, label := range candidates {
		if _, taken := booked[label]; !taken {
			open = append(open, label)
		}
	}
	return open
}
