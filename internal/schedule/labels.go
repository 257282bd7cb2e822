package schedule

import (
	"fmt"
	"regexp"
)

// Slot labels are opaque "HH:MM" strings. Zero-padded 24-hour labels
// sort chronologically under plain string comparison, which the
// template ordering relies on.
var slotLabelPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidSlotLabel reports whether label is a well-formed "HH:MM" time.
func ValidSlotLabel(label string) bool {
	return slotLabelPattern.MatchString(label)
}

// ValidateSlotLabels checks a custom-slot list at the admin write
// boundary: every label well-formed, no duplicates. Order is the
// caller's to choose and is preserved.
func ValidateSlotLabels(labels []string) error {
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if !ValidSlotLabel(label) {
			return fmt.Errorf("%w: %q", ErrInvalidSlotLabel, label)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSlotLabel, label)
		}
		seen[label] = struct{}{}
	}
	return nil
}
