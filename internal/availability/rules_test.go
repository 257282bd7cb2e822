package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klinikware/booking-platform/internal/schedule"
)

func TestCandidateSlots_NoOverrideUsesTemplate(t *testing.T) {
	template := []string{"09:00", "10:00", "11:00"}

	got := CandidateSlots(nil, template)

	assert.Equal(t, template, got)
}

func TestCandidateSlots_ClosedOverrideWins(t *testing.T) {
	override := &schedule.DateOverride{IsClosed: true}

	got := CandidateSlots(override, []string{"09:00", "10:00"})

	assert.Empty(t, got)
}

func TestCandidateSlots_CustomSlotsReplaceTemplate(t *testing.T) {
	override := &schedule.DateOverride{
		CustomSlots: []string{"14:00", "15:00"},
	}

	got := CandidateSlots(override, []string{"09:00", "10:00"})

	assert.Equal(t, []string{"14:00", "15:00"}, got)
}

func TestCandidateSlots_CustomSlotsWinOnUnscheduledDay(t *testing.T) {
	// A custom-slot override opens a day even when the weekly template
	// has nothing for it, e.g. a special Sunday session.
	override := &schedule.DateOverride{
		CustomSlots: []string{"10:00", "11:00"},
	}

	got := CandidateSlots(override, nil)

	assert.Equal(t, []string{"10:00", "11:00"}, got)
}

func TestCandidateSlots_EmptyCustomSlotsCloseTheDay(t *testing.T) {
	// A non-nil but empty custom list still replaces the template.
	override := &schedule.DateOverride{
		CustomSlots: []string{},
	}

	got := CandidateSlots(override, []string{"09:00"})

	assert.Empty(t, got)
}

func TestCandidateSlots_NoteOnlyOverrideKeepsTemplate(t *testing.T) {
	override := &schedule.DateOverride{Reason: "dentist on leave until noon"}

	got := CandidateSlots(override, []string{"09:00", "10:00"})

	assert.Equal(t, []string{"09:00", "10:00"}, got)
}

func TestCandidateSlots_CopiesInputs(t *testing.T) {
	template := []string{"09:00", "10:00"}

	got := CandidateSlots(nil, template)
	got[0] = "mutated"

	assert.Equal(t, "09:00", template[0])
}

func TestOpenSlots_SubtractsBookedPreservingOrder(t *testing.T) {
	candidates := []string{"09:00", "10:00", "11:00", "12:00"}
	booked := map[string]struct{}{
		"10:00": {},
		"12:00": {},
	}

	got := OpenSlots(candidates, booked)

	assert.Equal(t, []string{"09:00", "11:00"}, got)
}

func TestOpenSlots_AllBooked(t *testing.T) {
	booked := map[string]struct{}{"09:00": {}, "10:00": {}}

	got := OpenSlots([]string{"09:00", "10:00"}, booked)

	assert.Empty(t, got)
}

func TestOpenSlots_NilBookedSet(t *testing.T) {
	got := OpenSlots([]string{"09:00"}, nil)

	assert.Equal(t, []string{"09:00"}, got)
}

func TestOpenSlots_NoCandidates(t *testing.T) {
	assert.Nil(t, OpenSlots(nil, map[string]struct{}{"09:00": {}}))
}
