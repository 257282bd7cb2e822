package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/klinikware/booking-platform/pkg/logging"
)

var validate = validator.New()

// cacheInvalidator drops cached availability after schedule edits.
type cacheInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time)
	InvalidateAll(ctx context.Context)
}

// Handler exposes the admin schedule-editing endpoints.
type Handler struct {
	store  *Store
	cache  cacheInvalidator
	logger *logging.Logger
}

// NewHandler creates a new schedule admin handler. cache may be nil.
func NewHandler(store *Store, cache cacheInvalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, cache: cache, logger: logger}
}

// ListWeeklySlots handles GET /admin/schedule/weekly requests.
func (h *Handler) ListWeeklySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.store.ListWeeklySlots(r.Context())
	if err != nil {
		h.logger.Error("failed to list weekly slots", "error", err)
		http.Error(w, "failed to list weekly slots", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []*WeeklySlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// ToggleWeeklySlot handles POST /admin/schedule/weekly/toggle requests.
func (h *Handler) ToggleWeeklySlot(w http.ResponseWriter, r *http.Request) {
	var req ToggleWeeklySlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slot, err := h.store.ToggleWeeklySlot(r.Context(), req.DayOfWeek, req.TimeSlot)
	if err != nil {
		if errors.Is(err, ErrInvalidSlotLabel) || errors.Is(err, ErrInvalidDayOfWeek) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to toggle weekly slot", "error", err,
			"day_of_week", req.DayOfWeek, "time_slot", req.TimeSlot)
		http.Error(w, "failed to toggle weekly slot", http.StatusInternalServerError)
		return
	}

	// A template edit touches every future date on that weekday.
	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}

	h.logger.Info("weekly slot toggled",
		"day_of_week", slot.DayOfWeek, "time_slot", slot.TimeSlot, "is_active", slot.IsActive)
	writeJSON(w, http.StatusOK, slot)
}

// UpsertOverride handles PUT /admin/schedule/overrides requests.
func (h *Handler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	var req UpsertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	override, err := h.store.UpsertOverride(r.Context(), date, req.IsClosed, req.Reason, req.CustomSlots)
	if err != nil {
		if errors.Is(err, ErrInvalidSlotLabel) || errors.Is(err, ErrDuplicateSlotLabel) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to upsert override", "error", err, "date", req.Date)
		http.Error(w, "failed to upsert override", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateDate(r.Context(), date)
	}

	h.logger.Info("date override saved",
		"date", req.Date, "is_closed", override.IsClosed, "custom_slots", len(override.CustomSlots))
	writeJSON(w, http.StatusOK, override)
}

// DeleteOverride handles DELETE /admin/schedule/overrides/{date} requests.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", pathDate(r))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteOverride(r.Context(), date); err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			http.Error(w, "override not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete override", "error", err, "date", date)
		http.Error(w, "failed to delete override", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateDate(r.Context(), date)
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathDate(r *http.Request) string {
	return chi.URLParam(r, "date")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
