package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/klinikware/booking-platform/internal/catalog"
	"github.com/klinikware/booking-platform/pkg/logging"
)

// Handler exposes the patient-facing availability queries.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new availability handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// DayResponse is the day availability payload.
type DayResponse struct {
	ProductID string   `json:"product_id"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
}

// Day handles GET /availability/day?product_id=...&date=YYYY-MM-DD.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.URL.Query().Get("product_id"))
	if err != nil {
		http.Error(w, "invalid product_id", http.StatusBadRequest)
		return
	}
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.service.DaySlots(r.Context(), productID, date)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		// Degrade closed: an error never turns into a partial slot list.
		h.logger.Error("failed to resolve day availability", "error", err,
			"product_id", productID, "date", dateStr)
		http.Error(w, "failed to resolve availability", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, DayResponse{
		ProductID: productID.String(),
		Date:      dateStr,
		Slots:     slots,
	})
}

// MonthResponse is the month availability payload.
type MonthResponse struct {
	ProductID string   `json:"product_id"`
	Year      int      `json:"year"`
	Month     int      `json:"month"` // zero-based, as received
	Dates     []string `json:"dates"`
}

// Month handles GET /availability/month?product_id=...&year=&month=.
// The month query parameter is zero-based (0=January), matching the
// patient client's convention.
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.URL.Query().Get("product_id"))
	if err != nil {
		http.Error(w, "invalid product_id", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	monthIdx, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthIdx < 0 || monthIdx > 11 {
		http.Error(w, "invalid month, expected 0-11", http.StatusBadRequest)
		return
	}

	dates, err := h.service.MonthDates(r.Context(), productID, year, time.Month(monthIdx+1))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve month availability", "error", err,
			"product_id", productID, "year", year, "month", monthIdx)
		http.Error(w, "failed to resolve availability", http.StatusInternalServerError)
		return
	}
	if dates == nil {
		dates = []string{}
	}

	writeJSON(w, http.StatusOK, MonthResponse{
		ProductID: productID.String(),
		Year:      year,
		Month:     monthIdx,
		Dates:     dates,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
