package reports

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/klinikware/booking-platform/pkg/logging"
)

// Handler serves the admin reporting endpoints.
type Handler struct {
	repo     *Repository
	currency string
	logger   *logging.Logger
}

// NewHandler creates a new reports handler. currency is the ISO 4217
// code stamped on monetary summaries.
func NewHandler(repo *Repository, currency string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, currency: currency, logger: logger}
}

// Summary handles GET /admin/reports/summary?from=&to= requests.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	summary, err := h.repo.GetSummary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build summary", "error", err)
		http.Error(w, "failed to build summary", http.StatusInternalServerError)
		return
	}
	summary.Currency = h.currency
	writeJSON(w, http.StatusOK, summary)
}

// Utilization handles GET /admin/reports/utilization?from=&to= requests.
func (h *Handler) Utilization(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	utilization, err := h.repo.GetUtilization(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build utilization", "error", err)
		http.Error(w, "failed to build utilization", http.StatusInternalServerError)
		return
	}
	if utilization == nil {
		utilization = []*ProductUtilization{}
	}
	writeJSON(w, http.StatusOK, utilization)
}

func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		http.Error(w, "to must not be before from", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
