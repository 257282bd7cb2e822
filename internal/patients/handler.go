package patients

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/klinikware/booking-platform/pkg/logging"
)

var validate = validator.New()

// CreatePatientRequest is the payload for registering a profile ahead
// of a first booking.
type CreatePatientRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required,e164"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Handler exposes the minimal profile capture the booking flow needs.
// There are no patient accounts or logins here.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /patients requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	patient, err := h.repo.Create(r.Context(), req.FullName, req.Phone, req.Email)
	if err != nil {
		h.logger.Error("failed to create patient", "error", err)
		http.Error(w, "failed to create patient", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient registered", "patient_id", patient.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(patient)
}
