package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/klinikware/booking-platform/pkg/logging"
)

var validate = validator.New()

// cacheInvalidator drops cached availability after product edits.
type cacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	repo   *Repository
	cache  cacheInvalidator
	logger *logging.Logger
}

// NewHandler creates a new catalog handler. cache may be nil.
func NewHandler(repo *Repository, cache cacheInvalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, cache: cache, logger: logger}
}

// ListActive handles GET /products requests.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /products/{productID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load product", "error", err, "product_id", id)
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListAll handles GET /admin/products requests.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /admin/products requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create product", "error", err)
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}

	h.logger.Info("product created", "id", product.ID, "name", product.Name)
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /admin/products/{productID} requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update product", "error", err, "product_id", id)
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}

	// Quota and active-flag changes invalidate every cached day list,
	// otherwise stale slots keep serving until the TTL expires.
	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}
	h.logger.Info("product updated", "id", product.ID, "name", product.Name)
	writeJSON(w, http.StatusOK, product)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
