package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/klinikware/booking-platform/internal/availability"
	"github.com/klinikware/booking-platform/internal/booking"
	"github.com/klinikware/booking-platform/internal/catalog"
	httpmiddleware "github.com/klinikware/booking-platform/internal/http/middleware"
	"github.com/klinikware/booking-platform/internal/patients"
	"github.com/klinikware/booking-platform/internal/reports"
	"github.com/klinikware/booking-platform/internal/schedule"
	"github.com/klinikware/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	CatalogHandler      *catalog.Handler
	AvailabilityHandler *availability.Handler
	BookingHandler      *booking.Handler
	PatientsHandler     *patients.Handler
	ScheduleHandler     *schedule.Handler
	ReportsHandler      *reports.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public patient-facing endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/products", cfg.CatalogHandler.ListActive)
			public.Get("/products/{productID}", cfg.CatalogHandler.Get)
		}
		if cfg.AvailabilityHandler != nil {
			public.Get("/availability/day", cfg.AvailabilityHandler.Day)
			public.Get("/availability/month", cfg.AvailabilityHandler.Month)
		}
		if cfg.PatientsHandler != nil {
			public.Post("/patients", cfg.PatientsHandler.Create)
		}
		if cfg.BookingHandler != nil {
			public.Post("/bookings", cfg.BookingHandler.Create)
			public.Get("/bookings/{appointmentID}", cfg.BookingHandler.Get)
			public.Post("/bookings/{appointmentID}/cancel", cfg.BookingHandler.Cancel)
		}
	})

	// Admin endpoints behind the JWT gate.
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			if cfg.CatalogHandler != nil {
				admin.Get("/products", cfg.CatalogHandler.ListAll)
				admin.Post("/products", cfg.CatalogHandler.Create)
				admin.Put("/products/{productID}", cfg.CatalogHandler.Update)
			}
			if cfg.ScheduleHandler != nil {
				admin.Get("/schedule/weekly", cfg.ScheduleHandler.ListWeeklySlots)
				admin.Post("/schedule/weekly/toggle", cfg.ScheduleHandler.ToggleWeeklySlot)
				admin.Put("/schedule/overrides", cfg.ScheduleHandler.UpsertOverride)
				admin.Delete("/schedule/overrides/{date}", cfg.ScheduleHandler.DeleteOverride)
			}
			if cfg.BookingHandler != nil {
				admin.Get("/appointments", cfg.BookingHandler.ListByDate)
				admin.Post("/appointments/{appointmentID}/confirm", cfg.BookingHandler.Confirm)
				admin.Post("/appointments/{appointmentID}/complete", cfg.BookingHandler.Complete)
				admin.Put("/appointments/{appointmentID}/meeting", cfg.BookingHandler.AttachMeeting)
			}
			if cfg.ReportsHandler != nil {
				admin.Get("/reports/summary", cfg.ReportsHandler.Summary)
				admin.Get("/reports/utilization", cfg.ReportsHandler.Utilization)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
