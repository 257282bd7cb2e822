package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/klinikware/booking-platform/internal/api/router"
	"github.com/klinikware/booking-platform/internal/availability"
	"github.com/klinikware/booking-platform/internal/booking"
	"github.com/klinikware/booking-platform/internal/catalog"
	appconfig "github.com/klinikware/booking-platform/internal/config"
	"github.com/klinikware/booking-platform/internal/observability/metrics"
	"github.com/klinikware/booking-platform/internal/patients"
	"github.com/klinikware/booking-platform/internal/payments"
	"github.com/klinikware/booking-platform/internal/quota"
	"github.com/klinikware/booking-platform/internal/reports"
	"github.com/klinikware/booking-platform/internal/schedule"
	"github.com/klinikware/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, availability cache disabled", "error", err)
			redisClient = nil
		}
	}

	clinicLocation, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "tz", cfg.ClinicTimezone)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Repositories and stores.
	catalogRepo := catalog.NewRepository(pool)
	scheduleStore := schedule.NewStore(pool)
	patientsRepo := patients.NewRepository(pool)
	paymentsRepo := payments.NewRepository(pool)
	quotaLedger := quota.NewLedger(pool)
	bookingRepo := booking.NewRepository(pool)
	reportsRepo := reports.NewRepository(pool)

	// Availability resolution with the clinic-local clock.
	resolver := availability.NewResolver(catalogRepo, scheduleStore, bookingRepo).
		WithClock(func() time.Time { return time.Now().In(clinicLocation) }).
		WithHorizon(cfg.MonthScanHorizonDays)
	availCache := availability.NewCache(redisClient, cfg.AvailabilityCacheTTL, logger.Named("availability-cache"))
	availService := availability.NewService(resolver, availCache, bookingMetrics, logger.Named("availability"))

	bookingService := booking.NewService(
		pool,
		bookingRepo,
		paymentsRepo,
		quotaLedger,
		patientsRepo,
		availCache,
		bookingMetrics,
		logger.Named("booking"),
	)

	// Handlers.
	routerCfg := &router.Config{
		Logger:              logger,
		CatalogHandler:      catalog.NewHandler(catalogRepo, availCache, logger.Named("catalog")),
		AvailabilityHandler: availability.NewHandler(availService, logger.Named("availability")),
		BookingHandler:      booking.NewHandler(bookingService, logger.Named("booking")),
		PatientsHandler:     patients.NewHandler(patientsRepo, logger.Named("patients")),
		ScheduleHandler:     schedule.NewHandler(scheduleStore, availCache, logger.Named("schedule")),
		ReportsHandler:      reports.NewHandler(reportsRepo, cfg.CurrencyCode, logger.Named("reports")),
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
