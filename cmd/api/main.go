package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spiricx/hrlrms-sub002/internal/config"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
	"github.com/spiricx/hrlrms-sub002/internal/handler"
	"github.com/spiricx/hrlrms-sub002/internal/middleware"
	"github.com/spiricx/hrlrms-sub002/internal/repository/postgres"
	"github.com/spiricx/hrlrms-sub002/internal/service"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	accrualPolicy, err := service.ParseAccrualPolicy(cfg.AccrualPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid accrual policy")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	loanRepo := postgres.NewLoanRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	reportRepo := postgres.NewIntegrityReportRepository(pool)

	// Initialize services
	clock := domain.SystemClock{}
	scheduleService := service.NewScheduleService(accrualPolicy)
	loanService := service.NewLoanService(loanRepo, paymentRepo, scheduleService, clock)
	arrearsService := service.NewArrearsService(loanRepo, paymentRepo, clock)
	reconciliationService := service.NewReconciliationService(loanRepo, paymentRepo, reportRepo, clock, log.Logger)

	// Scheduled integrity check
	worker := service.NewReconcileWorker(reconciliationService, log.Logger, service.ReconcileWorkerConfig{
		CronSpec:   cfg.ReconcileCron,
		RunTimeout: cfg.ReconcileTimeout,
	})
	if cfg.ReconcileEnabled {
		if err := worker.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start reconciliation worker")
		}
		defer worker.Stop()
	}

	// Initialize handlers
	loanHandler := handler.NewLoanHandler(loanService, arrearsService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService, reportRepo)

	// Rate limiter for the operator-triggered run endpoint
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, loanHandler, reconciliationHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("accrual_policy", string(accrualPolicy)).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
