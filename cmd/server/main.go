package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/stakeback/cashback-backend/internal/banner"
	"github.com/stakeback/cashback-backend/internal/catalog"
	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/database"
	"github.com/stakeback/cashback-backend/internal/handlers"
	"github.com/stakeback/cashback-backend/internal/jobs"
	"github.com/stakeback/cashback-backend/internal/logging"
	"github.com/stakeback/cashback-backend/internal/mail"
	"github.com/stakeback/cashback-backend/internal/middleware"
	"github.com/stakeback/cashback-backend/internal/routes"
	"github.com/stakeback/cashback-backend/internal/services"
	"github.com/stakeback/cashback-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout, optional rotating file)
	baseHandler := logging.Setup(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log sink (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(baseHandler, dbLogHandler)))

	ctx := context.Background()

	mailer, err := mail.New(cfg)
	if err != nil {
		slog.Error("mailer init failed", "error", err)
		os.Exit(1)
	}
	archiver, err := storage.New(ctx, cfg)
	if err != nil {
		slog.Error("export storage init failed", "error", err)
		os.Exit(1)
	}
	bannerPolicy := banner.NewPolicy(cfg.BannerHosts())

	// Services
	authService := services.NewAuthService(database.DB, cfg, mailer)
	profileService := services.NewProfileService(database.DB)
	casinoService := services.NewCasinoService(database.DB, bannerPolicy)
	referralService := services.NewReferralService(database.DB, cfg)
	payoutService := services.NewPayoutService(database.DB)
	reportService := services.NewReportService(database.DB, cfg, mailer, archiver)
	ticketService := services.NewTicketService(database.DB)

	// Seed the casino catalog on first boot
	if cfg.CasinoSeedPath != "" {
		entries, err := catalog.LoadFromFile(cfg.CasinoSeedPath)
		if err != nil {
			slog.Error("failed to load casino catalog", "path", cfg.CasinoSeedPath, "error", err)
			os.Exit(1)
		}
		seeded, err := casinoService.Seed(ctx, entries)
		if err != nil {
			slog.Error("casino seed failed", "error", err)
			os.Exit(1)
		}
		slog.Info("casino catalog loaded", "entries", len(entries), "seeded", seeded)
	}

	// Background jobs (log retention, token cleanup, monthly reports)
	scheduler, err := jobs.NewRunner(database.DB, authService, reportService).Start(cfg.MonthlyReportCron)
	if err != nil {
		slog.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(database.DB),
		Profile:  handlers.NewProfileHandler(profileService),
		Casino:   handlers.NewCasinoHandler(casinoService),
		Referral: handlers.NewReferralHandler(referralService, payoutService),
		Admin:    handlers.NewAdminHandler(reportService),
		Ticket:   handlers.NewTicketHandler(ticketService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		slog.Error("scheduler shutdown error", "error", err)
	}
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
