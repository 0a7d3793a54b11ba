package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/handlers"
	"github.com/stakeback/cashback-backend/internal/metrics"
	"github.com/stakeback/cashback-backend/internal/middleware"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Profile  *handlers.ProfileHandler
	Casino   *handlers.CasinoHandler
	Referral *handlers.ReferralHandler
	Admin    *handlers.AdminHandler
	Ticket   *handlers.TicketHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Casino catalog (public)
	api.Get("/casinos", h.Casino.List)
	api.Get("/casinos/:id", h.Casino.Get)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/verify-email", h.Auth.VerifyEmail)
	auth.Post("/password-reset", h.Auth.RequestPasswordReset)
	auth.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)

	// Protected routes: middleware is applied per route so public routes
	// under the same prefixes stay open.
	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.LoadSession(db)}
	withAuth := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, protected...), handler)
	}

	api.Post("/auth/logout", withAuth(h.Auth.Logout)...)
	api.Get("/auth/verification", withAuth(h.Auth.VerificationStatus)...)
	api.Post("/auth/verification/resend", withAuth(h.Auth.ResendVerification)...)

	api.Get("/me", withAuth(h.Profile.Get)...)
	api.Get("/me/summary", withAuth(h.Profile.Summary)...)
	api.Put("/me/wallets", withAuth(h.Profile.SaveWallets)...)
	api.Patch("/me/wallets/:asset", withAuth(h.Profile.UpdateWallet)...)
	api.Put("/me/email-preferences", withAuth(h.Profile.UpdateEmailPreferences)...)

	api.Post("/referrals", withAuth(h.Referral.Submit)...)
	api.Get("/referrals", withAuth(h.Referral.ListMine)...)
	api.Patch("/referrals/:id", withAuth(h.Referral.UpdateDetails)...)

	api.Post("/support-tickets", withAuth(h.Ticket.Create)...)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", withAuth(middleware.AdminRequired(cfg))...)
	admin.Get("/casinos", h.Casino.List)
	admin.Post("/casinos", h.Casino.Create)
	admin.Delete("/casinos/:id", h.Casino.Delete)

	admin.Get("/referrals", h.Referral.ListAll)
	admin.Put("/referrals/:id/status", h.Referral.SetStatus)
	admin.Post("/referrals/:id/payouts", h.Referral.AppendPayout)

	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/users", h.Admin.Users)
	admin.Get("/exports/emails", h.Admin.ExportEmails)

	admin.Get("/support-tickets", h.Ticket.List)
	admin.Put("/support-tickets/:id/resolve", h.Ticket.Resolve)
}
