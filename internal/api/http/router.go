package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/citizen-portal/internal/api/http/handlers"
	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Registration *handlers.RegistrationHandler
	Dashboard    *handlers.DashboardHandler
	Session      *handlers.SessionHandler
	Gate         *auth.Gate
	Metrics      *observability.Metrics
	// Limiter guards credential submissions; nil disables throttling.
	Limiter fiber.Handler
}

// RegisterRoutes wires HTTP routes behind the session gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Use(cfg.Gate.Handle)

	throttle := cfg.Limiter
	if throttle == nil {
		throttle = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api")
	api.Post("/auth/register", throttle, cfg.Registration.Register)
	api.Get("/session", cfg.Gate.RequireSession, cfg.Session.Session)
	api.Get("/navigation", cfg.Gate.RequireSession, cfg.Session.Navigation)

	app.Get("/", cfg.Dashboard.Root)
	app.Get("/login", cfg.Auth.ShowLogin)
	app.Post("/login", throttle, cfg.Auth.Login)
	app.Get("/register", cfg.Auth.ShowRegister)
	app.Post("/register", throttle, cfg.Auth.Register)
	app.Get("/forget-password", cfg.Auth.ShowForgetPassword)
	app.Post("/logout", cfg.Auth.Logout)

	app.Get("/dashboard", cfg.Dashboard.Dashboard)
	app.Get("/profile", cfg.Dashboard.Profile)
	app.Get("/settings", cfg.Dashboard.Settings)

	admin := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/approvals", cfg.Dashboard.Approvals)
}
