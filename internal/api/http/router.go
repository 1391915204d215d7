package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/claims-console/internal/api/http/handlers"
	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/observability"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Auth               *handlers.AuthHandler
	Console            *handlers.ConsoleHandler
	AuthMiddleware     *auth.AuthMiddleware
	Metrics            *observability.Metrics
	LoginRatePerMinute int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	mw := cfg.AuthMiddleware
	session := app.Group("", mw.Handle)

	authGroup := session.Group("/auth")
	authGroup.Post("/login", loginLimiter(cfg.LoginRatePerMinute), cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", mw.RequireAuthenticated(), cfg.Auth.Refresh)

	api := session.Group("/api")
	api.Get("/me", mw.RequireRoles("/api/me", auth.All()), cfg.Console.Me)
	api.Get("/me/activity", mw.RequireAuthenticated(), cfg.Console.Activity)
	api.Get("/navigation", cfg.Console.Navigation)
	api.Get("/access", cfg.Console.Access)
	api.Get("/capabilities", cfg.Console.Capabilities)

	session.Get("/console/*", mw.RequireRoute("*"), cfg.Console.Page)
}

func loginLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		perMinute = 10
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewTooManyRequests("too many login attempts")
		},
	})
}
