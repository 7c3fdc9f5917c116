package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/api/http/handlers"
	"github.com/dopaj/field-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	Assist         *handlers.AssistHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The browser's view router becomes
// role-guarded route groups: the dashboard, ticket creation and the
// directory are admin screens; the ticket list and execution screens are
// shared, with per-ticket visibility enforced in the service.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/auth/logout", cfg.Auth.Logout)

	admin := authed.Group("", auth.RequireAdmin())
	admin.Get("/dashboard/stats", cfg.Dashboard.Stats)
	admin.Get("/users", cfg.Users.List)
	admin.Get("/users/engineers", cfg.Users.Engineers)
	admin.Post("/users", cfg.Users.Create)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Delete)
	admin.Post("/tickets", cfg.Tickets.Create)
	admin.Post("/tickets/:id/assign", cfg.Tickets.Assign)

	authed.Get("/tickets", cfg.Tickets.List)
	authed.Get("/tickets/:id", cfg.Tickets.Get)
	authed.Patch("/tickets/:id/progress", cfg.Tickets.UpdateProgress)
	authed.Post("/tickets/:id/evidence", cfg.Tickets.AttachEvidence)
	authed.Post("/tickets/:id/report-evidence", cfg.Tickets.AttachReportEvidence)
	authed.Post("/tickets/:id/close", cfg.Tickets.Close)
	authed.Get("/tickets/:id/evidence/:index/download", cfg.Tickets.DownloadEvidence)
	authed.Get("/tickets/:id/report-evidence/download", cfg.Tickets.DownloadReportEvidence)
	authed.Get("/tickets/:id/service-sheet", cfg.Tickets.ServiceSheet)

	authed.Post("/assist/extract", cfg.Assist.Extract)
	authed.Post("/assist/suggestions", cfg.Assist.Suggestions)
	authed.Post("/assist/summary", cfg.Assist.Summary)
}
