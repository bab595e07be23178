package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/RorolRoro/tkg-site/internal/api/http/handlers"
	"github.com/RorolRoro/tkg-site/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	OrgChart       *handlers.OrgChartHandler
	Content        *handlers.ContentHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/content", cfg.Content.List)
	app.Get("/content/:slug", cfg.Content.Get)
	app.Get("/orgchart", cfg.OrgChart.Get)

	authGroup := app.Group("/auth")
	authGroup.Get("/discord/login", cfg.Auth.Login)
	authGroup.Get("/discord/callback", cfg.Auth.Callback)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Get("/categories", cfg.Tickets.ListCategories)
	api.Post("/tickets", RateLimitMiddleware(rate.Every(30*time.Second), 3), cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Post("/tickets/:id/messages", cfg.Tickets.AddMessage)
	api.Post("/orgchart/refresh", auth.RequireAdmin(), cfg.OrgChart.Refresh)

	staff := api.Group("/staff", auth.RequireStaff())
	staff.Get("/categories", cfg.StaffTickets.ListCategories)
	staff.Get("/tickets", cfg.StaffTickets.ListStaffTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetStaffTicket)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Post("/tickets/:id/messages", cfg.StaffTickets.AddStaffMessage)
	staff.Patch("/tickets/:id/messages/:messageId", cfg.StaffTickets.EditMessage)
}
