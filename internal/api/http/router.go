package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamado-service/internal/api/http/handlers"
	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Chat           *handlers.ChatHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/registrar", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Put("/me", cfg.Auth.UpdateProfile)
	authProtected.Post("/senha", cfg.Auth.ChangePassword)
	authProtected.Post("/refresh", cfg.Auth.Refresh)
	authProtected.Post("/heartbeat", cfg.Auth.Heartbeat)

	chamados := api.Group("/chamados", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	chamados.Post("", cfg.Tickets.CreateTicket)
	chamados.Get("", cfg.Tickets.ListMine)
	chamados.Get("/atribuidos", auth.RequireStaff(), cfg.Tickets.ListAssigned)
	chamados.Get("/todos", auth.RequireStaff(), cfg.Tickets.ListAll)
	chamados.Get("/:id", cfg.Tickets.GetTicket)
	chamados.Post("/:id/mensagens", cfg.Tickets.AddMessage)
	chamados.Get("/:id/mensagens", cfg.Tickets.ListMessages)
	chamados.Patch("/:id/status", cfg.Tickets.PatchStatus)
	chamados.Post("/:id/escalar", cfg.Tickets.Escalate)
	chamados.Post("/:id/resolver", cfg.Tickets.Resolve)
	chamados.Post("/:id/typing", cfg.Tickets.SetTyping)
	chamados.Get("/:id/typing", cfg.Tickets.GetTyping)

	chat := api.Group("/chat", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	chat.Post("/mensagens", cfg.Chat.SendMessage)
	chat.Get("/mensagens", cfg.Chat.ListMessages)
	chat.Post("/analisar", cfg.Chat.Analyze)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrador))
	users.Get("", cfg.Users.List)
	users.Post("", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
