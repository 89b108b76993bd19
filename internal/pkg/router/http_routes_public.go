package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mlavin/allaccess/app/controllers"
	"github.com/mlavin/allaccess/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Enabled providers for login-page buttons
	app.Get("/providers", loggedInMiddleware, controllers.HandleProviders)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthLogin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}
