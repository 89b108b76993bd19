package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mlavin/allaccess/app/controllers"
	"github.com/mlavin/allaccess/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Session-authenticated JSON endpoints
	v1 := api.Group("/v1")
	v1.Get("/providers", controllers.HandleProviders)
	v1.Get("/stats", controllers.HandleProviderStats)
	v1.Get("/connections", middleware.RequireAPISessionAuth, controllers.HandleAccountConnections)
	v1.Get("/profile/:provider", middleware.RequireAPISessionAuth, controllers.HandleAccountProfile)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
