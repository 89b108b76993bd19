package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/mlavin/allaccess/app/controllers"
	"github.com/mlavin/allaccess/internal/pkg/env"
	"github.com/mlavin/allaccess/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/auth/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/login", loggedInMiddleware, controllers.HandleLoginPage)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/account/connections", middleware.RequireAuth, controllers.HandleAccountConnections)
	group.Get("/account/profile/:provider", middleware.RequireAuth, controllers.HandleAccountProfile)
}
