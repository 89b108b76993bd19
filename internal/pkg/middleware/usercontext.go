package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mlavin/allaccess/app/controllers"
	"github.com/mlavin/allaccess/internal/pkg/session"
	"github.com/mlavin/allaccess/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{IsLoggedIn: false})
		c.Locals(controllers.FROM_PROTECTED, false)
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return anonymous()
	}

	userID := sess.Get(controllers.USER_ID)
	if userID == nil {
		return anonymous()
	}

	id, ok := userID.(uint)
	if !ok {
		return anonymous()
	}

	username := session.GetSessionValue(c, controllers.USER_NAME)

	c.Locals("USER_CONTEXT", usercontext.UserContext{
		UserID:     id,
		Username:   username,
		IsLoggedIn: true,
	})
	c.Locals(controllers.FROM_PROTECTED, true)
	c.Locals(controllers.USER_NAME, username)
	c.Locals(controllers.USER_ID, id)

	return c.Next()
}
