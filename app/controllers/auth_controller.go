package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/mlavin/allaccess/app/models"
	"github.com/mlavin/allaccess/internal/pkg/session"
)

// HandleLoginPage serves the login page data: any flash message from a
// failed attempt plus the providers available for social sign-in.
func HandleLoginPage(c *fiber.Ctx) error {
	providers, err := providerRepo.ListEnabled()
	if err != nil {
		log.Printf("login page: listing providers: %v", err)
		providers = nil
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name
	}

	return c.JSON(fiber.Map{
		"flash":     flash.Get(c),
		"providers": names,
	})
}

// HandleAuthLogin authenticates with name or email and password.
func HandleAuthLogin(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	identity := c.FormValue("email")
	if identity == "" {
		identity = c.FormValue("username")
	}

	user, err := userRepo.GetByEmail(identity)
	if err != nil {
		user, err = userRepo.GetByName(identity)
	}
	if err != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.IsActive() {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := loginSession(sess, user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("login: updating last login for user %d: %v", user.ID, err)
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome back!",
	}

	return flash.WithSuccess(c, fm).Redirect("/")
}

// HandleAuthLogout destroys the session and returns to the login page.
func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := sess.Destroy(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Logged out. See you soon.",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}
