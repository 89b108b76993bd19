package controllers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/mlavin/allaccess/app/repository"
	"github.com/mlavin/allaccess/internal/pkg/env"
)

// Session and locals keys shared across controllers and middlewares
const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "username"
	FROM_PROTECTED string = "from_protected"
)

var (
	userRepo     repository.UserRepository
	providerRepo repository.ProviderRepository
	accessRepo   repository.AccountAccessRepository
)

// InitializeControllers wires the controllers to the global repositories.
// Tests swap in fakes through SetRepositories instead.
func InitializeControllers() {
	factory := repository.GetGlobalFactory()
	SetRepositories(
		factory.GetUserRepository(),
		factory.GetProviderRepository(),
		factory.GetAccountAccessRepository(),
	)
}

// SetRepositories injects the repository implementations used by the
// handlers.
func SetRepositories(users repository.UserRepository, providers repository.ProviderRepository, accesses repository.AccountAccessRepository) {
	userRepo = users
	providerRepo = providers
	accessRepo = accesses
}

// loginFailureRedirect sends the user to the login page with a generic
// message. Every failed authentication funnels through here; detail stays
// in the logs.
func loginFailureRedirect(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "error",
		"message": "Authentication failed.",
	}
	return flash.WithError(c, fm).Redirect(env.GetEnv("LOGIN_URL", "/login"))
}

// queryValues copies the request query parameters into url.Values for the
// protocol clients.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	return values
}
