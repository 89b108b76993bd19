package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlavin/allaccess/app/models"
	"github.com/mlavin/allaccess/internal/pkg/env"
	"github.com/mlavin/allaccess/internal/pkg/metrics/counter"
	"github.com/mlavin/allaccess/internal/pkg/oauth"
	"github.com/mlavin/allaccess/internal/pkg/session"
)

// HandleOAuthLogin starts the provider flow: it builds the authorization
// redirect (acquiring a request token or storing CSRF state on the way)
// and sends the browser to the provider.
func HandleOAuthLogin(c *fiber.Ctx) error {
	name := c.Params("provider")
	provider, err := providerRepo.GetEnabledByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Unknown OAuth provider.")
		}
		log.Printf("oauth login: %s: loading provider: %v", name, err)
		return loginFailureRedirect(c)
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Printf("oauth login: %s: session unavailable: %v", name, err)
		return loginFailureRedirect(c)
	}

	client := oauth.NewClient(provider)
	redirectURL, err := client.RedirectURL(sess, callbackURL(c, provider.Name))
	if err != nil {
		log.Printf("oauth login: %s: %v", name, err)
		return loginFailureRedirect(c)
	}

	// The request token / state must survive the provider round trip.
	if err := sess.Save(); err != nil {
		log.Printf("oauth login: %s: saving session: %v", name, err)
		return loginFailureRedirect(c)
	}

	return c.Redirect(redirectURL, fiber.StatusFound)
}

// HandleOAuthCallback completes the provider flow: exchange the callback
// for an access token, resolve the remote identity, link or create the
// local user and log them in. Every failure collapses to the same generic
// login-failure redirect; only the logs know why.
func HandleOAuthCallback(c *fiber.Ctx) error {
	name := c.Params("provider")
	provider, err := providerRepo.GetEnabledByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Unknown OAuth provider.")
		}
		log.Printf("oauth callback: %s: loading provider: %v", name, err)
		return loginFailureRedirect(c)
	}

	// Correlates the log lines of one callback attempt.
	flowID := uuid.NewString()

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Printf("oauth callback %s: %s: session unavailable: %v", flowID, name, err)
		return loginFailureRedirect(c)
	}

	client := oauth.NewClient(provider)

	rawToken := client.AccessToken(queryValues(c), sess, callbackURL(c, provider.Name))
	if rawToken == "" {
		log.Printf("oauth callback %s: %s: could not retrieve access token", flowID, name)
		return loginFailureRedirect(c)
	}

	info := client.ProfileInfo(rawToken)
	if info == nil {
		log.Printf("oauth callback %s: %s: could not retrieve profile", flowID, name)
		return loginFailureRedirect(c)
	}

	identifier := oauth.LookupPath(info, provider.ProfileIdentifierPath())
	if identifier == "" {
		log.Printf("oauth callback %s: %s: no identifier at path %q", flowID, name, provider.ProfileIdentifierPath())
		return loginFailureRedirect(c)
	}

	access := &models.AccountAccess{
		Identifier:  identifier,
		ProviderID:  provider.ID,
		Provider:    *provider,
		AccessToken: &rawToken,
	}
	if err := accessRepo.Upsert(access); err != nil {
		log.Printf("oauth callback %s: %s: storing account access: %v", flowID, name, err)
		return loginFailureRedirect(c)
	}

	user, err := accessRepo.GetUserFor(provider.ID, identifier)
	newUser := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("oauth callback %s: %s: resolving user: %v", flowID, name, err)
			return loginFailureRedirect(c)
		}
		user, err = registerShellUser(access)
		if err != nil {
			log.Printf("oauth callback %s: %s: creating user: %v", flowID, name, err)
			return loginFailureRedirect(c)
		}
		newUser = true
	}

	if !user.IsActive() {
		log.Printf("oauth callback %s: %s: user %d is disabled", flowID, name, user.ID)
		return loginFailureRedirect(c)
	}

	if err := loginSession(sess, user); err != nil {
		log.Printf("oauth callback %s: %s: saving session: %v", flowID, name, err)
		return loginFailureRedirect(c)
	}
	if err := userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("oauth callback %s: %s: updating last login: %v", flowID, name, err)
	}

	go func() {
		if err := counter.AddProviderLogin(provider.Name); err != nil {
			log.Printf("oauth callback %s: %s: recording login: %v", flowID, name, err)
		}
	}()

	if newUser {
		return c.Redirect(env.GetEnv("LOGIN_REDIRECT_NEW_USER_URL", env.GetEnv("LOGIN_REDIRECT_URL", "/")), fiber.StatusFound)
	}
	return c.Redirect(env.GetEnv("LOGIN_REDIRECT_URL", "/"), fiber.StatusFound)
}

// HandleProviders lists the providers currently available for sign-in, so
// a login page can render its buttons from configuration.
func HandleProviders(c *fiber.Ctx) error {
	providers, err := providerRepo.ListEnabled()
	if err != nil {
		log.Printf("providers: listing: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	type entry struct {
		Name     string `json:"name"`
		LoginURL string `json:"login_url"`
	}
	list := make([]entry, len(providers))
	for i, p := range providers {
		list[i] = entry{Name: p.Name, LoginURL: "/auth/" + p.Name}
	}
	return c.JSON(fiber.Map{"providers": list})
}

// HandleProviderStats reports successful-login counts per provider.
func HandleProviderStats(c *fiber.Ctx) error {
	counts, err := counter.ProviderLogins()
	if err != nil {
		log.Printf("provider stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"logins": counts})
}

// registerShellUser creates the local account for a first-time sign-in and
// binds it to the association.
func registerShellUser(access *models.AccountAccess) (*models.User, error) {
	user, err := models.NewShellUser(access)
	if err != nil {
		return nil, err
	}
	if err := userRepo.Create(user); err != nil {
		return nil, err
	}
	if err := accessRepo.AttachUser(access, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// loginSession establishes the authenticated app session.
func loginSession(sess *fsession.Session, user *models.User) error {
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	return sess.Save()
}

// callbackURL builds the absolute callback URL the provider redirects to.
func callbackURL(c *fiber.Ctx, providerName string) string {
	base := env.GetEnv("PUBLIC_DOMAIN", "")
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/auth/" + providerName + "/callback"
}
