package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/mlavin/allaccess/internal/pkg/oauth"
	"github.com/mlavin/allaccess/internal/pkg/usercontext"
)

// HandleAccountConnections lists the provider accounts linked to the
// logged-in user.
func HandleAccountConnections(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	accesses, err := accessRepo.ListByUser(userID)
	if err != nil {
		log.Printf("account connections: user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	type entry struct {
		Provider   string `json:"provider"`
		Identifier string `json:"identifier"`
		CreatedAt  string `json:"created_at"`
	}
	list := make([]entry, len(accesses))
	for i, a := range accesses {
		list[i] = entry{
			Provider:   a.Provider.Name,
			Identifier: a.Identifier,
			CreatedAt:  a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return c.JSON(fiber.Map{"connections": list})
}

// HandleAccountProfile fetches the live remote profile for one of the
// user's linked provider accounts, using the stored access token.
func HandleAccountProfile(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	name := c.Params("provider")

	accesses, err := accessRepo.ListByUser(userID)
	if err != nil {
		log.Printf("account profile: user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	for _, a := range accesses {
		if a.Provider.Name != name {
			continue
		}
		api := oauth.NewAPIClient(&a.Provider, a.Token())
		info := api.Profile()
		if info == nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "provider_unavailable"})
		}
		return c.JSON(fiber.Map{"provider": name, "profile": info})
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_connected"})
}
