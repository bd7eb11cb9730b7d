package middleware

import (
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizeCapability rejects principals that were not granted capability.
// The ledger repeats the check; this stops the request before the body is parsed.
func AuthorizeCapability(capability ledger.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !p.Has(capability) {
			return response.Error(c, "Principal is Forbidden from performing this action", fiber.StatusForbidden, fiber.Map{
				"required_capability": string(capability),
			})
		}
		return c.Next()
	}
}
