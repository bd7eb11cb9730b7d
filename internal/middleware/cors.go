package middleware

import (
	"strings"

	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists who may call the API from a browser.
type CORSConfig struct {
	// AllowedSuffix matches the dapp's deployment hosts, e.g. ".propshare.app".
	AllowedSuffix string
	// DevPassword lets a preview build through when sent in the dev-password header.
	DevPassword string
	// AllowLocalhost admits http://localhost and http://127.0.0.1 origins.
	AllowLocalhost bool
}

// CORS admits matching origins with credentials so the session cookie travels with wallet actions.
// Requests without an Origin header (curl, propsharectl, server to server) pass untouched.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		allowed := (suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix)) ||
			(cfg.AllowLocalhost && isLocalOrigin(origin)) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword)
		if !allowed {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, dev-password, "+traceIDHeader)
		c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
		c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, PATCH, DELETE")
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") ||
		origin == "http://localhost" || origin == "http://127.0.0.1"
}
