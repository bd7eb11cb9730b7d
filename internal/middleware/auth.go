package middleware

import (
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a principal is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetPrincipal(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetPrincipal resolves the session user into the identity the ledger checks.
// Session data decoded from Redis holds capabilities as []interface{}; freshly set data holds []string.
func GetPrincipal(c *fiber.Ctx) (ledger.Principal, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return ledger.Principal{}, false
	}
	address, _ := m["address"].(string)
	if address == "" {
		return ledger.Principal{}, false
	}
	p := ledger.Principal{Address: address}
	var raw []string
	switch caps := m["capabilities"].(type) {
	case []string:
		raw = caps
	case []interface{}:
		for _, c := range caps {
			if s, ok := c.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	for _, s := range raw {
		if cp, err := ledger.ParseCapability(s); err == nil {
			p.Capabilities = append(p.Capabilities, cp)
		}
	}
	return p, true
}
