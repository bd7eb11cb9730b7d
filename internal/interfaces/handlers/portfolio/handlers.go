package portfolio

import (
	"propshare-backend/internal/interfaces/handlers/httperr"
	"propshare-backend/internal/interfaces/handlers/views"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Ledger *ledger.Ledger
}

// Mine GET /api/v1/portfolio
func (h *Handlers) Mine(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	return h.render(c, caller.Address)
}

// ForHolder GET /api/v1/portfolio/:holder
func (h *Handlers) ForHolder(c *fiber.Ctx) error {
	return h.render(c, c.Params("holder"))
}

func (h *Handlers) render(c *fiber.Ctx, holder string) error {
	positions, err := h.Ledger.Portfolio(holder)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Portfolio fetched successfully", views.NewPositions(positions), fiber.Map{
		"holder":    holder,
		"positions": len(positions),
	})
}
