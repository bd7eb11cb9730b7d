package properties

import (
	"propshare-backend/internal/interfaces/handlers/httperr"
	"propshare-backend/internal/interfaces/handlers/views"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type VerifyRentRequest struct {
	Amount    string `json:"amount"`
	AmountEth string `json:"amount_eth"`
}

// VerifyRent POST /api/v1/properties/:id/rent/verify records the oracle-attested amount.
func (h *Handlers) VerifyRent(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	var body VerifyRentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	amount, err := httperr.Amount(body.Amount, body.AmountEth)
	if err != nil {
		return response.Error(c, "Invalid amount: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	pv, err := h.Ledger.Verify(c.UserContext(), caller, id, amount)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Rent verified successfully", fiber.Map{
		"pending":    pv,
		"amount_eth": pv.Amount.Ether(),
	}, nil)
}

type DepositRentRequest struct {
	Amount    string `json:"amount"`
	AmountEth string `json:"amount_eth"`
	Funds     string `json:"funds"`
	FundsEth  string `json:"funds_eth"`
}

// DepositRent POST /api/v1/properties/:id/rent/deposit; funds default to amount when omitted.
func (h *Handlers) DepositRent(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	var body DepositRentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	amount, err := httperr.Amount(body.Amount, body.AmountEth)
	if err != nil {
		return response.Error(c, "Invalid amount: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	funds := amount
	if body.Funds != "" || body.FundsEth != "" {
		if funds, err = httperr.Amount(body.Funds, body.FundsEth); err != nil {
			return response.Error(c, "Invalid funds: "+err.Error(), fiber.StatusBadRequest, nil)
		}
	}
	p, err := h.Ledger.Deposit(c.UserContext(), caller, id, amount, funds)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Rent deposited successfully", views.NewProperty(p), nil)
}

// PendingRent GET /api/v1/properties/:id/rent/pending
func (h *Handlers) PendingRent(c *fiber.Ctx) error {
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	pv, found, err := h.Ledger.PendingVerification(id)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	if !found {
		return response.Success(c, "No verified rent pending", nil, nil)
	}
	return response.Success(c, "Pending verification fetched successfully", fiber.Map{
		"pending":    pv,
		"amount_eth": pv.Amount.Ether(),
	}, nil)
}
