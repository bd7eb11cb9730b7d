package properties

import (
	"context"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/interfaces/handlers/httperr"
	"propshare-backend/internal/interfaces/handlers/views"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"
	"propshare-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// EventLister reads the persisted journal of a property.
type EventLister interface {
	Events(ctx context.Context, propertyID uint64, limit int) ([]domain.LedgerEvent, error)
}

type Handlers struct {
	Ledger *ledger.Ledger
	Events EventLister
}

type TokenizeRequest struct {
	Name             string `json:"name"`
	URI              string `json:"uri"`
	TotalShares      int64  `json:"total_shares"`
	PricePerShare    string `json:"price_per_share"`
	PricePerShareEth string `json:"price_per_share_eth"`
	Manager          string `json:"manager"`
}

// Tokenize POST /api/v1/properties
func (h *Handlers) Tokenize(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body TokenizeRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidText(body.Name, 200) {
		return response.Error(c, "Name is required", fiber.StatusBadRequest, nil)
	}
	if len(body.URI) > 2048 {
		return response.Error(c, "URI is too long", fiber.StatusBadRequest, nil)
	}
	price, err := httperr.Amount(body.PricePerShare, body.PricePerShareEth)
	if err != nil {
		return response.Error(c, "Invalid price_per_share: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.Tokenize(c.UserContext(), caller, ledger.TokenizeInput{
		Name:          body.Name,
		URI:           body.URI,
		TotalShares:   body.TotalShares,
		PricePerShare: price,
		Manager:       body.Manager,
	})
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.SuccessCreated(c, "Property tokenized successfully", views.NewProperty(p), nil)
}

// List GET /api/v1/properties
func (h *Handlers) List(c *fiber.Ctx) error {
	props := h.Ledger.ListProperties()
	return response.Success(c, "Properties fetched successfully", views.NewProperties(props), fiber.Map{
		"count": h.Ledger.PropertyCount(),
	})
}

// Get GET /api/v1/properties/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.GetProperty(id)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Property fetched successfully", views.NewProperty(p), nil)
}

type PurchaseRequest struct {
	Quantity   int64  `json:"quantity"`
	Payment    string `json:"payment"`
	PaymentEth string `json:"payment_eth"`
}

// Purchase POST /api/v1/properties/:id/purchase; the buyer is the session principal.
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	var body PurchaseRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	payment, err := httperr.Amount(body.Payment, body.PaymentEth)
	if err != nil {
		return response.Error(c, "Invalid payment: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	holding, err := h.Ledger.Purchase(c.UserContext(), id, caller.Address, body.Quantity, payment)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	owed, err := h.Ledger.Entitlement(id, holding.Holder)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Shares purchased successfully", views.NewHolding(holding, owed), nil)
}

// Holding GET /api/v1/properties/:id/holdings/:holder
func (h *Handlers) Holding(c *fiber.Ctx) error {
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Ledger.Holding(id, c.Params("holder"))
	if err != nil {
		return httperr.Ledger(c, err)
	}
	owed, err := h.Ledger.Entitlement(id, holding.Holder)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Holding fetched successfully", views.NewHolding(holding, owed), nil)
}

// Withdraw POST /api/v1/properties/:id/withdraw pays the session principal its accrued rent.
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	paid, err := h.Ledger.Withdraw(c.UserContext(), id, caller.Address)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Rent withdrawn successfully", fiber.Map{
		"property_id": id,
		"amount":      paid,
		"amount_eth":  paid.Ether(),
	}, nil)
}

// History GET /api/v1/properties/:id/events?limit=n
func (h *Handlers) History(c *fiber.Ctx) error {
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	if _, err := h.Ledger.GetProperty(id); err != nil {
		return httperr.Ledger(c, err)
	}
	if h.Events == nil {
		return response.Error(c, "Event journal not configured", fiber.StatusServiceUnavailable, nil)
	}
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		return response.Error(c, "limit must be between 1 and 1000", fiber.StatusBadRequest, nil)
	}
	events, err := h.Events.Events(c.UserContext(), id, limit)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Events fetched successfully", events, nil)
}
