package proposals

import (
	"propshare-backend/internal/interfaces/handlers/httperr"
	"propshare-backend/internal/interfaces/handlers/views"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"
	"propshare-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

const maxDescriptionLen = 4000

type Handlers struct {
	Ledger *ledger.Ledger
}

type CreateRequest struct {
	Description string `json:"description"`
}

// Create POST /api/v1/properties/:id/proposals
func (h *Handlers) Create(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	propertyID, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	var body CreateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidText(body.Description, maxDescriptionLen) {
		return response.Error(c, "Description is required", fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.CreateProposal(c.UserContext(), propertyID, caller.Address, body.Description)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.SuccessCreated(c, "Proposal created successfully", views.NewProposal(p), nil)
}

// ListForProperty GET /api/v1/properties/:id/proposals
func (h *Handlers) ListForProperty(c *fiber.Ctx) error {
	propertyID, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
	}
	ps, err := h.Ledger.ListProposals(propertyID)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Proposals fetched successfully", views.NewProposals(ps), fiber.Map{
		"count": len(ps),
	})
}

// Get GET /api/v1/proposals/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid proposal id", fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.GetProposal(id)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Proposal fetched successfully", views.NewProposal(p), fiber.Map{
		"proposal_count": h.Ledger.ProposalCount(),
	})
}

type VoteRequest struct {
	InFavor *bool `json:"in_favor"`
}

// Vote POST /api/v1/proposals/:id/vote; the weight is the caller's share balance right now.
func (h *Handlers) Vote(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid proposal id", fiber.StatusBadRequest, nil)
	}
	var body VoteRequest
	if err := c.BodyParser(&body); err != nil || body.InFavor == nil {
		return response.Error(c, "in_favor is required", fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.Vote(c.UserContext(), id, caller.Address, *body.InFavor)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Vote recorded successfully", views.NewProposal(p), nil)
}

// Execute POST /api/v1/proposals/:id/execute
func (h *Handlers) Execute(c *fiber.Ctx) error {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := httperr.ID(c, "id")
	if !ok {
		return response.Error(c, "Invalid proposal id", fiber.StatusBadRequest, nil)
	}
	p, err := h.Ledger.Execute(c.UserContext(), id, caller.Address)
	if err != nil {
		return httperr.Ledger(c, err)
	}
	return response.Success(c, "Proposal executed successfully", views.NewProposal(p), nil)
}
