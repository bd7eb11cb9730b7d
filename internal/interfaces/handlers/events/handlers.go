package events

import (
	"context"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RecentReader returns the newest published events first.
type RecentReader interface {
	Recent(ctx context.Context, limit int64) ([]domain.LedgerEvent, error)
}

type Handlers struct {
	Feed RecentReader
}

// Recent GET /api/v1/events/recent?limit=n
func (h *Handlers) Recent(c *fiber.Ctx) error {
	if h.Feed == nil {
		return response.Error(c, "Event feed not configured", fiber.StatusServiceUnavailable, nil)
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 1000 {
		return response.Error(c, "limit must be between 1 and 1000", fiber.StatusBadRequest, nil)
	}
	evs, err := h.Feed.Recent(c.UserContext(), int64(limit))
	if err != nil {
		log.Error().Err(err).Msg("events: reading recent feed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if evs == nil {
		evs = []domain.LedgerEvent{}
	}
	return response.Success(c, "Recent events fetched successfully", evs, map[string]interface{}{"count": len(evs)})
}
