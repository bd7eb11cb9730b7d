// Package httperr maps ledger errors and request parameters onto the standard HTTP envelope.
package httperr

import (
	"errors"
	"strconv"
	"strings"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Status returns the HTTP status for a ledger error and the stable code sent in details.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		return fiber.StatusForbidden, "unauthorized"
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrInvalidArgument):
		return fiber.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ledger.ErrSoldOut):
		return fiber.StatusConflict, "sold_out"
	case errors.Is(err, ledger.ErrAmountMismatch):
		return fiber.StatusConflict, "amount_mismatch"
	case errors.Is(err, ledger.ErrNoVerification):
		return fiber.StatusConflict, "no_verification"
	case errors.Is(err, ledger.ErrNoShareholders):
		return fiber.StatusConflict, "no_shareholders"
	case errors.Is(err, ledger.ErrNothingToWithdraw):
		return fiber.StatusConflict, "nothing_to_withdraw"
	case errors.Is(err, ledger.ErrNotAShareholder):
		return fiber.StatusConflict, "not_a_shareholder"
	case errors.Is(err, ledger.ErrAlreadyVoted):
		return fiber.StatusConflict, "already_voted"
	case errors.Is(err, ledger.ErrAlreadyExecuted):
		return fiber.StatusConflict, "already_executed"
	case errors.Is(err, ledger.ErrNotPassed):
		return fiber.StatusConflict, "not_passed"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}

// Ledger writes err in the standard error format. Unknown errors are logged and hidden.
func Ledger(c *fiber.Ctx, err error) error {
	code, kind := Status(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("ledger operation failed")
		return response.Error(c, "Internal Server Error", code, nil)
	}
	return response.Error(c, strings.TrimPrefix(err.Error(), "ledger: "), code, fiber.Map{"code": kind})
}

// ID parses a positive integer path parameter.
func ID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Amount reads a money field sent either in wei ("1000") or in display units ("0.5").
// Exactly one of the two must be set.
func Amount(wei, eth string) (domain.Wei, error) {
	wei, eth = strings.TrimSpace(wei), strings.TrimSpace(eth)
	switch {
	case wei != "" && eth != "":
		return domain.Wei{}, errors.New("send the amount in wei or in ether, not both")
	case wei != "":
		return domain.ParseWei(wei)
	case eth != "":
		return domain.ParseEther(eth)
	default:
		return domain.Wei{}, errors.New("amount is required")
	}
}
